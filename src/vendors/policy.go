package vendors

import (
	"time"

	"centsible-server/src/models"
)

// Cache policy constants. These gate when a mapping may be overwritten, when
// corrections become shared intelligence, and when stale global rows get
// purged.
const (
	UserCorrectionConfidence = 0.95
	ConsensusConfidence      = 0.85
	ConsensusMinCorrections  = 3
	GlobalConfidenceFloor    = 0.8
	UpdateDelta              = 0.1
	CleanupConfidenceFloor   = 0.3
	CleanupMaxAge            = 30 * 24 * time.Hour
)

// ShouldReplace decides whether a new resolution may overwrite an existing
// mapping for the same (text, scope): only a clear confidence improvement, or
// a user correction overriding a machine-sourced row. Everything else is an
// idempotent no-op.
func ShouldReplace(existing *models.VendorMapping, newConfidence float64, newSource string) bool {
	if newSource == models.SourceUser && existing.Source != models.SourceUser {
		return true
	}
	return newConfidence > existing.Confidence+UpdateDelta
}

// SelectBest applies the lookup priority over every mapping stored for a
// normalized text: the requesting user's own mapping, then a trusted global
// mapping, then any global mapping, then the highest-confidence row from any
// scope. Callers pass candidates ordered by confidence descending so the
// scans inside each tier are deterministic.
func SelectBest(mappings []*models.VendorMapping, userID int64) *models.VendorMapping {
	for _, m := range mappings {
		if m.UserID != nil && *m.UserID == userID {
			return m
		}
	}
	for _, m := range mappings {
		if m.UserID == nil && m.Confidence >= GlobalConfidenceFloor {
			return m
		}
	}
	for _, m := range mappings {
		if m.UserID == nil {
			return m
		}
	}
	var best *models.VendorMapping
	for _, m := range mappings {
		if best == nil || m.Confidence > best.Confidence {
			best = m
		}
	}
	return best
}

// ConsensusRule promotes a name to a global mapping once enough independent
// user corrections agree on it.
type ConsensusRule struct {
	MinCorrections     int
	PromotedConfidence float64
}

func DefaultConsensusRule() ConsensusRule {
	return ConsensusRule{
		MinCorrections:     ConsensusMinCorrections,
		PromotedConfidence: ConsensusConfidence,
	}
}

// Promote reports whether name should become a global mapping given the
// mapped names of every user-sourced correction for the same text (the
// newest correction included). The bar: at least MinCorrections corrections
// exist, and name holds the plurality among them.
func (r ConsensusRule) Promote(correctedNames []string, name string) bool {
	if len(correctedNames) < r.MinCorrections {
		return false
	}
	counts := make(map[string]int, len(correctedNames))
	max := 0
	for _, n := range correctedNames {
		counts[n]++
		if counts[n] > max {
			max = counts[n]
		}
	}
	return counts[name] == max
}

// PurgeEligible reports whether a mapping qualifies for the periodic cleanup:
// global scope, low confidence, and older than the retention window. User
// owned mappings are never auto-purged.
func PurgeEligible(m *models.VendorMapping, now time.Time) bool {
	if m.UserID != nil {
		return false
	}
	return m.Confidence < CleanupConfidenceFloor && now.Sub(m.CreatedAt) > CleanupMaxAge
}
