package category

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	sqldb "centsible-server/src/db/sql"
	"centsible-server/src/fingerprint"
	"centsible-server/src/models"
	"centsible-server/src/vendors"
)

// Policy constants. The auto-apply threshold is fixed, not per-user.
const (
	AutoApplyThreshold       = 0.8
	UserHistoryConfidence    = 0.95
	LearnedMappingConfidence = 0.9
	BulkLimit                = 50
	DefaultPacing            = 100 * time.Millisecond
)

// Resolution sources, strongest first.
const (
	SourceUserHistory = "user_history"
	SourcePattern     = "pattern"
	SourceDictionary  = "dictionary"
)

// Store is the slice of persistence the resolver needs. Lookup methods
// return (nil, nil) on a miss; only Transaction reports a missing row as an
// error, because a missing transaction means the item itself is bad.
type Store interface {
	Transaction(ctx context.Context, userID int64, id string) (*models.Transaction, error)
	UserCategoryForVendor(ctx context.Context, userID int64, vendorNormalized string) (*models.Category, error)
	CategoryMappingForVendor(ctx context.Context, userID int64, vendorNormalized string) (*models.CategoryMapping, error)
	CategoryByID(ctx context.Context, userID, id int64) (*models.Category, error)
	CategoryByName(ctx context.Context, userID int64, name string) (*models.Category, error)
	ApplyCategory(ctx context.Context, userID int64, transactionID string, categoryID int64) error
	LearnMapping(ctx context.Context, userID int64, vendorNormalized string, categoryID int64, confidence float64) error
}

// Resolver suggests categories for transactions, combining the user's own
// history, learned vendor-to-category mappings, and dictionary hints.
type Resolver struct {
	store  Store
	dict   *vendors.Dictionary
	pacing time.Duration
	log    *logrus.Logger
}

func NewResolver(store Store, dict *vendors.Dictionary, pacing time.Duration, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{store: store, dict: dict, pacing: pacing, log: log}
}

// Resolve suggests a category for one transaction. A nil suggestion with a
// nil error means nothing matched, which is a normal outcome, not a failure.
// When autoApply is set and confidence clears the threshold (boundary
// inclusive), the suggestion is written back to the transaction.
func (r *Resolver) Resolve(ctx context.Context, userID int64, transactionID string, autoApply bool) (*models.CategorySuggestion, error) {
	tx, err := r.store.Transaction(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	vendor := tx.VendorNormalized
	if vendor == "" {
		vendor = fingerprint.NormalizeVendor(tx.VendorNameOriginal)
	}

	sugg, err := r.suggest(ctx, userID, vendor, tx.VendorNameOriginal)
	if err != nil {
		return nil, err
	}
	if sugg == nil {
		return nil, nil
	}
	sugg.TransactionID = transactionID

	if autoApply && sugg.Confidence >= AutoApplyThreshold {
		if err := r.store.ApplyCategory(ctx, userID, transactionID, sugg.CategoryID); err != nil {
			return nil, err
		}
		sugg.Applied = true
	}
	return sugg, nil
}

// suggest walks the precedence chain: user history, learned mapping,
// dictionary hint.
func (r *Resolver) suggest(ctx context.Context, userID int64, vendorNormalized, vendorOriginal string) (*models.CategorySuggestion, error) {
	if c, err := r.store.UserCategoryForVendor(ctx, userID, vendorNormalized); err != nil {
		return nil, err
	} else if c != nil {
		return &models.CategorySuggestion{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Confidence:   UserHistoryConfidence,
			Source:       SourceUserHistory,
		}, nil
	}

	if m, err := r.store.CategoryMappingForVendor(ctx, userID, vendorNormalized); err != nil {
		return nil, err
	} else if m != nil {
		c, err := r.store.CategoryByID(ctx, userID, m.CategoryID)
		if err == nil && c != nil {
			return &models.CategorySuggestion{
				CategoryID:   c.ID,
				CategoryName: c.Name,
				Confidence:   m.Confidence,
				Source:       SourcePattern,
			}, nil
		}
		// A mapping pointing at a vanished category falls through to the
		// next tier rather than failing the resolution.
	}

	if match, ok := r.dict.Match(vendorOriginal); ok {
		c, err := r.store.CategoryByName(ctx, userID, match.Category)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return &models.CategorySuggestion{
				CategoryID:   c.ID,
				CategoryName: c.Name,
				Confidence:   match.Confidence,
				Source:       SourceDictionary,
			}, nil
		}
	}

	return nil, nil
}

// ResolveBulk processes up to BulkLimit transaction ids, pacing between items
// to respect downstream rate limits and collecting per-item failures instead
// of aborting.
func (r *Resolver) ResolveBulk(ctx context.Context, userID int64, ids []string, autoApply bool) *models.BulkCategoryResult {
	if len(ids) > BulkLimit {
		ids = ids[:BulkLimit]
	}
	res := &models.BulkCategoryResult{Stats: models.BulkStats{Total: len(ids)}}

	for i, id := range ids {
		if i > 0 && r.pacing > 0 {
			time.Sleep(r.pacing)
		}

		sugg, err := r.Resolve(ctx, userID, id, autoApply)
		if err != nil {
			code := "resolve_failed"
			if errors.Is(err, sqldb.ErrNotFound) {
				code = "not_found"
			}
			r.log.WithFields(logrus.Fields{"transaction_id": id, "error": err.Error()}).
				Warn("bulk category resolution item failed")
			res.Failures = append(res.Failures, models.ItemFailure{TransactionID: id, Code: code, Message: err.Error()})
			res.Stats.Failed++
			continue
		}
		if sugg == nil {
			continue
		}
		res.Results = append(res.Results, *sugg)
		res.Stats.Categorized++
		if sugg.Applied {
			res.Stats.Applied++
		}
		if sugg.Confidence >= AutoApplyThreshold {
			res.Stats.HighConfidence++
		}
	}
	return res
}

// ApplyManual records a user's explicit category choice: the transaction is
// updated and the vendor-to-category association is learned for the pattern
// tier.
func (r *Resolver) ApplyManual(ctx context.Context, userID int64, transactionID string, categoryID int64) error {
	tx, err := r.store.Transaction(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if _, err := r.store.CategoryByID(ctx, userID, categoryID); err != nil {
		return err
	}
	if err := r.store.ApplyCategory(ctx, userID, transactionID, categoryID); err != nil {
		return err
	}

	vendor := tx.VendorNormalized
	if vendor == "" {
		vendor = fingerprint.NormalizeVendor(tx.VendorNameOriginal)
	}
	if vendor != "" {
		if err := r.store.LearnMapping(ctx, userID, vendor, categoryID, LearnedMappingConfidence); err != nil {
			// Learning is best-effort; the categorization itself succeeded.
			r.log.WithFields(logrus.Fields{"transaction_id": transactionID, "error": err.Error()}).
				Warn("failed to learn category mapping")
		}
	}
	return nil
}
