package db

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cache "centsible-server/src/db"
	"centsible-server/src/fingerprint"
	"centsible-server/src/models"
	"centsible-server/src/vendors"
)

const vendorMappingColumns = `id, original_text, mapped_name, confidence, source, user_id, created_at, updated_at`

func scanVendorMapping(row pgx.Row) (*models.VendorMapping, error) {
	var m models.VendorMapping
	err := row.Scan(&m.ID, &m.OriginalText, &m.MappedName, &m.Confidence, &m.Source, &m.UserID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// NormalizeMappingText is the canonical form vendor text takes before any
// cache lookup or write. It matches fingerprint normalization so the two
// subsystems agree on what "the same vendor" means.
func NormalizeMappingText(text string) string {
	norm := fingerprint.NormalizeVendor(text)
	if norm == "" {
		norm = strings.ToLower(strings.TrimSpace(text))
	}
	return norm
}

func vendorCacheKey(userID int64, normalizedText string) string {
	return "vm:" + strconv.FormatInt(userID, 10) + ":" + normalizedText
}

// GetMappingsForText returns every scope's mapping for a normalized text,
// highest confidence first.
func GetMappingsForText(ctx context.Context, pool *pgxpool.Pool, normalizedText string) ([]*models.VendorMapping, error) {
	query := `
		SELECT ` + vendorMappingColumns + `
		FROM vendor_mappings
		WHERE original_text = $1
		ORDER BY confidence DESC, id
	`
	rows, err := pool.Query(ctx, query, normalizedText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*models.VendorMapping
	for rows.Next() {
		m, err := scanVendorMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// GetBestMapping resolves vendor text for a user through the tiered lookup
// priority. Returns (nil, nil) when no mapping exists in any scope — that is
// a miss, not an error.
func GetBestMapping(ctx context.Context, pool *pgxpool.Pool, text string, userID int64) (*models.VendorMapping, error) {
	norm := NormalizeMappingText(text)
	if norm == "" {
		return nil, nil
	}

	key := vendorCacheKey(userID, norm)
	if cached, found := cache.Cache.Get(key); found {
		if m, ok := cached.(*models.VendorMapping); ok {
			return m, nil
		}
	}

	mappings, err := GetMappingsForText(ctx, pool, norm)
	if err != nil {
		return nil, err
	}
	best := vendors.SelectBest(mappings, userID)
	if best != nil {
		cache.SetVendorCache(key, best)
	}
	return best, nil
}

// CacheMapping stores or reconciles a resolved mapping for (text, scope).
// When a row already exists, the update policy decides whether the new
// resolution wins; otherwise the existing row is returned untouched. The
// insert races through ON CONFLICT so two callers resolving the same text
// concurrently never produce two rows for one scope.
func CacheMapping(ctx context.Context, pool *pgxpool.Pool, text, mappedName string, confidence float64, source string, userID *int64) (*models.VendorMapping, error) {
	norm := NormalizeMappingText(text)
	if norm == "" {
		return nil, errors.New("empty vendor text")
	}

	// Fast path: a row already exists and the policy says keep it.
	existing, err := getMappingForScope(ctx, pool, norm, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil && !vendors.ShouldReplace(existing, confidence, source) {
		return existing, nil
	}

	// The WHERE clause restates the policy so a concurrent writer who got in
	// after our read still reconciles instead of clobbering.
	query := `
		INSERT INTO vendor_mappings (original_text, mapped_name, confidence, source, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (original_text, user_id) DO UPDATE
		SET mapped_name = EXCLUDED.mapped_name,
		    confidence = EXCLUDED.confidence,
		    source = EXCLUDED.source,
		    updated_at = NOW()
		WHERE EXCLUDED.confidence > vendor_mappings.confidence + $6
		   OR (EXCLUDED.source = $7 AND vendor_mappings.source <> $7)
		RETURNING ` + vendorMappingColumns + `
	`
	m, err := scanVendorMapping(pool.QueryRow(ctx, query,
		norm, mappedName, confidence, source, userID,
		vendors.UpdateDelta, models.SourceUser,
	))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		// Conflict and the policy kept the concurrent row; return it.
		kept, err := getMappingForScope(ctx, pool, norm, userID)
		if err != nil {
			return nil, err
		}
		return kept, nil
	}

	cache.ClearVendorCacheForText(norm)
	return m, nil
}

func getMappingForScope(ctx context.Context, pool *pgxpool.Pool, normalizedText string, userID *int64) (*models.VendorMapping, error) {
	row := pool.QueryRow(ctx, `
		SELECT `+vendorMappingColumns+`
		FROM vendor_mappings
		WHERE original_text = $1 AND user_id IS NOT DISTINCT FROM $2
	`, normalizedText, userID)
	return scanVendorMapping(row)
}

// RecordUserCorrection stores a correction as a high-confidence personal
// mapping, then checks whether enough independent corrections agree to
// promote the name into a shared global mapping.
func RecordUserCorrection(ctx context.Context, pool *pgxpool.Pool, userID int64, text, mappedName string) (*models.VendorMapping, error) {
	personal, err := CacheMapping(ctx, pool, text, mappedName, vendors.UserCorrectionConfidence, models.SourceUser, &userID)
	if err != nil {
		return nil, err
	}

	norm := NormalizeMappingText(text)
	names, err := userCorrectionNames(ctx, pool, norm)
	if err != nil {
		return nil, err
	}

	rule := vendors.DefaultConsensusRule()
	if rule.Promote(names, mappedName) {
		if _, err := CacheMapping(ctx, pool, text, mappedName, rule.PromotedConfidence, models.SourceConsensus, nil); err != nil {
			return nil, err
		}
	}
	return personal, nil
}

// userCorrectionNames lists the mapped name of every user-sourced correction
// for a normalized text, one per user.
func userCorrectionNames(ctx context.Context, pool *pgxpool.Pool, normalizedText string) ([]string, error) {
	query := `
		SELECT mapped_name
		FROM vendor_mappings
		WHERE original_text = $1 AND user_id IS NOT NULL AND source = $2
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query, normalizedText, models.SourceUser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// CreateVendorMapping is the explicit CRUD create. Unlike CacheMapping it
// refuses to touch an existing (text, caller) row and reports the conflict.
func CreateVendorMapping(ctx context.Context, pool *pgxpool.Pool, userID int64, text, mappedName string, confidence float64, source string) (*models.VendorMapping, error) {
	norm := NormalizeMappingText(text)
	if norm == "" {
		return nil, errors.New("empty vendor text")
	}
	query := `
		INSERT INTO vendor_mappings (original_text, mapped_name, confidence, source, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (original_text, user_id) DO NOTHING
		RETURNING ` + vendorMappingColumns + `
	`
	m, err := scanVendorMapping(pool.QueryRow(ctx, query, norm, mappedName, confidence, source, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	cache.ClearVendorCacheForText(norm)
	return m, nil
}

func ListVendorMappingsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]*models.VendorMapping, error) {
	query := `
		SELECT ` + vendorMappingColumns + `
		FROM vendor_mappings
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*models.VendorMapping
	for rows.Next() {
		m, err := scanVendorMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func DeleteVendorMapping(ctx context.Context, pool *pgxpool.Pool, userID, id int64) error {
	var norm string
	err := pool.QueryRow(ctx, `
		DELETE FROM vendor_mappings
		WHERE id = $1 AND user_id = $2
		RETURNING original_text
	`, id, userID).Scan(&norm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	cache.ClearVendorCacheForText(norm)
	return nil
}

// PurgeStaleGlobalMappings deletes low-confidence global mappings past the
// retention window. User-owned rows are never touched.
func PurgeStaleGlobalMappings(ctx context.Context, pool *pgxpool.Pool, now time.Time) (int64, error) {
	query := `
		DELETE FROM vendor_mappings
		WHERE user_id IS NULL AND confidence < $1 AND created_at < $2
	`
	cmd, err := pool.Exec(ctx, query, vendors.CleanupConfidenceFloor, now.Add(-vendors.CleanupMaxAge))
	if err != nil {
		return 0, err
	}
	if cmd.RowsAffected() > 0 {
		cache.ClearAllVendorCaches()
	}
	return cmd.RowsAffected(), nil
}
