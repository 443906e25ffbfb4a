package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cache "centsible-server/src/db"
	"centsible-server/src/models"
)

const categoryColumns = `id, name, parent_id, user_id, is_system, created_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.UserID, &c.IsSystem, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCategoriesForUser returns the system tree plus the user's custom nodes.
func GetCategoriesForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]*models.Category, error) {
	key := "cat:" + strconv.FormatInt(userID, 10)
	if cached, found := cache.Cache.Get(key); found {
		if cats, ok := cached.([]*models.Category); ok {
			return cats, nil
		}
	}

	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_system = TRUE OR user_id = $1
		ORDER BY is_system DESC, name
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cache.SetCategoryCache(key, cats)
	return cats, nil
}

func GetCategoryByID(ctx context.Context, pool *pgxpool.Pool, userID, id int64) (*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND (is_system = TRUE OR user_id = $2)
	`
	c, err := scanCategory(pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetCategoryByName resolves a dictionary category hint to a category row
// visible to the user, preferring system categories.
func GetCategoryByName(ctx context.Context, pool *pgxpool.Pool, userID int64, name string) (*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE LOWER(name) = LOWER($1) AND (is_system = TRUE OR user_id = $2)
		ORDER BY is_system DESC, id
		LIMIT 1
	`
	c, err := scanCategory(pool.QueryRow(ctx, query, name, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// CreateCategory adds a custom node under an optional parent. The parent must
// be visible to the user; since every node has exactly one parent and new
// nodes are always leaves, cycles cannot form.
func CreateCategory(ctx context.Context, pool *pgxpool.Pool, userID int64, name string, parentID *int64) (*models.Category, error) {
	if parentID != nil {
		if _, err := GetCategoryByID(ctx, pool, userID, *parentID); err != nil {
			return nil, err
		}
	}
	query := `
		INSERT INTO categories (name, parent_id, user_id, is_system, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		RETURNING ` + categoryColumns + `
	`
	c, err := scanCategory(pool.QueryRow(ctx, query, name, parentID, userID))
	if err != nil {
		return nil, err
	}
	cache.ClearAllCategoryCaches()
	return c, nil
}

// DeleteCategory removes a custom category. System categories and categories
// still referenced by children or transactions are protected.
func DeleteCategory(ctx context.Context, pool *pgxpool.Pool, userID, id int64) error {
	c, err := GetCategoryByID(ctx, pool, userID, id)
	if err != nil {
		return err
	}
	if c.IsSystem || c.UserID == nil || *c.UserID != userID {
		return ErrNotFound
	}

	var children, referenced int
	err = pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM categories WHERE parent_id = $1),
			(SELECT COUNT(*) FROM transactions WHERE category_id = $1)
	`, id).Scan(&children, &referenced)
	if err != nil {
		return err
	}
	if children > 0 || referenced > 0 {
		return ErrConflict
	}

	cmd, err := pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2 AND is_system = FALSE`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	cache.ClearAllCategoryCaches()
	return nil
}

// GetCategoryMappingForVendor returns the learned vendor-to-category mapping,
// preferring the user's own row over a global one.
func GetCategoryMappingForVendor(ctx context.Context, pool *pgxpool.Pool, userID int64, vendorText string) (*models.CategoryMapping, error) {
	query := `
		SELECT id, vendor_text, category_id, confidence, user_id, created_at, updated_at
		FROM category_mappings
		WHERE vendor_text = $1 AND (user_id = $2 OR user_id IS NULL)
		ORDER BY user_id NULLS LAST, confidence DESC
		LIMIT 1
	`
	var m models.CategoryMapping
	err := pool.QueryRow(ctx, query, vendorText, userID).
		Scan(&m.ID, &m.VendorText, &m.CategoryID, &m.Confidence, &m.UserID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// UpsertCategoryMapping records that a user categorized a vendor, feeding the
// pattern tier of future resolutions.
func UpsertCategoryMapping(ctx context.Context, pool *pgxpool.Pool, userID int64, vendorText string, categoryID int64, confidence float64) error {
	query := `
		INSERT INTO category_mappings (vendor_text, category_id, confidence, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (vendor_text, user_id) DO UPDATE
		SET category_id = EXCLUDED.category_id,
		    confidence = EXCLUDED.confidence,
		    updated_at = NOW()
	`
	_, err := pool.Exec(ctx, query, vendorText, categoryID, confidence, userID)
	return err
}
