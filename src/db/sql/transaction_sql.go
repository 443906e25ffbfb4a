package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"centsible-server/src/models"
)

const transactionColumns = `
	id, user_id, file_id, fingerprint, vendor_name, vendor_name_original,
	vendor_normalized, amount::text, type, transaction_date, reference_number,
	raw_text, category_id, is_duplicate, is_internal_transfer,
	related_transaction_id, created_at, updated_at
`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.FileID, &t.Fingerprint, &t.VendorName,
		&t.VendorNameOriginal, &t.VendorNormalized, &t.Amount, &t.Type,
		&t.TransactionDate, &t.ReferenceNumber, &t.RawText, &t.CategoryID,
		&t.IsDuplicate, &t.IsInternalTransfer, &t.RelatedTransactionID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetFingerprintsForUser loads the persisted fingerprint set used for
// cross-batch deduplication.
func GetFingerprintsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) (map[string]struct{}, error) {
	rows, err := pool.Query(ctx, `SELECT fingerprint FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		set[fp] = struct{}{}
	}
	return set, rows.Err()
}

// InsertTransactions writes one bounded chunk of transactions. Callers chunk
// batches (100 rows per call) before invoking this; a failed chunk does not
// undo earlier ones.
func InsertTransactions(ctx context.Context, pool *pgxpool.Pool, txns []models.Transaction) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO transactions (
			id, user_id, file_id, fingerprint, vendor_name, vendor_name_original,
			vendor_normalized, amount, type, transaction_date, reference_number,
			raw_text, category_id, is_duplicate, is_internal_transfer,
			related_transaction_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		ON CONFLICT (user_id, fingerprint) DO NOTHING
	`
	for _, t := range txns {
		batch.Queue(query,
			t.ID, t.UserID, t.FileID, t.Fingerprint, t.VendorName,
			t.VendorNameOriginal, t.VendorNormalized, t.Amount, t.Type,
			t.TransactionDate, t.ReferenceNumber, t.RawText, t.CategoryID,
			t.IsDuplicate, t.IsInternalTransfer, t.RelatedTransactionID,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range txns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert transaction chunk: %w", err)
		}
	}
	return nil
}

func GetTransactionByID(ctx context.Context, pool *pgxpool.Pool, userID int64, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	t, err := scanTransaction(pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func GetTransactionsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND is_duplicate = FALSE
		ORDER BY transaction_date, created_at
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func UpdateTransactionCategory(ctx context.Context, pool *pgxpool.Pool, userID int64, id string, categoryID int64) error {
	query := `
		UPDATE transactions SET category_id = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`
	cmd, err := pool.Exec(ctx, query, categoryID, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func UpdateTransactionVendor(ctx context.Context, pool *pgxpool.Pool, userID int64, id, vendorName string) error {
	query := `
		UPDATE transactions SET vendor_name = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`
	cmd, err := pool.Exec(ctx, query, vendorName, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkInternalTransfer marks one leg of a transfer pair. The orchestrator
// calls it once per direction so both rows point at each other.
func LinkInternalTransfer(ctx context.Context, pool *pgxpool.Pool, userID int64, id, relatedID string) error {
	query := `
		UPDATE transactions
		SET is_internal_transfer = TRUE, related_transaction_id = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`
	cmd, err := pool.Exec(ctx, query, relatedID, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserCategoryForVendor returns the category the user most recently
// assigned to an equivalent vendor, or ErrNotFound when they never have.
func GetUserCategoryForVendor(ctx context.Context, pool *pgxpool.Pool, userID int64, vendorNormalized string) (*models.Category, error) {
	query := `
		SELECT c.id, c.name, c.parent_id, c.user_id, c.is_system, c.created_at
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.vendor_normalized = $2 AND t.category_id IS NOT NULL
		ORDER BY t.updated_at DESC
		LIMIT 1
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, userID, vendorNormalized).
		Scan(&c.ID, &c.Name, &c.ParentID, &c.UserID, &c.IsSystem, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
