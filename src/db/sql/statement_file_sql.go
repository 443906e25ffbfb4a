package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"centsible-server/src/models"
)

const statementFileColumns = `id, user_id, file_name, status, transaction_count, total_income::text, total_expenses::text, completed_at, created_at`

func scanStatementFile(row pgx.Row) (*models.StatementFile, error) {
	var f models.StatementFile
	err := row.Scan(&f.ID, &f.UserID, &f.FileName, &f.Status, &f.TransactionCount, &f.TotalIncome, &f.TotalExpenses, &f.CompletedAt, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func CreateStatementFile(ctx context.Context, pool *pgxpool.Pool, id string, userID int64, fileName string) (*models.StatementFile, error) {
	query := `
		INSERT INTO statement_files (id, user_id, file_name, status, transaction_count, total_income, total_expenses, created_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, NOW())
		RETURNING ` + statementFileColumns + `
	`
	return scanStatementFile(pool.QueryRow(ctx, query, id, userID, fileName, models.FileStatusProcessing))
}

// CompleteStatementFile writes the per-file summary once ingestion for the
// file finishes.
func CompleteStatementFile(ctx context.Context, pool *pgxpool.Pool, id string, count int, income, expenses decimal.Decimal) error {
	query := `
		UPDATE statement_files
		SET status = $1, transaction_count = $2, total_income = $3, total_expenses = $4, completed_at = NOW()
		WHERE id = $5
	`
	cmd, err := pool.Exec(ctx, query, models.FileStatusCompleted, count, income.StringFixed(2), expenses.StringFixed(2), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func GetStatementFilesForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]*models.StatementFile, error) {
	query := `
		SELECT ` + statementFileColumns + `
		FROM statement_files
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.StatementFile
	for rows.Next() {
		f, err := scanStatementFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func GetStatementFileByID(ctx context.Context, pool *pgxpool.Pool, userID int64, id string) (*models.StatementFile, error) {
	query := `SELECT ` + statementFileColumns + ` FROM statement_files WHERE id = $1 AND user_id = $2`
	f, err := scanStatementFile(pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}
