package models

import "time"

// StatementFile tracks one uploaded statement and the summary written once
// ingestion for it completes.
type StatementFile struct {
	ID               string     `json:"id"`
	UserID           int64      `json:"user_id"`
	FileName         string     `json:"file_name"`
	Status           string     `json:"status"`
	TransactionCount int        `json:"transaction_count"`
	TotalIncome      string     `json:"total_income"`
	TotalExpenses    string     `json:"total_expenses"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

const (
	FileStatusProcessing = "processing"
	FileStatusCompleted  = "completed"
)
