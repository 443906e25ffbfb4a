package models

import "time"

type Transaction struct {
	ID                   string    `json:"id"`
	UserID               int64     `json:"user_id"`
	FileID               *string   `json:"file_id,omitempty"`
	Fingerprint          string    `json:"-"`
	VendorName           string    `json:"vendor_name"`
	VendorNameOriginal   string    `json:"vendor_name_original"`
	VendorNormalized     string    `json:"-"`
	Amount               string    `json:"amount"`
	Type                 string    `json:"type"`
	TransactionDate      time.Time `json:"transaction_date"`
	ReferenceNumber      string    `json:"reference_number,omitempty"`
	RawText              string    `json:"-"`
	CategoryID           *int64    `json:"category_id"`
	IsDuplicate          bool      `json:"is_duplicate"`
	IsInternalTransfer   bool      `json:"is_internal_transfer"`
	RelatedTransactionID *string   `json:"related_transaction_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
