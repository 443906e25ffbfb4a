package models

// CategorySuggestion is the result of resolving one transaction's category.
// Applied is set when the suggestion cleared the auto-apply threshold and was
// written back.
type CategorySuggestion struct {
	TransactionID string  `json:"transaction_id"`
	CategoryID    int64   `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	Confidence    float64 `json:"confidence"`
	Source        string  `json:"source"`
	Applied       bool    `json:"applied"`
}

// ItemFailure records a single failed item inside a bulk operation or
// ingestion batch without failing the batch as a whole.
type ItemFailure struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Index         int    `json:"index,omitempty"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

// BulkStats aggregates a bulk resolution run.
type BulkStats struct {
	Total          int `json:"total"`
	Categorized    int `json:"categorized"`
	Applied        int `json:"applied"`
	Failed         int `json:"failed"`
	HighConfidence int `json:"high_confidence"`
}

type BulkCategoryResult struct {
	Results  []CategorySuggestion `json:"results"`
	Failures []ItemFailure        `json:"failures,omitempty"`
	Stats    BulkStats            `json:"stats"`
}

// VendorResolution is the result of re-resolving one transaction's vendor
// name.
type VendorResolution struct {
	TransactionID string  `json:"transaction_id"`
	VendorName    string  `json:"vendor_name"`
	Confidence    float64 `json:"confidence"`
	Source        string  `json:"source"`
	Applied       bool    `json:"applied"`
}

type BulkVendorStats struct {
	Total          int `json:"total"`
	Resolved       int `json:"resolved"`
	Applied        int `json:"applied"`
	Failed         int `json:"failed"`
	HighConfidence int `json:"high_confidence"`
}

type BulkVendorResult struct {
	Results  []VendorResolution `json:"results"`
	Failures []ItemFailure      `json:"failures,omitempty"`
	Stats    BulkVendorStats    `json:"stats"`
}
