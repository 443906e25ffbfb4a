package models

// Transaction direction as reported on the statement.
const (
	TypeDebit  = "DEBIT"
	TypeCredit = "CREDIT"
)

// RawTransaction is one parsed statement line as delivered by the
// text-extraction service. Records are immutable once received; optional
// fields default to empty/nil when the extractor omits them.
type RawTransaction struct {
	Date             string  `json:"date"`
	Description      string  `json:"description"`
	ReferenceNumber  string  `json:"reference_number"`
	RawText          string  `json:"raw_text"`
	Amount           string  `json:"amount"`
	Type             string  `json:"type"`
	OriginalCurrency string  `json:"original_currency,omitempty"`
	OriginalAmount   *string `json:"original_amount,omitempty"`
}
