package models

import "time"

// Where a vendor mapping came from. User corrections outrank everything else
// in the cache update policy; learned-consensus rows are produced when enough
// independent corrections agree.
const (
	SourceDictionary = "dictionary"
	SourcePattern    = "pattern"
	SourceUser       = "user"
	SourceExternal   = "external"
	SourceConsensus  = "learned-consensus"
)

// VendorMapping associates normalized raw vendor text with a clean display
// name. UserID nil means the mapping is shared globally; (OriginalText, UserID)
// is the natural key.
type VendorMapping struct {
	ID           int64     `json:"id"`
	OriginalText string    `json:"original_text"`
	MappedName   string    `json:"mapped_name"`
	Confidence   float64   `json:"confidence"`
	Source       string    `json:"source"`
	UserID       *int64    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
