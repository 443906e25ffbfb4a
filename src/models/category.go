package models

import "time"

// Category is a node in the category tree. System categories (IsSystem, nil
// UserID) are immutable; user categories may be deleted only when nothing
// references them.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	UserID    *int64    `json:"user_id,omitempty"`
	IsSystem  bool      `json:"is_system"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryMapping is a learned association from normalized vendor text to a
// category, built up as users categorize transactions.
type CategoryMapping struct {
	ID         int64     `json:"id"`
	VendorText string    `json:"vendor_text"`
	CategoryID int64     `json:"category_id"`
	Confidence float64   `json:"confidence"`
	UserID     *int64    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
