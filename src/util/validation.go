package util

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"centsible-server/src/models"
)

func ValidateEmail(email string) bool {
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return re.MatchString(email)
}

func ValidateUsername(username string) bool {
	return len(username) >= 3 && len(username) <= 30
}

func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile("[a-z]").MatchString(password)
	hasUpper := regexp.MustCompile("[A-Z]").MatchString(password)
	hasDigit := regexp.MustCompile("[0-9]").MatchString(password)

	return hasLower && hasUpper && hasDigit
}

// ApplyRawDefaults fills the optional fields the extraction service may omit.
func ApplyRawDefaults(raw *models.RawTransaction) {
	// ReferenceNumber and OriginalCurrency default to empty strings and
	// OriginalAmount to nil, which the zero values already provide; this
	// hook exists so the defaulting rule has one home if it ever grows.
	_ = raw
}

// ValidateRawTransaction rejects malformed statement lines before they reach
// hashing or matching: parseable non-negative amount, ISO date, known type.
func ValidateRawTransaction(raw *models.RawTransaction) error {
	if raw.Description == "" {
		return fmt.Errorf("description is required")
	}
	if raw.Type != models.TypeDebit && raw.Type != models.TypeCredit {
		return fmt.Errorf("type must be DEBIT or CREDIT, got %q", raw.Type)
	}
	amt, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q", raw.Amount)
	}
	if amt.IsNegative() {
		return fmt.Errorf("amount must be non-negative, got %q", raw.Amount)
	}
	if _, err := time.Parse("2006-01-02", raw.Date); err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw.Date)
	}
	return nil
}

// ValidateConfidence checks a caller-supplied confidence score.
func ValidateConfidence(confidence float64) bool {
	return confidence >= 0 && confidence <= 1
}

// ValidateMappingSource checks the source enum on vendor mapping creation.
func ValidateMappingSource(source string) bool {
	switch source {
	case "user", "llm", "google":
		return true
	}
	return false
}
