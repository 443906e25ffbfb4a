package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tokens banks prepend or append to descriptions that carry no vendor
// identity.
var bankTokens = map[string]bool{
	"dr":     true,
	"cr":     true,
	"debit":  true,
	"credit": true,
}

// Compute derives the deduplication hash for one statement line. It is a pure
// function: the same (date, amount, description, user) always produces the
// same 64-character hex digest, and the user id keeps different users'
// fingerprints in disjoint spaces.
func Compute(date, amount, description string, userID int64) string {
	input := fmt.Sprintf("%s-%s-%s-%d", date, NormalizeAmount(amount), NormalizeVendor(description), userID)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// NormalizeAmount re-serializes an amount string with exactly two decimal
// digits so "1234.5" and "1234.50" hash identically. Unparseable input is
// returned trimmed as-is; validation rejects malformed amounts before any
// hashing happens, so this path only covers odd-but-harmless extractor output.
func NormalizeAmount(raw string) string {
	trimmed := strings.TrimSpace(raw)
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return trimmed
	}
	return d.StringFixed(2)
}

// NormalizeVendor lower-cases the description, collapses runs of
// non-alphanumeric characters to single spaces, and strips leading/trailing
// DR/CR/DEBIT/CREDIT tokens.
func NormalizeVendor(raw string) string {
	lower := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lower))
	space := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			space = false
		} else if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	fields := strings.Fields(b.String())
	for len(fields) > 0 && bankTokens[fields[0]] {
		fields = fields[1:]
	}
	for len(fields) > 0 && bankTokens[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}
