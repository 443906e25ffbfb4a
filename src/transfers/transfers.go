package transfers

import (
	"strings"

	"github.com/shopspring/decimal"

	"centsible-server/src/models"
)

// WindowDays is how far apart the two legs of a transfer may post.
const WindowDays = 3

// amountTolerance absorbs rounding differences between the two legs.
var amountTolerance = decimal.NewFromFloat(0.01)

// keywords that mark a description as transfer-like. At least one side of a
// candidate pair must contain one.
var keywords = []string{
	"transfer",
	"credit card",
	"autopay",
	"billpay",
	"account transfer",
	"neft",
	"imps",
	"rtgs",
	"payment received",
}

// Link records one direction of a detected transfer pair. Detect always emits
// both directions so persistence stays symmetric.
type Link struct {
	TransactionID        string
	RelatedTransactionID string
}

// Detect scans a user's transactions pairwise for internal transfers: equal
// amounts within tolerance, opposite types, dates within WindowDays, and a
// transfer keyword on at least one side. The first valid pairing claims both
// transactions, so no transaction ends up with more than one partner. Already
// linked transactions are skipped, which makes Detect safe to re-run over the
// full history after new statements arrive.
func Detect(txns []*models.Transaction) []Link {
	claimed := make(map[string]bool, len(txns))
	for _, t := range txns {
		if t.IsInternalTransfer {
			claimed[t.ID] = true
		}
	}

	var links []Link
	for i := 0; i < len(txns); i++ {
		a := txns[i]
		if claimed[a.ID] {
			continue
		}
		for j := i + 1; j < len(txns); j++ {
			b := txns[j]
			if claimed[b.ID] {
				continue
			}
			if !isPair(a, b) {
				continue
			}
			claimed[a.ID] = true
			claimed[b.ID] = true
			links = append(links,
				Link{TransactionID: a.ID, RelatedTransactionID: b.ID},
				Link{TransactionID: b.ID, RelatedTransactionID: a.ID},
			)
			break
		}
	}
	return links
}

func isPair(a, b *models.Transaction) bool {
	if a.Type == b.Type {
		return false
	}
	amtA, err := decimal.NewFromString(a.Amount)
	if err != nil {
		return false
	}
	amtB, err := decimal.NewFromString(b.Amount)
	if err != nil {
		return false
	}
	if amtA.Sub(amtB).Abs().GreaterThanOrEqual(amountTolerance) {
		return false
	}
	days := a.TransactionDate.Sub(b.TransactionDate).Hours() / 24
	if days < 0 {
		days = -days
	}
	if days > WindowDays {
		return false
	}
	return hasKeyword(a.VendorNameOriginal) || hasKeyword(b.VendorNameOriginal)
}

func hasKeyword(description string) bool {
	lower := strings.ToLower(description)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
