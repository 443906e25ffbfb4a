package transfers

import (
	"testing"
	"time"

	"centsible-server/src/models"
)

func txn(id, amount, typ, description string, day int) *models.Transaction {
	return &models.Transaction{
		ID:                 id,
		Amount:             amount,
		Type:               typ,
		VendorNameOriginal: description,
		TransactionDate:    time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestDetectCreditCardPayment(t *testing.T) {
	txns := []*models.Transaction{
		txn("a", "5000.00", models.TypeDebit, "PAYMENT TO HDFC CREDIT CARD", 10),
		txn("b", "5000.00", models.TypeCredit, "PAYMENT RECEIVED", 11),
	}

	links := Detect(txns)

	if len(links) != 2 {
		t.Fatalf("links = %d, want both directions of one pair", len(links))
	}
	if links[0].TransactionID != "a" || links[0].RelatedTransactionID != "b" {
		t.Errorf("forward link = %+v", links[0])
	}
	if links[1].TransactionID != "b" || links[1].RelatedTransactionID != "a" {
		t.Errorf("reverse link = %+v", links[1])
	}
}

func TestDetectRejectsNonPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b *models.Transaction
	}{
		{
			name: "same direction",
			a:    txn("a", "100.00", models.TypeDebit, "NEFT TRANSFER OUT", 1),
			b:    txn("b", "100.00", models.TypeDebit, "NEFT TRANSFER OUT", 1),
		},
		{
			name: "amount mismatch",
			a:    txn("a", "100.00", models.TypeDebit, "IMPS TRANSFER", 1),
			b:    txn("b", "100.02", models.TypeCredit, "IMPS TRANSFER", 1),
		},
		{
			name: "outside window",
			a:    txn("a", "100.00", models.TypeDebit, "RTGS TRANSFER", 1),
			b:    txn("b", "100.00", models.TypeCredit, "RTGS TRANSFER", 6),
		},
		{
			name: "no keyword on either side",
			a:    txn("a", "100.00", models.TypeDebit, "AMAZON PAY", 1),
			b:    txn("b", "100.00", models.TypeCredit, "REFUND AMAZON", 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if links := Detect([]*models.Transaction{tt.a, tt.b}); len(links) != 0 {
				t.Fatalf("expected no links, got %+v", links)
			}
		})
	}
}

func TestDetectKeywordOnOneSideSuffices(t *testing.T) {
	txns := []*models.Transaction{
		txn("a", "250.00", models.TypeDebit, "POS 1234 SOMETHING", 5),
		txn("b", "250.00", models.TypeCredit, "AUTOPAY SETTLEMENT", 5),
	}
	if links := Detect(txns); len(links) != 2 {
		t.Fatalf("keyword on one side should be enough, got %d links", len(links))
	}
}

func TestDetectOnePartnerPerTransaction(t *testing.T) {
	// Two credits both match the single debit; only the first pairing claims it.
	txns := []*models.Transaction{
		txn("a", "100.00", models.TypeDebit, "ACCOUNT TRANSFER", 1),
		txn("b", "100.00", models.TypeCredit, "ACCOUNT TRANSFER", 1),
		txn("c", "100.00", models.TypeCredit, "ACCOUNT TRANSFER", 2),
	}

	links := Detect(txns)

	if len(links) != 2 {
		t.Fatalf("links = %d, want exactly one pair", len(links))
	}
	if links[0].TransactionID != "a" || links[0].RelatedTransactionID != "b" {
		t.Fatalf("first valid pairing should claim both sides, got %+v", links[0])
	}
}

func TestDetectSkipsAlreadyLinked(t *testing.T) {
	a := txn("a", "100.00", models.TypeDebit, "NEFT TRANSFER", 1)
	b := txn("b", "100.00", models.TypeCredit, "NEFT TRANSFER", 1)
	a.IsInternalTransfer = true
	b.IsInternalTransfer = true

	if links := Detect([]*models.Transaction{a, b}); len(links) != 0 {
		t.Fatalf("already linked transactions should be skipped, got %+v", links)
	}
}

func TestDetectToleratesRounding(t *testing.T) {
	txns := []*models.Transaction{
		txn("a", "99.999", models.TypeDebit, "BILLPAY", 1),
		txn("b", "100.00", models.TypeCredit, "BILLPAY", 1),
	}
	if links := Detect(txns); len(links) != 2 {
		t.Fatalf("sub-tolerance difference should still pair, got %d links", len(links))
	}
}
