package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	sqldb "centsible-server/src/db/sql"
	"centsible-server/src/models"
	"centsible-server/src/vendors"
)

// fakeStore collects pipeline writes in memory. Vendor lookups miss unless
// seeded; insert calls can be made to fail per chunk index.
type fakeStore struct {
	fingerprints map[string]struct{}
	mappings     map[string]*models.VendorMapping

	insertCalls  int
	failChunks   map[int]bool
	inserted     []models.Transaction
	savedGlobals []string
	vendorsSet   map[string]string
	links        map[string]string
	completed    bool
	completedCnt int
	income       decimal.Decimal
	expenses     decimal.Decimal
	history      []*models.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		fingerprints: make(map[string]struct{}),
		mappings:     make(map[string]*models.VendorMapping),
		failChunks:   make(map[int]bool),
		vendorsSet:   make(map[string]string),
		links:        make(map[string]string),
	}
}

func (f *fakeStore) Fingerprints(context.Context, int64) (map[string]struct{}, error) {
	return f.fingerprints, nil
}

func (f *fakeStore) InsertTransactions(_ context.Context, txns []models.Transaction) error {
	call := f.insertCalls
	f.insertCalls++
	if f.failChunks[call] {
		return errors.New("insert refused")
	}
	f.inserted = append(f.inserted, txns...)
	return nil
}

func (f *fakeStore) Transaction(_ context.Context, _ int64, id string) (*models.Transaction, error) {
	for i := range f.inserted {
		if f.inserted[i].ID == id {
			return &f.inserted[i], nil
		}
	}
	return nil, sqldb.ErrNotFound
}

func (f *fakeStore) TransactionsForUser(context.Context, int64) ([]*models.Transaction, error) {
	return f.history, nil
}

func (f *fakeStore) LinkTransfer(_ context.Context, _ int64, id, relatedID string) error {
	f.links[id] = relatedID
	return nil
}

func (f *fakeStore) BestVendorMapping(_ context.Context, _ int64, text string) (*models.VendorMapping, error) {
	return f.mappings[text], nil
}

func (f *fakeStore) SaveVendorMapping(_ context.Context, text, name string, confidence float64, source string, userID *int64) (*models.VendorMapping, error) {
	f.savedGlobals = append(f.savedGlobals, text)
	m := &models.VendorMapping{OriginalText: text, MappedName: name, Confidence: confidence, Source: source, UserID: userID}
	f.mappings[text] = m
	return m, nil
}

func (f *fakeStore) SetTransactionVendor(_ context.Context, _ int64, id, name string) error {
	f.vendorsSet[id] = name
	return nil
}

func (f *fakeStore) CompleteFile(_ context.Context, _ string, count int, income, expenses decimal.Decimal) error {
	f.completed = true
	f.completedCnt = count
	f.income = income
	f.expenses = expenses
	return nil
}

func testDict() *vendors.Dictionary {
	return vendors.NewDictionary([]vendors.Record{
		{Brand: "Zomato", Category: "Food & Dining", Descriptors: []string{"zomato"}},
	})
}

func raw(date, amount, typ, description string) models.RawTransaction {
	return models.RawTransaction{Date: date, Amount: amount, Type: typ, Description: description}
}

func TestProcessStatementHappyPath(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)

	raws := []models.RawTransaction{
		raw("2024-03-01", "450.00", models.TypeDebit, "ZOMATO"),
		raw("2024-03-02", "90000.00", models.TypeCredit, "SALARY MARCH"),
	}

	res, err := p.ProcessStatement(context.Background(), 1, "file-1", raws)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || res.Inserted != 2 || res.Duplicates != 0 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if res.VendorResolved != 1 {
		t.Fatalf("vendor resolved = %d, want the dictionary hit only", res.VendorResolved)
	}
	if !store.completed || store.completedCnt != 2 {
		t.Fatalf("file summary not written: %+v", store)
	}
	if store.income.StringFixed(2) != "90000.00" || store.expenses.StringFixed(2) != "450.00" {
		t.Fatalf("income/expenses = %s/%s", store.income, store.expenses)
	}
}

func TestProcessStatementRejectsInvalidLines(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)

	raws := []models.RawTransaction{
		raw("2024-03-01", "450.00", models.TypeDebit, "ZOMATO"),
		raw("not-a-date", "450.00", models.TypeDebit, "ZOMATO"),
		raw("2024-03-01", "450.00", "SIDEWAYS", "ZOMATO"),
		raw("2024-03-01", "450.00", models.TypeDebit, ""),
	}

	res, err := p.ProcessStatement(context.Background(), 1, "", raws)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 1 {
		t.Fatalf("inserted = %d, want only the valid line", res.Inserted)
	}
	if len(res.Failures) != 3 {
		t.Fatalf("failures = %+v", res.Failures)
	}
	for _, f := range res.Failures {
		if f.Code != "invalid_input" {
			t.Fatalf("failure code = %q", f.Code)
		}
	}
}

func TestProcessStatementSkipsDuplicates(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)

	raws := []models.RawTransaction{
		raw("2024-03-01", "450.00", models.TypeDebit, "ZOMATO"),
		raw("2024-03-01", "450.00", models.TypeDebit, "ZOMATO"),
	}

	res, err := p.ProcessStatement(context.Background(), 1, "", raws)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 1 || res.Duplicates != 1 {
		t.Fatalf("result = %+v", res)
	}

	// Re-uploading the same statement against the persisted set inserts nothing.
	for _, tx := range store.inserted {
		store.fingerprints[tx.Fingerprint] = struct{}{}
	}
	store.inserted = nil
	res, err = p.ProcessStatement(context.Background(), 1, "", raws)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 0 || res.Duplicates != 2 {
		t.Fatalf("re-upload result = %+v", res)
	}
}

func TestProcessStatementMarksTransferPairs(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)

	raws := []models.RawTransaction{
		raw("2024-03-01", "5000.00", models.TypeDebit, "NEFT TRANSFER TO SAVINGS"),
		raw("2024-03-02", "5000.00", models.TypeCredit, "NEFT TRANSFER FROM CURRENT"),
	}

	res, err := p.ProcessStatement(context.Background(), 1, "", raws)
	if err != nil {
		t.Fatal(err)
	}
	if res.TransferPairs != 1 {
		t.Fatalf("transfer pairs = %d", res.TransferPairs)
	}
	for _, tx := range store.inserted {
		if !tx.IsInternalTransfer || tx.RelatedTransactionID == nil {
			t.Fatalf("leg not linked before insert: %+v", tx)
		}
	}
}

func TestProcessStatementChunkFailureKeepsEarlierChunks(t *testing.T) {
	store := newFakeStore()
	store.failChunks[1] = true
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)
	p.chunkSize = 2

	raws := make([]models.RawTransaction, 5)
	for i := range raws {
		raws[i] = raw("2024-03-01", decimal.NewFromInt(int64(100+i)).StringFixed(2), models.TypeDebit, "MERCHANT X")
	}

	res, err := p.ProcessStatement(context.Background(), 1, "file-1", raws)
	if err != nil {
		t.Fatal(err)
	}
	// Chunks of 2,2,1: the middle chunk fails, the rest survive.
	if res.Inserted != 3 {
		t.Fatalf("inserted = %d, want 3", res.Inserted)
	}
	persistFailed := 0
	for _, f := range res.Failures {
		if f.Code == "persist_failed" {
			persistFailed++
		}
	}
	if persistFailed != 2 {
		t.Fatalf("persist failures = %d, want one per item of the failed chunk", persistFailed)
	}
	if store.completedCnt != 3 {
		t.Fatalf("summary counted %d, want inserted only", store.completedCnt)
	}
}

func TestResolveVendorsBulkAppliesAndCaches(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)

	raws := []models.RawTransaction{raw("2024-03-01", "450.00", models.TypeDebit, "ZOMATO")}
	if _, err := p.ProcessStatement(context.Background(), 1, "", raws); err != nil {
		t.Fatal(err)
	}
	id := store.inserted[0].ID

	res := p.ResolveVendorsBulk(context.Background(), 1, []string{id, "missing"}, true)

	if res.Stats.Total != 2 || res.Stats.Resolved != 1 || res.Stats.Applied != 1 || res.Stats.Failed != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if res.Failures[0].Code != "not_found" {
		t.Fatalf("failure = %+v", res.Failures[0])
	}
	if store.vendorsSet[id] != "Zomato" {
		t.Fatalf("vendor not applied: %+v", store.vendorsSet)
	}
	if res.Results[0].Source != models.SourceDictionary && res.Results[0].Source != models.SourcePattern {
		t.Fatalf("source = %q", res.Results[0].Source)
	}
}

func TestResolveVendorsBulkPrefersCachedMapping(t *testing.T) {
	store := newFakeStore()
	uid := int64(1)
	store.mappings["ZOMATO"] = &models.VendorMapping{
		OriginalText: "zomato", MappedName: "Zomato Online", Confidence: 0.95,
		Source: models.SourceUser, UserID: &uid,
	}
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)

	raws := []models.RawTransaction{raw("2024-03-01", "450.00", models.TypeDebit, "ZOMATO")}
	if _, err := p.ProcessStatement(context.Background(), 1, "", raws); err != nil {
		t.Fatal(err)
	}
	id := store.inserted[0].ID

	res := p.ResolveVendorsBulk(context.Background(), 1, []string{id}, false)
	if len(res.Results) != 1 || res.Results[0].VendorName != "Zomato Online" {
		t.Fatalf("results = %+v", res.Results)
	}
	if res.Results[0].Source != models.SourceUser {
		t.Fatalf("cached mapping should win, got source %q", res.Results[0].Source)
	}
}

func TestRescanTransfersLinksHistory(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, testDict(), nil, nil, 0, nil)

	// Legs from two different statements, never linked at ingest time.
	a := &models.Transaction{ID: "a", Amount: "5000.00", Type: models.TypeDebit, VendorNameOriginal: "CREDIT CARD AUTOPAY"}
	b := &models.Transaction{ID: "b", Amount: "5000.00", Type: models.TypeCredit, VendorNameOriginal: "PAYMENT RECEIVED"}
	store.history = []*models.Transaction{a, b}

	pairs, err := p.RescanTransfers(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if pairs != 1 {
		t.Fatalf("pairs = %d", pairs)
	}
	if store.links["a"] != "b" || store.links["b"] != "a" {
		t.Fatalf("links = %+v", store.links)
	}
}
