package category

import (
	"context"
	"testing"

	sqldb "centsible-server/src/db/sql"
	"centsible-server/src/models"
	"centsible-server/src/vendors"
)

// fakeStore backs the resolver with in-memory maps. Lookup misses return
// (nil, nil) like the real store.
type fakeStore struct {
	transactions map[string]*models.Transaction
	userHistory  map[string]*models.Category // vendorNormalized -> category
	mappings     map[string]*models.CategoryMapping
	categories   map[int64]*models.Category
	byName       map[string]*models.Category

	applied map[string]int64 // transactionID -> categoryID
	learned map[string]int64 // vendorNormalized -> categoryID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transactions: make(map[string]*models.Transaction),
		userHistory:  make(map[string]*models.Category),
		mappings:     make(map[string]*models.CategoryMapping),
		categories:   make(map[int64]*models.Category),
		byName:       make(map[string]*models.Category),
		applied:      make(map[string]int64),
		learned:      make(map[string]int64),
	}
}

func (f *fakeStore) addCategory(c *models.Category) {
	f.categories[c.ID] = c
	f.byName[c.Name] = c
}

func (f *fakeStore) Transaction(_ context.Context, _ int64, id string) (*models.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok {
		return nil, sqldb.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) UserCategoryForVendor(_ context.Context, _ int64, vendor string) (*models.Category, error) {
	return f.userHistory[vendor], nil
}

func (f *fakeStore) CategoryMappingForVendor(_ context.Context, _ int64, vendor string) (*models.CategoryMapping, error) {
	return f.mappings[vendor], nil
}

func (f *fakeStore) CategoryByID(_ context.Context, _ int64, id int64) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, sqldb.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) CategoryByName(_ context.Context, _ int64, name string) (*models.Category, error) {
	return f.byName[name], nil
}

func (f *fakeStore) ApplyCategory(_ context.Context, _ int64, transactionID string, categoryID int64) error {
	f.applied[transactionID] = categoryID
	return nil
}

func (f *fakeStore) LearnMapping(_ context.Context, _ int64, vendor string, categoryID int64, _ float64) error {
	f.learned[vendor] = categoryID
	return nil
}

func testResolver(store Store) *Resolver {
	dict := vendors.NewDictionary([]vendors.Record{
		{Brand: "Zomato", Category: "Food & Dining", Descriptors: []string{"zomato"}},
	})
	return NewResolver(store, dict, 0, nil)
}

func TestResolveUserHistoryWins(t *testing.T) {
	store := newFakeStore()
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNormalized: "zomato"}
	dining := &models.Category{ID: 1, Name: "Food & Dining"}
	store.addCategory(dining)
	store.userHistory["zomato"] = dining
	store.mappings["zomato"] = &models.CategoryMapping{CategoryID: 1, Confidence: 0.6}

	sugg, err := testResolver(store).Resolve(context.Background(), 1, "t1", false)
	if err != nil {
		t.Fatal(err)
	}
	if sugg == nil || sugg.Source != SourceUserHistory {
		t.Fatalf("got %+v, want user_history source", sugg)
	}
	if sugg.Confidence != UserHistoryConfidence {
		t.Fatalf("confidence = %v, want %v", sugg.Confidence, UserHistoryConfidence)
	}
	if sugg.Applied || len(store.applied) != 0 {
		t.Fatal("autoApply off, nothing should have been written")
	}
}

func TestResolvePatternTier(t *testing.T) {
	store := newFakeStore()
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNormalized: "zomato"}
	store.addCategory(&models.Category{ID: 2, Name: "Food & Dining"})
	store.mappings["zomato"] = &models.CategoryMapping{CategoryID: 2, Confidence: 0.9}

	sugg, err := testResolver(store).Resolve(context.Background(), 1, "t1", false)
	if err != nil {
		t.Fatal(err)
	}
	if sugg == nil || sugg.Source != SourcePattern || sugg.Confidence != 0.9 {
		t.Fatalf("got %+v", sugg)
	}
}

func TestResolveMappingToVanishedCategoryFallsThrough(t *testing.T) {
	store := newFakeStore()
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNormalized: "zomato", VendorNameOriginal: "ZOMATO"}
	store.addCategory(&models.Category{ID: 3, Name: "Food & Dining"})
	store.mappings["zomato"] = &models.CategoryMapping{CategoryID: 999, Confidence: 0.9}

	sugg, err := testResolver(store).Resolve(context.Background(), 1, "t1", false)
	if err != nil {
		t.Fatal(err)
	}
	if sugg == nil || sugg.Source != SourceDictionary {
		t.Fatalf("got %+v, want fall-through to the dictionary tier", sugg)
	}
}

func TestResolveDictionaryTier(t *testing.T) {
	store := newFakeStore()
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNameOriginal: "ZOMATO"}
	store.addCategory(&models.Category{ID: 3, Name: "Food & Dining"})

	sugg, err := testResolver(store).Resolve(context.Background(), 1, "t1", false)
	if err != nil {
		t.Fatal(err)
	}
	if sugg == nil || sugg.Source != SourceDictionary || sugg.CategoryID != 3 {
		t.Fatalf("got %+v", sugg)
	}
	if sugg.Confidence != vendors.ExactConfidence {
		t.Fatalf("confidence = %v, want dictionary match confidence", sugg.Confidence)
	}
}

func TestResolveNoMatchIsNotAnError(t *testing.T) {
	store := newFakeStore()
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNameOriginal: "UNKNOWN SHOP"}

	sugg, err := testResolver(store).Resolve(context.Background(), 1, "t1", true)
	if err != nil {
		t.Fatal(err)
	}
	if sugg != nil {
		t.Fatalf("got %+v, want nil suggestion", sugg)
	}
}

func TestResolveAutoApplyThreshold(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		applied    bool
	}{
		{"above threshold applies", 0.9, true},
		{"exactly at threshold applies", AutoApplyThreshold, true},
		{"below threshold suggests only", 0.79, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNormalized: "zomato"}
			store.addCategory(&models.Category{ID: 2, Name: "Food & Dining"})
			store.mappings["zomato"] = &models.CategoryMapping{CategoryID: 2, Confidence: tt.confidence}

			sugg, err := testResolver(store).Resolve(context.Background(), 1, "t1", true)
			if err != nil {
				t.Fatal(err)
			}
			if sugg == nil {
				t.Fatal("expected a suggestion")
			}
			if sugg.Applied != tt.applied {
				t.Fatalf("applied = %v, want %v", sugg.Applied, tt.applied)
			}
			if _, wrote := store.applied["t1"]; wrote != tt.applied {
				t.Fatalf("store write = %v, want %v", wrote, tt.applied)
			}
		})
	}
}

func TestResolveBulkCollectsFailures(t *testing.T) {
	store := newFakeStore()
	store.addCategory(&models.Category{ID: 2, Name: "Food & Dining"})
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNormalized: "zomato"}
	store.transactions["t2"] = &models.Transaction{ID: "t2", VendorNormalized: "zomato"}
	store.mappings["zomato"] = &models.CategoryMapping{CategoryID: 2, Confidence: 0.9}

	res := testResolver(store).ResolveBulk(context.Background(), 1, []string{"t1", "t2", "missing"}, true)

	if res.Stats.Total != 3 {
		t.Fatalf("total = %d", res.Stats.Total)
	}
	if res.Stats.Categorized != 2 || res.Stats.Applied != 2 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if res.Stats.Failed != 1 || len(res.Failures) != 1 {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if res.Failures[0].TransactionID != "missing" || res.Failures[0].Code != "not_found" {
		t.Fatalf("failure = %+v", res.Failures[0])
	}
}

func TestResolveBulkTruncatesAtLimit(t *testing.T) {
	store := newFakeStore()
	ids := make([]string, BulkLimit+10)
	for i := range ids {
		ids[i] = "missing"
	}

	res := testResolver(store).ResolveBulk(context.Background(), 1, ids, false)
	if res.Stats.Total != BulkLimit {
		t.Fatalf("total = %d, want %d", res.Stats.Total, BulkLimit)
	}
}

func TestApplyManualLearnsMapping(t *testing.T) {
	store := newFakeStore()
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNormalized: "zomato"}
	store.addCategory(&models.Category{ID: 5, Name: "Food & Dining"})

	if err := testResolver(store).ApplyManual(context.Background(), 1, "t1", 5); err != nil {
		t.Fatal(err)
	}
	if store.applied["t1"] != 5 {
		t.Fatalf("applied = %+v", store.applied)
	}
	if store.learned["zomato"] != 5 {
		t.Fatalf("learned = %+v", store.learned)
	}
}

func TestApplyManualRejectsUnknownCategory(t *testing.T) {
	store := newFakeStore()
	store.transactions["t1"] = &models.Transaction{ID: "t1", VendorNormalized: "zomato"}

	if err := testResolver(store).ApplyManual(context.Background(), 1, "t1", 999); err == nil {
		t.Fatal("expected an error for an unknown category")
	}
	if len(store.applied) != 0 {
		t.Fatal("nothing should have been applied")
	}
}
