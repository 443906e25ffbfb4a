package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"centsible-server/src/models"
)

// Store adapts the pool-backed functions in this package to the narrow
// interfaces the resolver and orchestrator accept, so those components stay
// testable against in-memory fakes. Miss-style lookups translate ErrNotFound
// into (nil, nil).
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) Fingerprints(ctx context.Context, userID int64) (map[string]struct{}, error) {
	return GetFingerprintsForUser(ctx, s.Pool, userID)
}

func (s *Store) InsertTransactions(ctx context.Context, txns []models.Transaction) error {
	return InsertTransactions(ctx, s.Pool, txns)
}

func (s *Store) Transaction(ctx context.Context, userID int64, id string) (*models.Transaction, error) {
	return GetTransactionByID(ctx, s.Pool, userID, id)
}

func (s *Store) TransactionsForUser(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	return GetTransactionsForUser(ctx, s.Pool, userID)
}

func (s *Store) LinkTransfer(ctx context.Context, userID int64, id, relatedID string) error {
	return LinkInternalTransfer(ctx, s.Pool, userID, id, relatedID)
}

func (s *Store) BestVendorMapping(ctx context.Context, userID int64, text string) (*models.VendorMapping, error) {
	return GetBestMapping(ctx, s.Pool, text, userID)
}

func (s *Store) SaveVendorMapping(ctx context.Context, text, name string, confidence float64, source string, userID *int64) (*models.VendorMapping, error) {
	return CacheMapping(ctx, s.Pool, text, name, confidence, source, userID)
}

func (s *Store) SetTransactionVendor(ctx context.Context, userID int64, id, name string) error {
	return UpdateTransactionVendor(ctx, s.Pool, userID, id, name)
}

func (s *Store) CompleteFile(ctx context.Context, fileID string, count int, income, expenses decimal.Decimal) error {
	return CompleteStatementFile(ctx, s.Pool, fileID, count, income, expenses)
}

func (s *Store) UserCategoryForVendor(ctx context.Context, userID int64, vendorNormalized string) (*models.Category, error) {
	c, err := GetUserCategoryForVendor(ctx, s.Pool, userID, vendorNormalized)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *Store) CategoryMappingForVendor(ctx context.Context, userID int64, vendorNormalized string) (*models.CategoryMapping, error) {
	m, err := GetCategoryMappingForVendor(ctx, s.Pool, userID, vendorNormalized)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (s *Store) CategoryByID(ctx context.Context, userID, id int64) (*models.Category, error) {
	return GetCategoryByID(ctx, s.Pool, userID, id)
}

func (s *Store) CategoryByName(ctx context.Context, userID int64, name string) (*models.Category, error) {
	c, err := GetCategoryByName(ctx, s.Pool, userID, name)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *Store) ApplyCategory(ctx context.Context, userID int64, transactionID string, categoryID int64) error {
	return UpdateTransactionCategory(ctx, s.Pool, userID, transactionID, categoryID)
}

func (s *Store) LearnMapping(ctx context.Context, userID int64, vendorNormalized string, categoryID int64, confidence float64) error {
	return UpsertCategoryMapping(ctx, s.Pool, userID, vendorNormalized, categoryID, confidence)
}
