package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"centsible-server/src/category"
	sqldb "centsible-server/src/db/sql"
	"centsible-server/src/fingerprint"
	"centsible-server/src/models"
	"centsible-server/src/transfers"
	"centsible-server/src/util"
	"centsible-server/src/vendors"
)

// InsertChunkSize bounds transaction inserts per statement to respect
// store-side limits. A failed chunk is recorded and skipped; earlier chunks
// stay inserted.
const InsertChunkSize = 100

// VendorBulkLimit caps one bulk vendor re-resolution request.
const VendorBulkLimit = 100

// ExternalResolver is the optional last-resort vendor lookup (the llm/google
// collaborator). It owns its own deadline; a failure only fails the item that
// triggered it.
type ExternalResolver interface {
	Resolve(ctx context.Context, text string) (name string, confidence float64, err error)
}

// Store is the persistence surface the orchestrator drives. Lookup methods
// return (nil, nil) on a miss.
type Store interface {
	Fingerprints(ctx context.Context, userID int64) (map[string]struct{}, error)
	InsertTransactions(ctx context.Context, txns []models.Transaction) error
	Transaction(ctx context.Context, userID int64, id string) (*models.Transaction, error)
	TransactionsForUser(ctx context.Context, userID int64) ([]*models.Transaction, error)
	LinkTransfer(ctx context.Context, userID int64, id, relatedID string) error
	BestVendorMapping(ctx context.Context, userID int64, text string) (*models.VendorMapping, error)
	SaveVendorMapping(ctx context.Context, text, name string, confidence float64, source string, userID *int64) (*models.VendorMapping, error)
	SetTransactionVendor(ctx context.Context, userID int64, id, name string) error
	CompleteFile(ctx context.Context, fileID string, count int, income, expenses decimal.Decimal) error
}

// Result aggregates one ingestion batch. Failures hold every per-item error
// encountered along the way; the batch itself still completes.
type Result struct {
	Total          int                  `json:"total"`
	Inserted       int                  `json:"inserted"`
	Duplicates     int                  `json:"duplicates"`
	TransferPairs  int                  `json:"transfer_pairs"`
	VendorResolved int                  `json:"vendor_resolved"`
	Categorized    int                  `json:"categorized"`
	AutoApplied    int                  `json:"auto_applied"`
	Failures       []models.ItemFailure `json:"failures,omitempty"`
}

// Pipeline sequences one ingestion batch through fingerprinting, dedup,
// transfer detection, persistence, and vendor/category resolution. It is the
// only component that writes transactions; the matchers stay pure.
type Pipeline struct {
	store      Store
	dict       *vendors.Dictionary
	categories *category.Resolver
	external   ExternalResolver
	pacing     time.Duration
	chunkSize  int
	log        *logrus.Logger
}

func NewPipeline(store Store, dict *vendors.Dictionary, categories *category.Resolver, external ExternalResolver, pacing time.Duration, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{
		store:      store,
		dict:       dict,
		categories: categories,
		external:   external,
		pacing:     pacing,
		chunkSize:  InsertChunkSize,
		log:        log,
	}
}

// ProcessStatement runs the full ingestion sequence for one uploaded
// statement. The returned error covers only "could not attempt" conditions
// (the fingerprint set was unreadable); everything per-item lands in
// Result.Failures.
func (p *Pipeline) ProcessStatement(ctx context.Context, userID int64, fileID string, raws []models.RawTransaction) (*Result, error) {
	res := &Result{Total: len(raws)}

	// Validate, then fingerprint what survives. Invalid lines are rejected
	// before any hashing happens.
	var fps []fingerprint.Fingerprinted
	for i := range raws {
		raw := &raws[i]
		util.ApplyRawDefaults(raw)
		if err := util.ValidateRawTransaction(raw); err != nil {
			res.Failures = append(res.Failures, models.ItemFailure{
				Index:   i,
				Code:    "invalid_input",
				Message: err.Error(),
			})
			continue
		}
		fps = append(fps, fingerprint.Fingerprinted{
			Index: i,
			Hash:  fingerprint.Compute(raw.Date, raw.Amount, raw.Description, userID),
		})
	}

	existing, err := p.store.Fingerprints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load fingerprints: %w", err)
	}

	part := fingerprint.Partition(fps, existing)
	res.Duplicates = len(part.Duplicates)

	txns := make([]models.Transaction, 0, len(part.Unique))
	for _, u := range part.Unique {
		raw := raws[u.Index]
		date, _ := time.Parse("2006-01-02", raw.Date) // validated above
		t := models.Transaction{
			ID:                 uuid.NewString(),
			UserID:             userID,
			Fingerprint:        u.Hash,
			VendorName:         raw.Description,
			VendorNameOriginal: raw.Description,
			VendorNormalized:   fingerprint.NormalizeVendor(raw.Description),
			Amount:             fingerprint.NormalizeAmount(raw.Amount),
			Type:               raw.Type,
			TransactionDate:    date,
			ReferenceNumber:    raw.ReferenceNumber,
			RawText:            raw.RawText,
		}
		if fileID != "" {
			id := fileID
			t.FileID = &id
		}
		txns = append(txns, t)
	}

	// Transfer pairs within the batch are marked before insertion so both
	// legs land linked. Cross-statement pairs are picked up by RescanTransfers.
	ptrs := make([]*models.Transaction, len(txns))
	for i := range txns {
		ptrs[i] = &txns[i]
	}
	links := transfers.Detect(ptrs)
	byID := make(map[string]*models.Transaction, len(txns))
	for i := range txns {
		byID[txns[i].ID] = &txns[i]
	}
	for _, l := range links {
		t := byID[l.TransactionID]
		related := l.RelatedTransactionID
		t.IsInternalTransfer = true
		t.RelatedTransactionID = &related
	}
	res.TransferPairs = len(links) / 2

	var inserted []*models.Transaction
	for start := 0; start < len(txns); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(txns) {
			end = len(txns)
		}
		chunk := txns[start:end]
		if err := p.store.InsertTransactions(ctx, chunk); err != nil {
			p.log.WithFields(logrus.Fields{"user_id": userID, "chunk_start": start, "error": err.Error()}).
				Error("transaction chunk insert failed")
			for i := range chunk {
				res.Failures = append(res.Failures, models.ItemFailure{
					TransactionID: chunk[i].ID,
					Code:          "persist_failed",
					Message:       err.Error(),
				})
			}
			continue
		}
		res.Inserted += len(chunk)
		for i := range chunk {
			inserted = append(inserted, &chunk[i])
		}
	}

	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range inserted {
		if amt, err := decimal.NewFromString(t.Amount); err == nil {
			if t.Type == models.TypeCredit {
				income = income.Add(amt)
			} else {
				expenses = expenses.Add(amt)
			}
		}

		resolution, err := p.resolveVendor(ctx, userID, t)
		if err != nil {
			res.Failures = append(res.Failures, models.ItemFailure{
				TransactionID: t.ID,
				Code:          "vendor_failed",
				Message:       err.Error(),
			})
		} else if resolution != nil {
			if resolution.VendorName != t.VendorName {
				if err := p.store.SetTransactionVendor(ctx, userID, t.ID, resolution.VendorName); err == nil {
					res.VendorResolved++
				}
			} else {
				res.VendorResolved++
			}
		}

		if p.categories != nil {
			sugg, err := p.categories.Resolve(ctx, userID, t.ID, true)
			if err != nil {
				res.Failures = append(res.Failures, models.ItemFailure{
					TransactionID: t.ID,
					Code:          "category_failed",
					Message:       err.Error(),
				})
			} else if sugg != nil {
				res.Categorized++
				if sugg.Applied {
					res.AutoApplied++
				}
			}
		}
	}

	if fileID != "" {
		if err := p.store.CompleteFile(ctx, fileID, res.Inserted, income, expenses); err != nil {
			p.log.WithFields(logrus.Fields{"file_id": fileID, "error": err.Error()}).
				Error("failed to write statement file summary")
			res.Failures = append(res.Failures, models.ItemFailure{
				Code:    "summary_failed",
				Message: err.Error(),
			})
		}
	}

	return res, nil
}

// resolveVendor walks the tiers: mapping cache, static dictionary, optional
// external lookup. Dictionary and external hits are cached as global mappings
// so the whole community benefits from them.
func (p *Pipeline) resolveVendor(ctx context.Context, userID int64, t *models.Transaction) (*models.VendorResolution, error) {
	if m, err := p.store.BestVendorMapping(ctx, userID, t.VendorNameOriginal); err != nil {
		return nil, err
	} else if m != nil {
		return &models.VendorResolution{
			TransactionID: t.ID,
			VendorName:    m.MappedName,
			Confidence:    m.Confidence,
			Source:        m.Source,
		}, nil
	}

	if match, ok := p.dict.Match(t.VendorNameOriginal); ok {
		if _, err := p.store.SaveVendorMapping(ctx, t.VendorNameOriginal, match.Brand, match.Confidence, models.SourceDictionary, nil); err != nil {
			p.log.WithField("error", err.Error()).Warn("failed to cache dictionary mapping")
		}
		return &models.VendorResolution{
			TransactionID: t.ID,
			VendorName:    match.Brand,
			Confidence:    match.Confidence,
			Source:        models.SourceDictionary,
		}, nil
	}

	if p.external != nil {
		p.pace()
		name, conf, err := p.external.Resolve(ctx, t.VendorNameOriginal)
		if err != nil {
			return nil, err
		}
		if name != "" {
			if _, err := p.store.SaveVendorMapping(ctx, t.VendorNameOriginal, name, conf, models.SourceExternal, nil); err != nil {
				p.log.WithField("error", err.Error()).Warn("failed to cache external mapping")
			}
			return &models.VendorResolution{
				TransactionID: t.ID,
				VendorName:    name,
				Confidence:    conf,
				Source:        models.SourceExternal,
			}, nil
		}
	}

	return nil, nil
}

// ResolveVendorsBulk re-resolves vendor names for up to VendorBulkLimit
// transactions, applying results back when autoApply is set.
func (p *Pipeline) ResolveVendorsBulk(ctx context.Context, userID int64, ids []string, autoApply bool) *models.BulkVendorResult {
	if len(ids) > VendorBulkLimit {
		ids = ids[:VendorBulkLimit]
	}
	res := &models.BulkVendorResult{Stats: models.BulkVendorStats{Total: len(ids)}}

	for i, id := range ids {
		if i > 0 {
			p.pace()
		}

		t, err := p.store.Transaction(ctx, userID, id)
		if err != nil {
			code := "resolve_failed"
			if errors.Is(err, sqldb.ErrNotFound) {
				code = "not_found"
			}
			res.Failures = append(res.Failures, models.ItemFailure{TransactionID: id, Code: code, Message: err.Error()})
			res.Stats.Failed++
			continue
		}

		resolution, err := p.resolveVendor(ctx, userID, t)
		if err != nil {
			res.Failures = append(res.Failures, models.ItemFailure{TransactionID: id, Code: "vendor_failed", Message: err.Error()})
			res.Stats.Failed++
			continue
		}
		if resolution == nil {
			continue
		}

		if autoApply {
			if err := p.store.SetTransactionVendor(ctx, userID, id, resolution.VendorName); err != nil {
				res.Failures = append(res.Failures, models.ItemFailure{TransactionID: id, Code: "persist_failed", Message: err.Error()})
				res.Stats.Failed++
				continue
			}
			resolution.Applied = true
			res.Stats.Applied++
		}

		res.Results = append(res.Results, *resolution)
		res.Stats.Resolved++
		if resolution.Confidence >= vendors.GlobalConfidenceFloor {
			res.Stats.HighConfidence++
		}
	}
	return res
}

// RescanTransfers re-runs transfer detection over the user's full history,
// linking pairs whose legs arrived in different statements. Already linked
// transactions are left alone, so re-running is idempotent.
func (p *Pipeline) RescanTransfers(ctx context.Context, userID int64) (int, error) {
	txns, err := p.store.TransactionsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	links := transfers.Detect(txns)
	linked := 0
	for _, l := range links {
		if err := p.store.LinkTransfer(ctx, userID, l.TransactionID, l.RelatedTransactionID); err != nil {
			p.log.WithFields(logrus.Fields{"transaction_id": l.TransactionID, "error": err.Error()}).
				Error("failed to persist transfer link")
			continue
		}
		linked++
	}
	return linked / 2, nil
}

func (p *Pipeline) pace() {
	if p.pacing > 0 {
		time.Sleep(p.pacing)
	}
}
