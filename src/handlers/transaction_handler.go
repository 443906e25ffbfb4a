package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"centsible-server/src/category"
	db "centsible-server/src/db/sql"
	"centsible-server/src/ingest"
	"centsible-server/src/util"
)

func GetTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		txns, err := db.GetTransactionsForUser(r.Context(), pool, userID)
		if err != nil {
			util.Logger.Errorf("Failed to get transactions for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to get transactions")
			return
		}
		util.WriteJSON(w, http.StatusOK, txns)
	}
}

// CategorizeTransaction resolves a category suggestion for one transaction.
// autoApply in the body controls write-back; either way the suggestion is
// returned. An unmatched transaction is a normal empty result, not an error.
func CategorizeTransaction(resolver *category.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		transactionID := chi.URLParam(r, "transaction_id")

		var req struct {
			AutoApply bool `json:"auto_apply"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
				return
			}
		}

		sugg, err := resolver.Resolve(r.Context(), userID, transactionID, req.AutoApply)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				util.WriteError(w, http.StatusNotFound, "not_found", "transaction not found")
				return
			}
			util.Logger.Errorf("Failed to categorize transaction %s for user %d: %v", transactionID, userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to categorize transaction")
			return
		}
		if sugg == nil {
			util.WriteJSON(w, http.StatusOK, map[string]interface{}{"categorized": false})
			return
		}
		util.WriteJSON(w, http.StatusOK, sugg)
	}
}

// CategorizeBulk resolves categories for up to 50 transactions, returning
// per-item results and aggregate stats. Individual failures do not fail the
// request.
func CategorizeBulk(resolver *category.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			IDs       []string `json:"ids"`
			AutoApply bool     `json:"auto_apply"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
			return
		}
		if len(req.IDs) == 0 || len(req.IDs) > category.BulkLimit {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "ids must contain between 1 and 50 entries")
			return
		}

		result := resolver.ResolveBulk(r.Context(), userID, req.IDs, req.AutoApply)
		util.WriteJSON(w, http.StatusOK, result)
	}
}

// SetTransactionCategory records a manual category choice and feeds the
// learned mapping used by future resolutions.
func SetTransactionCategory(resolver *category.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		transactionID := chi.URLParam(r, "transaction_id")

		var req struct {
			CategoryID int64 `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CategoryID == 0 {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "category_id is required")
			return
		}

		if err := resolver.ApplyManual(r.Context(), userID, transactionID, req.CategoryID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				util.WriteError(w, http.StatusNotFound, "not_found", "transaction or category not found")
				return
			}
			util.Logger.Errorf("Failed to set category on transaction %s for user %d: %v", transactionID, userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to set category")
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"message": "category updated"})
	}
}

// CorrectVendor stores a user's vendor-name correction. The correction
// becomes a high-confidence personal mapping and may trigger consensus
// promotion to a shared global mapping.
func CorrectVendor(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		transactionID := chi.URLParam(r, "transaction_id")

		var req struct {
			VendorName string `json:"vendor_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VendorName == "" {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "vendor_name is required")
			return
		}

		txn, err := db.GetTransactionByID(r.Context(), pool, userID, transactionID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				util.WriteError(w, http.StatusNotFound, "not_found", "transaction not found")
				return
			}
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to load transaction")
			return
		}

		if _, err := db.RecordUserCorrection(r.Context(), pool, userID, txn.VendorNameOriginal, req.VendorName); err != nil {
			util.Logger.Errorf("Failed to record vendor correction for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to record correction")
			return
		}
		if err := db.UpdateTransactionVendor(r.Context(), pool, userID, transactionID, req.VendorName); err != nil {
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to update transaction")
			return
		}

		util.Logger.Infof("Vendor correction by user %d on transaction %s", userID, transactionID)
		util.WriteJSON(w, http.StatusOK, map[string]string{"message": "vendor updated"})
	}
}

// ResolveVendorsBulk re-resolves vendor names for up to 100 transactions.
func ResolveVendorsBulk(pipe *ingest.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			IDs       []string `json:"ids"`
			AutoApply bool     `json:"auto_apply"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
			return
		}
		if len(req.IDs) == 0 || len(req.IDs) > ingest.VendorBulkLimit {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "ids must contain between 1 and 100 entries")
			return
		}

		result := pipe.ResolveVendorsBulk(r.Context(), userID, req.IDs, req.AutoApply)
		util.WriteJSON(w, http.StatusOK, result)
	}
}
