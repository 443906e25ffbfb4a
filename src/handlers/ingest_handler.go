package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	db "centsible-server/src/db/sql"
	"centsible-server/src/ingest"
	"centsible-server/src/models"
	"centsible-server/src/util"
)

// IngestStatement accepts one statement's worth of parsed lines from the
// text-extraction service and runs the full ingestion pipeline over them.
func IngestStatement(pool *pgxpool.Pool, pipe *ingest.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			FileName     string                  `json:"file_name"`
			Transactions []models.RawTransaction `json:"transactions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.Logger.Errorf("Failed to decode ingest request body for user %d: %v", userID, err)
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
			return
		}
		if len(req.Transactions) == 0 {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "transactions are required")
			return
		}

		fileID := uuid.NewString()
		if _, err := db.CreateStatementFile(r.Context(), pool, fileID, userID, req.FileName); err != nil {
			util.Logger.Errorf("Failed to create statement file for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to start ingestion")
			return
		}

		result, err := pipe.ProcessStatement(r.Context(), userID, fileID, req.Transactions)
		if err != nil {
			util.Logger.Errorf("Ingestion failed for user %d file %s: %v", userID, fileID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "ingestion could not be attempted")
			return
		}

		util.Logger.Infof("Ingested file %s for user %d: %d inserted, %d duplicates, %d transfer pairs",
			fileID, userID, result.Inserted, result.Duplicates, result.TransferPairs)

		util.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"file_id": fileID,
			"result":  result,
		})
	}
}

// DetectTransfers re-runs internal transfer detection over the caller's full
// transaction history.
func DetectTransfers(pipe *ingest.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		pairs, err := pipe.RescanTransfers(r.Context(), userID)
		if err != nil {
			util.Logger.Errorf("Transfer rescan failed for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to detect transfers")
			return
		}

		util.WriteJSON(w, http.StatusOK, map[string]int{"pairs_linked": pairs})
	}
}
