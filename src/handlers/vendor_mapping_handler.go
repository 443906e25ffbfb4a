package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "centsible-server/src/db/sql"
	"centsible-server/src/models"
	"centsible-server/src/util"
)

// CreateVendorMapping creates a personal mapping explicitly. A second create
// for the same (text, caller) pair is a conflict, never a silent overwrite.
func CreateVendorMapping(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			OriginalText string  `json:"original_text"`
			MappedName   string  `json:"mapped_name"`
			Confidence   float64 `json:"confidence"`
			Source       string  `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
			return
		}
		if req.OriginalText == "" || req.MappedName == "" {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "original_text and mapped_name are required")
			return
		}
		if !util.ValidateConfidence(req.Confidence) {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "confidence must be between 0 and 1")
			return
		}
		if !util.ValidateMappingSource(req.Source) {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "source must be one of user, llm, google")
			return
		}

		source := models.SourceUser
		if req.Source != "user" {
			source = models.SourceExternal
		}

		mapping, err := db.CreateVendorMapping(r.Context(), pool, userID, req.OriginalText, req.MappedName, req.Confidence, source)
		if err != nil {
			if errors.Is(err, db.ErrConflict) {
				util.WriteError(w, http.StatusConflict, "conflict", "mapping already exists for this text")
				return
			}
			util.Logger.Errorf("Failed to create vendor mapping for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to create mapping")
			return
		}

		util.WriteJSON(w, http.StatusCreated, mapping)
	}
}

func GetVendorMappings(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		mappings, err := db.ListVendorMappingsForUser(r.Context(), pool, userID)
		if err != nil {
			util.Logger.Errorf("Failed to list vendor mappings for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to list mappings")
			return
		}
		util.WriteJSON(w, http.StatusOK, mappings)
	}
}

func DeleteVendorMapping(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		idStr := chi.URLParam(r, "mapping_id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid mapping id")
			return
		}

		if err := db.DeleteVendorMapping(r.Context(), pool, userID, id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				util.WriteError(w, http.StatusNotFound, "not_found", "mapping not found")
				return
			}
			util.Logger.Errorf("Failed to delete vendor mapping %d for user %d: %v", id, userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to delete mapping")
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"message": "mapping deleted"})
	}
}
