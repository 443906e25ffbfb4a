package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "centsible-server/src/db/sql"
	"centsible-server/src/util"
)

func GetCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		cats, err := db.GetCategoriesForUser(r.Context(), pool, userID)
		if err != nil {
			util.Logger.Errorf("Failed to get categories for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to get categories")
			return
		}
		util.WriteJSON(w, http.StatusOK, cats)
	}
}

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Name     string `json:"name"`
			ParentID *int64 `json:"parent_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "name is required")
			return
		}

		cat, err := db.CreateCategory(r.Context(), pool, userID, req.Name, req.ParentID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				util.WriteError(w, http.StatusNotFound, "not_found", "parent category not found")
				return
			}
			util.Logger.Errorf("Failed to create category for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to create category")
			return
		}
		util.WriteJSON(w, http.StatusCreated, cat)
	}
}

// DeleteCategory removes a custom category. Categories with children or
// referencing transactions are protected; system categories cannot be
// deleted at all.
func DeleteCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		idStr := chi.URLParam(r, "category_id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid category id")
			return
		}

		if err := db.DeleteCategory(r.Context(), pool, userID, id); err != nil {
			switch {
			case errors.Is(err, db.ErrNotFound):
				util.WriteError(w, http.StatusNotFound, "not_found", "category not found")
			case errors.Is(err, db.ErrConflict):
				util.WriteError(w, http.StatusConflict, "conflict", "category has children or transactions")
			default:
				util.Logger.Errorf("Failed to delete category %d for user %d: %v", id, userID, err)
				util.WriteError(w, http.StatusInternalServerError, "internal", "failed to delete category")
			}
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
	}
}
