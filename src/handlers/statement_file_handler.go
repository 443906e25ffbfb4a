package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "centsible-server/src/db/sql"
	"centsible-server/src/util"
)

func GetStatementFiles(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		files, err := db.GetStatementFilesForUser(r.Context(), pool, userID)
		if err != nil {
			util.Logger.Errorf("Failed to get statement files for user %d: %v", userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to get statement files")
			return
		}
		util.WriteJSON(w, http.StatusOK, files)
	}
}

func GetStatementFileByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		fileID := chi.URLParam(r, "file_id")

		file, err := db.GetStatementFileByID(r.Context(), pool, userID, fileID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				util.WriteError(w, http.StatusNotFound, "not_found", "statement file not found")
				return
			}
			util.Logger.Errorf("Failed to get statement file %s for user %d: %v", fileID, userID, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "failed to get statement file")
			return
		}
		util.WriteJSON(w, http.StatusOK, file)
	}
}
