package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	db "centsible-server/src/db/sql"
	"centsible-server/src/models"
	"centsible-server/src/util"
)

func Register(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.Logger.Errorf("Failed to decode register request body: %v", err)
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Username = strings.TrimSpace(req.Username)

		if !util.ValidateEmail(req.Email) {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid email format")
			return
		}
		if !util.ValidateUsername(req.Username) {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "username must be between 3 and 30 characters")
			return
		}
		if !util.ValidatePassword(req.Password) {
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "password must be at least 8 characters with uppercase, lowercase, and digit")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			util.Logger.Errorf("Failed to hash password for user %s: %v", req.Username, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
			return
		}

		resp, err := db.CreateUser(r.Context(), pool, req, string(hashedPassword))
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				util.WriteError(w, http.StatusConflict, "conflict", "email or username already exists")
				return
			}
			util.Logger.Errorf("Failed to create user %s: %v", req.Username, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
			return
		}

		util.Logger.Infof("Successful registration - User: %s, ID: %d", resp.Username, resp.ID)

		token, err := issueToken(resp.ID, resp.Username)
		if err != nil {
			util.Logger.Errorf("Failed to generate JWT token for user %s: %v", resp.Username, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "error generating token")
			return
		}

		util.WriteJSON(w, http.StatusCreated, map[string]string{"token": token})
	}
}

func Login(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			UsernameOrEmail string `json:"username"`
			Password        string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			util.Logger.Errorf("Failed to decode login request body: %v", err)
			util.WriteError(w, http.StatusBadRequest, "invalid_input", "invalid request")
			return
		}

		identifier := strings.ToLower(strings.TrimSpace(credentials.UsernameOrEmail))
		user, err := db.GetUserByUsername(r.Context(), pool, identifier)
		if err != nil {
			user, err = db.GetUserByEmail(r.Context(), pool, identifier)
			if err != nil {
				util.Logger.Warnf("Failed login attempt for %s from %s", identifier, r.RemoteAddr)
				util.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
				return
			}
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			util.Logger.Warnf("Invalid password attempt for %s from %s", identifier, r.RemoteAddr)
			util.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}

		token, err := issueToken(user.ID, user.Username)
		if err != nil {
			util.Logger.Errorf("Failed to generate JWT token for user %s: %v", user.Username, err)
			util.WriteError(w, http.StatusInternalServerError, "internal", "error generating token")
			return
		}

		util.Logger.Infof("Successful login - User: %s, ID: %d", user.Username, user.ID)
		util.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func issueToken(userID int64, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(time.Hour * 168).Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
