package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	db "fintrack-server/src/db/sql"
	"fintrack-server/src/models"
	"fintrack-server/src/util"
)

func GetUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to get user")
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// UpdateSettings changes profile fields; a password change additionally
// requires the current password.
func UpdateSettings(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Name            string `json:"name"`
			Email           string `json:"email"`
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error().Err(err).Msg("failed to decode settings request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to get user for settings update")
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = user.Name
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" {
			email = user.Email
		} else if !util.ValidateEmail(email) {
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		if req.NewPassword != "" {
			if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
				log.Error().Int64("user_id", userID).Msg("settings update with wrong current password")
				http.Error(w, "current password is incorrect", http.StatusForbidden)
				return
			}
			if !util.ValidatePassword(req.NewPassword) {
				http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
				return
			}
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Error().Err(err).Int64("user_id", userID).Msg("failed to hash password")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if err := db.UpdateUserPassword(r.Context(), pool, userID, string(hashedPassword)); err != nil {
				log.Error().Err(err).Int64("user_id", userID).Msg("failed to update password")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		if err := db.UpdateUserSettings(r.Context(), pool, userID, name, email); err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				http.Error(w, "email already in use", http.StatusConflict)
				return
			}
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to update user settings")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "user settings updated",
			map[string]any{"user_id": userID, "password_changed": req.NewPassword != ""}, &userID)
		log.Info().Int64("user_id", userID).Msg("user settings updated")

		writeJSON(w, http.StatusOK, map[string]string{"message": "settings updated successfully"})
	}
}
