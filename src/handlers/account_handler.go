package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	cache "fintrack-server/src/db"
	db "fintrack-server/src/db/sql"
	"fintrack-server/src/models"
	"fintrack-server/src/report"
)

func CreateAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Name    string  `json:"name"`
			Type    string  `json:"type"`
			Balance float64 `json:"balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error().Err(err).Msg("failed to decode create account request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Type = strings.ToUpper(strings.TrimSpace(req.Type))

		if req.Name == "" {
			http.Error(w, "account name is required", http.StatusBadRequest)
			return
		}
		if !models.ValidAccountType(req.Type) {
			http.Error(w, "invalid account type", http.StatusBadRequest)
			return
		}
		if req.Balance < 0 {
			http.Error(w, "opening balance cannot be negative", http.StatusBadRequest)
			return
		}

		account, err := db.CreateAccount(r.Context(), pool, userID, req.Name, req.Type)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to create account")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// An opening balance is itself a ledger entry, so the cached balance
		// stays derivable from the transaction log alone.
		if req.Balance > 0 {
			opening := &models.Transaction{
				AccountID:   account.ID,
				Description: "Opening balance",
				Amount:      req.Balance,
				Type:        models.TransactionTypeIncome,
				Date:        time.Now(),
			}
			created, err := db.CreateTransaction(r.Context(), pool, opening)
			if err != nil {
				log.Error().Err(err).Int64("account_id", account.ID).Msg("failed to record opening balance")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			account.Balance = created.Amount
		}

		cache.ClearReportCachesForUser(userID)
		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "account created",
			map[string]any{"account_id": account.ID, "user_id": userID, "type": account.Type, "opening_balance": req.Balance}, &userID)
		log.Info().Int64("account_id", account.ID).Int64("user_id", userID).Msg("account created")

		writeJSON(w, http.StatusCreated, account)
	}
}

func GetAccounts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		accounts, err := db.GetAccountsForUser(r.Context(), pool, userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to list accounts")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if accounts == nil {
			accounts = []models.Account{}
		}

		writeJSON(w, http.StatusOK, accounts)
	}
}

func UpdateAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		accountID, err := strconv.ParseInt(chi.URLParam(r, "account_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}

		var req struct {
			Name string `json:"name"`
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error().Err(err).Msg("failed to decode update account request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
		if req.Type != "" && !models.ValidAccountType(req.Type) {
			http.Error(w, "invalid account type", http.StatusBadRequest)
			return
		}

		account, err := db.UpdateAccount(r.Context(), pool, userID, accountID, strings.TrimSpace(req.Name), req.Type)
		if err != nil {
			if status, ok := statusForLedgerError(err); ok {
				http.Error(w, err.Error(), status)
				return
			}
			log.Error().Err(err).Int64("account_id", accountID).Msg("failed to update account")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearReportCachesForUser(userID)
		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "account updated",
			map[string]any{"account_id": accountID, "user_id": userID}, &userID)
		log.Info().Int64("account_id", accountID).Int64("user_id", userID).Msg("account updated")

		writeJSON(w, http.StatusOK, account)
	}
}

func DeleteAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		accountID, err := strconv.ParseInt(chi.URLParam(r, "account_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}

		if err := db.DeleteAccount(r.Context(), pool, userID, accountID); err != nil {
			if status, ok := statusForLedgerError(err); ok {
				db.CreateLog(r.Context(), pool, models.LogLevelWarn, "account delete rejected",
					map[string]any{"account_id": accountID, "user_id": userID, "reason": err.Error()}, &userID)
				http.Error(w, err.Error(), status)
				return
			}
			log.Error().Err(err).Int64("account_id", accountID).Msg("failed to delete account")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearReportCachesForUser(userID)
		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "account deleted",
			map[string]any{"account_id": accountID, "user_id": userID}, &userID)
		log.Info().Int64("account_id", accountID).Int64("user_id", userID).Msg("account deleted")

		writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted successfully"})
	}
}

// GetAccountDistribution returns {name, value} per account for pie charts,
// straight from the cached balances.
func GetAccountDistribution(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		accounts, err := db.GetAccountsForUser(r.Context(), pool, userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to list accounts for distribution")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		distribution := make([]report.AccountShare, 0, len(accounts))
		for _, acc := range accounts {
			distribution = append(distribution, report.AccountShare{Name: acc.Name, Value: acc.Balance})
		}

		writeJSON(w, http.StatusOK, distribution)
	}
}
