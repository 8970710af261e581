package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	cache "fintrack-server/src/db"
	db "fintrack-server/src/db/sql"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
	"fintrack-server/src/report"
)

// parseDate accepts a plain day or a full timestamp; an empty value means
// "stamp with the current time".
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func monthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func CreateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req models.CreateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error().Err(err).Msg("failed to decode create transaction request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.AccountID == 0 {
			http.Error(w, ledger.ErrMissingField.Error(), http.StatusBadRequest)
			return
		}
		if err := ledger.ValidateMutation(req.Description, req.Amount, req.Type); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			http.Error(w, "invalid date format", http.StatusBadRequest)
			return
		}

		owned, err := db.IsAccountOwner(r.Context(), pool, req.AccountID, userID)
		if err != nil {
			log.Error().Err(err).Int64("account_id", req.AccountID).Msg("ownership check failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !owned {
			db.CreateLog(r.Context(), pool, models.LogLevelWarn, "transaction create on foreign account",
				map[string]any{"account_id": req.AccountID, "user_id": userID}, &userID)
			http.Error(w, ledger.ErrNotOwner.Error(), http.StatusForbidden)
			return
		}

		txn := &models.Transaction{
			AccountID:   req.AccountID,
			Description: req.Description,
			Amount:      req.Amount,
			Type:        req.Type,
			Category:    req.Category,
			Date:        date,
		}

		created, err := db.CreateTransaction(r.Context(), pool, txn)
		if err != nil {
			db.CreateLog(r.Context(), pool, models.LogLevelWarn, "transaction create rejected",
				map[string]any{"account_id": req.AccountID, "user_id": userID, "amount": req.Amount, "reason": err.Error()}, &userID)
			if status, ok := statusForLedgerError(err); ok {
				http.Error(w, err.Error(), status)
				return
			}
			log.Error().Err(err).Int64("account_id", req.AccountID).Msg("failed to create transaction")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearReportCachesForUser(userID)
		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "transaction created",
			map[string]any{"transaction_id": created.ID, "account_id": created.AccountID, "user_id": userID, "amount": created.Amount, "type": created.Type}, &userID)
		log.Info().Int64("transaction_id", created.ID).Int64("account_id", created.AccountID).Msg("transaction created")

		writeJSON(w, http.StatusCreated, created)
	}
}

func GetTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		accountID, err := strconv.ParseInt(r.URL.Query().Get("accountId"), 10, 64)
		if err != nil {
			http.Error(w, "accountId is required", http.StatusBadRequest)
			return
		}

		owned, err := db.IsAccountOwner(r.Context(), pool, accountID, userID)
		if err != nil {
			log.Error().Err(err).Int64("account_id", accountID).Msg("ownership check failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !owned {
			http.Error(w, ledger.ErrNotOwner.Error(), http.StatusForbidden)
			return
		}

		var from, to *time.Time
		month, _ := strconv.Atoi(r.URL.Query().Get("month"))
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		if month >= 1 && month <= 12 && year > 0 {
			start, end := monthWindow(year, month)
			from, to = &start, &end
		}

		transactions, err := db.GetTransactions(r.Context(), pool, userID, accountID, from, to)
		if err != nil {
			log.Error().Err(err).Int64("account_id", accountID).Msg("failed to list transactions")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if transactions == nil {
			transactions = []models.Transaction{}
		}

		writeJSON(w, http.StatusOK, transactions)
	}
}

func UpdateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		transactionID, err := strconv.ParseInt(chi.URLParam(r, "transaction_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		var req models.UpdateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error().Err(err).Msg("failed to decode update transaction request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.AccountID == 0 {
			http.Error(w, ledger.ErrMissingField.Error(), http.StatusBadRequest)
			return
		}
		if err := ledger.ValidateMutation(req.Description, req.Amount, req.Type); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			http.Error(w, "invalid date format", http.StatusBadRequest)
			return
		}

		owned, err := db.IsAccountOwner(r.Context(), pool, req.AccountID, userID)
		if err != nil {
			log.Error().Err(err).Int64("account_id", req.AccountID).Msg("ownership check failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !owned {
			db.CreateLog(r.Context(), pool, models.LogLevelWarn, "transaction update on foreign account",
				map[string]any{"transaction_id": transactionID, "account_id": req.AccountID, "user_id": userID}, &userID)
			http.Error(w, ledger.ErrNotOwner.Error(), http.StatusForbidden)
			return
		}

		txn := &models.Transaction{
			ID:          transactionID,
			AccountID:   req.AccountID,
			Description: req.Description,
			Amount:      req.Amount,
			Type:        req.Type,
			Category:    req.Category,
			Date:        date,
		}

		updated, err := db.UpdateTransaction(r.Context(), pool, txn)
		if err != nil {
			db.CreateLog(r.Context(), pool, models.LogLevelWarn, "transaction update rejected",
				map[string]any{"transaction_id": transactionID, "account_id": req.AccountID, "user_id": userID, "reason": err.Error()}, &userID)
			if status, ok := statusForLedgerError(err); ok {
				http.Error(w, err.Error(), status)
				return
			}
			log.Error().Err(err).Int64("transaction_id", transactionID).Msg("failed to update transaction")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearReportCachesForUser(userID)
		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "transaction updated",
			map[string]any{"transaction_id": updated.ID, "account_id": updated.AccountID, "user_id": userID, "amount": updated.Amount, "type": updated.Type}, &userID)
		log.Info().Int64("transaction_id", updated.ID).Msg("transaction updated")

		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		transactionID, err := strconv.ParseInt(chi.URLParam(r, "transaction_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		accountID, err := strconv.ParseInt(r.URL.Query().Get("accountId"), 10, 64)
		if err != nil {
			http.Error(w, "accountId is required", http.StatusBadRequest)
			return
		}

		owned, err := db.IsAccountOwner(r.Context(), pool, accountID, userID)
		if err != nil {
			log.Error().Err(err).Int64("account_id", accountID).Msg("ownership check failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !owned {
			db.CreateLog(r.Context(), pool, models.LogLevelWarn, "transaction delete on foreign account",
				map[string]any{"transaction_id": transactionID, "account_id": accountID, "user_id": userID}, &userID)
			http.Error(w, ledger.ErrNotOwner.Error(), http.StatusForbidden)
			return
		}

		if err := db.DeleteTransaction(r.Context(), pool, transactionID, accountID); err != nil {
			db.CreateLog(r.Context(), pool, models.LogLevelWarn, "transaction delete rejected",
				map[string]any{"transaction_id": transactionID, "account_id": accountID, "user_id": userID, "reason": err.Error()}, &userID)
			if status, ok := statusForLedgerError(err); ok {
				http.Error(w, err.Error(), status)
				return
			}
			log.Error().Err(err).Int64("transaction_id", transactionID).Msg("failed to delete transaction")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.ClearReportCachesForUser(userID)
		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "transaction deleted",
			map[string]any{"transaction_id": transactionID, "account_id": accountID, "user_id": userID}, &userID)
		log.Info().Int64("transaction_id", transactionID).Msg("transaction deleted")

		writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted successfully"})
	}
}

// GetTransactionSummary totals income and expense; accountId is optional and
// defaults to all of the user's accounts.
func GetTransactionSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var accountID *int64
		if raw := r.URL.Query().Get("accountId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid accountId", http.StatusBadRequest)
				return
			}
			owned, err := db.IsAccountOwner(r.Context(), pool, id, userID)
			if err != nil {
				log.Error().Err(err).Int64("account_id", id).Msg("ownership check failed")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if !owned {
				http.Error(w, ledger.ErrNotOwner.Error(), http.StatusForbidden)
				return
			}
			accountID = &id
		}

		var from, to *time.Time
		month, _ := strconv.Atoi(r.URL.Query().Get("month"))
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		if month >= 1 && month <= 12 && year > 0 {
			start, end := monthWindow(year, month)
			from, to = &start, &end
		}

		income, expense, err := db.SumTransactionsForUser(r.Context(), pool, userID, from, to, accountID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to compute summary")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, report.Summary{
			Income:  income,
			Expense: expense,
			Balance: income - expense,
		})
	}
}
