package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	cache "fintrack-server/src/db"
	db "fintrack-server/src/db/sql"
	"fintrack-server/src/export"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
	"fintrack-server/src/report"
)

type dashboardFilters struct {
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	AccountID *int64 `json:"account_id,omitempty"`
}

type dashboardResponse struct {
	Success          bool                   `json:"success"`
	Period           string                 `json:"period"`
	Filters          dashboardFilters       `json:"filters"`
	Summary          report.Summary         `json:"summary"`
	MonthlyData      []report.MonthBucket   `json:"monthly_data"`
	PieData          []report.AccountShare  `json:"pie_data"`
	CategoryExpenses []report.CategoryTotal `json:"category_expenses"`
	Transactions     []models.Transaction   `json:"transactions"`
}

func periodWindow(period string, year, month int, now time.Time) (time.Time, time.Time) {
	switch period {
	case "weekly":
		base := time.Date(year, time.Month(month), now.Day(), 0, 0, 0, 0, time.UTC)
		start := base.AddDate(0, 0, -int(base.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case "yearly":
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	default: // monthly
		return monthWindow(year, month)
	}
}

// ownedAccountFilter parses the optional accountId query param and enforces
// ownership. The bool result reports whether the response was already written.
func ownedAccountFilter(w http.ResponseWriter, r *http.Request, pool *pgxpool.Pool, userID int64) (*int64, bool) {
	raw := r.URL.Query().Get("accountId")
	if raw == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid accountId", http.StatusBadRequest)
		return nil, true
	}
	owned, err := db.IsAccountOwner(r.Context(), pool, id, userID)
	if err != nil {
		log.Error().Err(err).Int64("account_id", id).Msg("ownership check failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, true
	}
	if !owned {
		http.Error(w, ledger.ErrNotOwner.Error(), http.StatusForbidden)
		return nil, true
	}
	return &id, false
}

func accountNameMap(accounts []models.Account) map[int64]string {
	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names
}

func GetDashboard(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		now := time.Now()

		period := r.URL.Query().Get("period")
		if period != "weekly" && period != "yearly" {
			period = "monthly"
		}
		month, _ := strconv.Atoi(r.URL.Query().Get("month"))
		if month < 1 || month > 12 {
			month = int(now.Month())
		}
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		if year <= 0 {
			year = now.Year()
		}

		accountID, done := ownedAccountFilter(w, r, pool, userID)
		if done {
			return
		}

		cacheKey := fmt.Sprintf("dashboard:%d:%s:%d:%d", userID, period, month, year)
		if accountID != nil {
			cacheKey += fmt.Sprintf(":%d", *accountID)
		}
		if cached, ok := cache.GetReportCache(cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}

		from, to := periodWindow(period, year, month, now)

		transactions, err := db.GetTransactionsForUser(r.Context(), pool, userID, from, to, accountID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to fetch dashboard transactions")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		accounts, err := db.GetAccountsForUser(r.Context(), pool, userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to fetch accounts for dashboard")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Newest first for display; aggregation is order-independent.
		display := make([]models.Transaction, len(transactions))
		for i, t := range transactions {
			display[len(transactions)-1-i] = t
		}

		resp := dashboardResponse{
			Success:          true,
			Period:           period,
			Filters:          dashboardFilters{Month: month, Year: year, AccountID: accountID},
			Summary:          report.Summarize(transactions),
			MonthlyData:      report.BucketByMonth(transactions),
			PieData:          report.DistributionByAccount(accounts, transactions),
			CategoryExpenses: report.BucketByCategory(transactions),
			Transactions:     display,
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode dashboard response")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cache.SetReportCache(userID, cacheKey, payload)
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}
}

// fetchReportRows builds running-balance rows for one [from, to) window. The
// accumulator is scoped to the window, not the account lifetime.
func fetchReportRows(r *http.Request, pool *pgxpool.Pool, userID int64, from, to time.Time, year int) ([]report.Row, error) {
	transactions, err := db.GetTransactionsForUser(r.Context(), pool, userID, from, to, nil)
	if err != nil {
		return nil, err
	}
	accounts, err := db.GetAccountsForUser(r.Context(), pool, userID)
	if err != nil {
		return nil, err
	}
	return report.BuildRows(transactions, accountNameMap(accounts), year), nil
}

func GetMonthlyReport(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		month, _ := strconv.Atoi(r.URL.Query().Get("month"))
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		if month < 1 || month > 12 || year <= 0 {
			http.Error(w, "month and year are required", http.StatusBadRequest)
			return
		}

		from, to := monthWindow(year, month)
		rows, err := fetchReportRows(r, pool, userID, from, to, year)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to build monthly report")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func GetAnnualReport(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		if year <= 0 {
			http.Error(w, "year is required", http.StatusBadRequest)
			return
		}

		from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		rows, err := fetchReportRows(r, pool, userID, from, from.AddDate(1, 0, 0), year)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to build annual report")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func GetCategoryReport(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		month, _ := strconv.Atoi(r.URL.Query().Get("month"))
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))
		if month < 1 || month > 12 || year <= 0 {
			http.Error(w, "month and year are required", http.StatusBadRequest)
			return
		}

		from, to := monthWindow(year, month)
		transactions, err := db.GetTransactionsForUser(r.Context(), pool, userID, from, to, nil)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to build category report")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, report.BucketByCategory(transactions))
	}
}

func clampMonth(n int) int {
	if n < 1 {
		return 1
	}
	if n > 12 {
		return 12
	}
	return n
}

func ExportReport(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		q := r.URL.Query()

		reportType := q.Get("type")
		if reportType != "monthly" && reportType != "annual" && reportType != "category" {
			http.Error(w, "invalid type, use: monthly, annual or category", http.StatusBadRequest)
			return
		}
		format := q.Get("format")
		if format != "csv" && format != "excel" {
			http.Error(w, "invalid format, use: csv or excel", http.StatusBadRequest)
			return
		}
		year, _ := strconv.Atoi(q.Get("year"))
		if year <= 0 {
			http.Error(w, "year is required", http.StatusBadRequest)
			return
		}
		month, _ := strconv.Atoi(q.Get("month"))

		var rows []report.Row
		switch reportType {
		case "monthly":
			startMonth, _ := strconv.Atoi(q.Get("startMonth"))
			endMonth, _ := strconv.Atoi(q.Get("endMonth"))
			if startMonth == 0 {
				if month != 0 {
					startMonth = month
				} else {
					startMonth = 1
				}
			}
			if endMonth == 0 {
				if month != 0 {
					endMonth = month
				} else {
					endMonth = 12
				}
			}
			startMonth, endMonth = clampMonth(startMonth), clampMonth(endMonth)
			if startMonth > endMonth {
				http.Error(w, "startMonth cannot be greater than endMonth", http.StatusBadRequest)
				return
			}

			// One window per month: the running balance restarts monthly.
			for m := startMonth; m <= endMonth; m++ {
				from, to := monthWindow(year, m)
				monthRows, err := fetchReportRows(r, pool, userID, from, to, year)
				if err != nil {
					log.Error().Err(err).Int64("user_id", userID).Msg("failed to build monthly export")
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				rows = append(rows, monthRows...)
			}
		case "annual":
			from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
			var err error
			rows, err = fetchReportRows(r, pool, userID, from, from.AddDate(1, 0, 0), year)
			if err != nil {
				log.Error().Err(err).Int64("user_id", userID).Msg("failed to build annual export")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		case "category":
			if month < 1 || month > 12 {
				http.Error(w, "category export requires month and year", http.StatusBadRequest)
				return
			}
			from, to := monthWindow(year, month)
			transactions, err := db.GetTransactionsForUser(r.Context(), pool, userID, from, to, nil)
			if err != nil {
				log.Error().Err(err).Int64("user_id", userID).Msg("failed to build category export")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			rows = report.CategoryRows(report.BucketByCategory(transactions), year)
		}

		if len(rows) == 0 {
			// Empty result is a signal, not an error.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		filename := export.Filename(reportType, format, year)

		var payload []byte
		var contentType string
		var err error
		if format == "csv" {
			payload, err = export.ToCSV(rows)
			contentType = "text/csv; charset=utf-8"
		} else {
			payload, err = export.ToExcel(rows, reportType)
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		if err != nil {
			log.Error().Err(err).Str("format", format).Msg("failed to serialize export")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		db.CreateLog(r.Context(), pool, models.LogLevelAudit, "report exported",
			map[string]any{"user_id": userID, "type": reportType, "format": format, "year": year, "rows": len(rows)}, &userID)

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Write(payload)
	}
}
