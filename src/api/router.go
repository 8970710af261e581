package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"fintrack-server/src/config"
	"fintrack-server/src/handlers"
	"fintrack-server/src/middleware"
)

func NewRouter(pool *pgxpool.Pool, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Per-IP limits on the credential endpoints: 5 logins and 3 registrations
	// per minute.
	loginLimiter := middleware.NewIPRateLimiter(rate.Every(time.Minute/5), 5)
	registerLimiter := middleware.NewIPRateLimiter(rate.Every(time.Minute/3), 3)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimitMiddleware(loginLimiter)).Post("/login", handlers.Login(pool, cfg))
		r.With(middleware.RateLimitMiddleware(registerLimiter)).Post("/register", handlers.Register(pool, cfg))
		r.Post("/auth/forgot-password", handlers.ForgotPassword(pool, cfg))
		r.Post("/auth/reset-password", handlers.ResetPassword(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(cfg)).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetUser(pool))
			r.Put("/user/settings", handlers.UpdateSettings(pool))

			// Accounts
			r.Post("/accounts", handlers.CreateAccount(pool))
			r.Get("/accounts", handlers.GetAccounts(pool))
			r.Get("/accounts/distribution", handlers.GetAccountDistribution(pool))
			r.Patch("/accounts/{account_id}", handlers.UpdateAccount(pool))
			r.Delete("/accounts/{account_id}", handlers.DeleteAccount(pool))

			// Transactions
			r.Post("/transactions", handlers.CreateTransaction(pool))
			r.Get("/transactions", handlers.GetTransactions(pool))
			r.Get("/transactions/summary", handlers.GetTransactionSummary(pool))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(pool))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(pool))

			// Reports
			r.Get("/dashboard", handlers.GetDashboard(pool))
			r.Get("/reports/monthly", handlers.GetMonthlyReport(pool))
			r.Get("/reports/annual", handlers.GetAnnualReport(pool))
			r.Get("/reports/category", handlers.GetCategoryReport(pool))
			r.Get("/reports/export", handlers.ExportReport(pool))
		})
	})

	return r
}
