package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/accounts", s.ListAccounts)
	r.Post("/accounts", s.OpenAccount)
	r.Post("/accounts/close", s.CloseAccount)
	r.Post("/accounts/lookup", s.LookupAccount)
	r.Post("/accounts/deposit", s.Deposit)
	r.Post("/accounts/withdraw", s.Withdraw)

	r.Get("/reports/fees-and-interest", s.GetFeesAndInterest)
	r.Post("/reports/updated-balances", s.UpdateBalances)
	return r
}
