package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fastwager/wagercore/internal/infra/metrics"
)

// NewRouter constructs the router with all API endpoints registered.
func NewRouter(h *HandlerProvider) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/accounts", h.RegisterHandler)
	r.Get("/accounts/{accountId}/balance", h.GetBalanceHandler)
	r.Get("/accounts/{accountId}/records", h.ListRecordsHandler)
	r.Post("/accounts/{accountId}/bets", h.PlaceBetHandler)
	r.Post("/accounts/{accountId}/deposits", h.CreateDepositHandler)
	r.Post("/accounts/{accountId}/withdrawals", h.WithdrawHandler)

	r.Post("/payments/webhook", h.GatewayWebhookHandler)

	return r
}
