// Package metrics holds the engine's prometheus collectors. Counters are
// registered with the default registry; expose them with Handler on the
// API router.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BetsSettled counts fully settled wagers by game variant and result
	// ("win" or "loss").
	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wagercore_bets_settled_total",
		Help: "Wagers settled, by game variant and result.",
	}, []string{"variant", "result"})

	// IntentsCreated counts payment intents handed to the gateway.
	IntentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wagercore_payment_intents_created_total",
		Help: "Deposit intents created with the payment gateway.",
	})

	// DepositsConfirmed counts gateway confirmations by outcome
	// ("captured", "failed", "duplicate").
	DepositsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wagercore_deposits_confirmed_total",
		Help: "Gateway confirmations processed, by outcome.",
	}, []string{"outcome"})

	// WithdrawalsApplied counts withdrawal debits applied to the ledger.
	WithdrawalsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wagercore_withdrawals_applied_total",
		Help: "Withdrawal debits applied to the ledger.",
	})
)

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
