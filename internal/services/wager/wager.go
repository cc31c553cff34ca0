// Package wager orchestrates bet placement: funds check, debit, outcome
// resolution, and winnings credit as one atomic ledger operation.
package wager

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastwager/wagercore/internal/infra/metrics"
	"github.com/fastwager/wagercore/internal/repos/ledger"
	"github.com/fastwager/wagercore/internal/services/outcome"
	"github.com/fastwager/wagercore/internal/services/wallet"
	"github.com/fastwager/wagercore/pkg/money"
)

var (
	ErrInvalidAmount  = errors.New("bet amount must be positive")
	ErrMissingOutcome = errors.New("mines bet requires a precomputed outcome")
)

// Bet is one wager request. MinesWon must be set for the mines variant and
// nil otherwise.
type Bet struct {
	AccountID  uint64
	Variant    outcome.Variant
	Amount     int64 // paise
	Prediction string
	MinesWon   *bool
}

// Result is the settled wager returned to the caller.
type Result struct {
	Outcome    string
	Win        bool
	Winnings   int64
	NewBalance int64
}

type Service struct {
	wallet *wallet.Service
}

func New(w *wallet.Service) *Service {
	return &Service{wallet: w}
}

// PlaceBet settles one wager. The debit, outcome resolution, and credit
// commit together: a concurrent balance reader observes the pre-bet or
// the fully settled balance, never the debited-but-unsettled middle.
// On loss a zero-amount bet_credit still lands, so every round shows up
// as a debit/credit pair in the history.
func (s *Service) PlaceBet(ctx context.Context, bet Bet) (*Result, error) {
	if bet.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	err := outcome.Validate(bet.Variant, bet.Prediction)
	if err != nil {
		return nil, err
	}

	if bet.Variant == outcome.VariantMines && bet.MinesWon == nil {
		return nil, ErrMissingOutcome
	}

	var res Result

	newBalance, err := s.wallet.ApplyComposite(ctx, bet.AccountID, func(int64) ([]wallet.Step, error) {
		// Resolved under the account lock so the whole round is one
		// serialization point per account.
		var (
			out outcome.Result
			err error
		)
		if bet.Variant == outcome.VariantMines {
			out = outcome.ResolveMines(*bet.MinesWon)
		} else {
			out, err = outcome.Resolve(bet.Variant, bet.Prediction)
			if err != nil {
				return nil, err
			}
		}

		winnings := int64(0)
		if out.Win {
			winnings = money.Winnings(bet.Amount, out.MultiplierPct)
		}

		res.Outcome = out.Outcome
		res.Win = out.Win
		res.Winnings = winnings

		payload := &ledger.GamePayload{
			Variant:    string(bet.Variant),
			Prediction: bet.Prediction,
			Outcome:    out.Outcome,
			Win:        out.Win,
		}

		return []wallet.Step{
			{
				Delta: -bet.Amount,
				Record: ledger.Record{
					RecordID: uuid.NewString(),
					Kind:     ledger.KindBetDebit,
					Amount:   bet.Amount,
					Payload:  payload,
				},
			},
			{
				Delta: winnings,
				Record: ledger.Record{
					RecordID: uuid.NewString(),
					Kind:     ledger.KindBetCredit,
					Amount:   winnings,
					Payload:  payload,
				},
			},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle wager: %w", err)
	}

	res.NewBalance = newBalance

	result := "loss"
	if res.Win {
		result = "win"
	}
	metrics.BetsSettled.WithLabelValues(string(bet.Variant), result).Inc()

	return &res, nil
}
