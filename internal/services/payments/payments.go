// Package payments reconciles external gateway events against the ledger:
// deposit intents, their single Created -> terminal transition, and the
// matching deposit credit, applied exactly once per gateway order.
package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastwager/wagercore/internal/gateway"
	"github.com/fastwager/wagercore/internal/infra/metrics"
	"github.com/fastwager/wagercore/internal/infra/pgutils"
	"github.com/fastwager/wagercore/internal/repos/intents"
	pgintents "github.com/fastwager/wagercore/internal/repos/intents/postgres"
	"github.com/fastwager/wagercore/internal/repos/ledger"
	"github.com/fastwager/wagercore/internal/services/wallet"
)

var ErrInvalidAmount = errors.New("amount must be positive")

type Service struct {
	db      *sql.DB
	wallet  *wallet.Service
	intents intents.Intents
	orders  gateway.Orders
}

func New(dbx *sql.DB, w *wallet.Service, orders gateway.Orders) *Service {
	return &Service{
		db:      dbx,
		wallet:  w,
		intents: pgintents.New(dbx),
		orders:  orders,
	}
}

// CreateIntent opens a deposit: it creates a gateway order and persists a
// pending intent carrying the returned order reference. No balance changes
// here; the credit lands only when the gateway confirms capture.
func (s *Service) CreateIntent(ctx context.Context, accountID uint64, amount int64) (*intents.Intent, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	_, err := s.wallet.GetBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}

	orderRef, err := s.orders.CreateOrder(ctx, amount, "INR")
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	in := &intents.Intent{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		OrderRef:  orderRef,
		State:     intents.StateCreated,
	}

	err = s.intents.Insert(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("persist intent: %w", err)
	}

	metrics.IntentsCreated.Inc()

	return in, nil
}

// Confirm applies one gateway confirmation. The intent transition and the
// deposit credit commit in the same transaction, so a crash can't leave
// "credited but still created" or a finalized intent without its credit.
// A second confirmation for the same order returns ErrAlreadyFinalized and
// changes nothing; webhook callers treat that as success.
func (s *Service) Confirm(ctx context.Context, orderRef string, captured bool, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		in, err := s.intents.LockByOrderRef(tx, orderRef)
		if err != nil {
			return fmt.Errorf("lock intent: %w", err)
		}

		if in.State != intents.StateCreated {
			return intents.ErrAlreadyFinalized
		}

		if !captured {
			err = s.intents.Finalize(tx, in.ID, intents.StateFailed)
			if err != nil {
				return fmt.Errorf("mark failed: %w", err)
			}

			return nil
		}

		if amount != in.Amount {
			slog.Warn("gateway confirmed a different amount than requested",
				"order_ref", orderRef, "requested", in.Amount, "confirmed", amount)
		}

		err = s.intents.Finalize(tx, in.ID, intents.StateCaptured)
		if err != nil {
			return fmt.Errorf("mark captured: %w", err)
		}

		_, err = s.wallet.ApplyTx(tx, in.AccountID, []wallet.Step{{
			Delta: amount,
			Record: ledger.Record{
				RecordID: uuid.NewString(),
				Kind:     ledger.KindDepositCredit,
				Amount:   amount,
				OrderRef: orderRef,
			},
		}})
		if err != nil {
			return fmt.Errorf("credit deposit: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, intents.ErrAlreadyFinalized) {
			metrics.DepositsConfirmed.WithLabelValues("duplicate").Inc()
			return intents.ErrAlreadyFinalized
		}

		return fmt.Errorf("confirm order %s: %w", orderRef, err)
	}

	if captured {
		metrics.DepositsConfirmed.WithLabelValues("captured").Inc()
	} else {
		metrics.DepositsConfirmed.WithLabelValues("failed").Inc()
	}

	return nil
}

// Withdraw debits the balance and records a withdrawal_debit. The payout
// rail beyond the ledger debit is out of scope here.
func (s *Service) Withdraw(ctx context.Context, accountID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	newBalance, err := s.wallet.Apply(ctx, accountID, -amount, ledger.Record{
		RecordID: uuid.NewString(),
		Kind:     ledger.KindWithdrawalDebit,
		Amount:   amount,
	})
	if err != nil {
		return 0, fmt.Errorf("withdraw: %w", err)
	}

	metrics.WithdrawalsApplied.Inc()

	return newBalance, nil
}
