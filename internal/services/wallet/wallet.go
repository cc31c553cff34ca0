// Package wallet is the ledger store: the only component allowed to mutate
// account balances. Every mutation runs inside one database transaction
// that locks the account row, applies the deltas, and appends the matching
// ledger records, so concurrent readers see either the old or the fully
// settled balance and never an intermediate one.
package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastwager/wagercore/internal/infra/pgutils"
	"github.com/fastwager/wagercore/internal/repos/accounts"
	pgaccounts "github.com/fastwager/wagercore/internal/repos/accounts/postgres"
	"github.com/fastwager/wagercore/internal/repos/ledger"
	pgledger "github.com/fastwager/wagercore/internal/repos/ledger/postgres"
)

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	records  ledger.Ledger
}

func New(dbx *sql.DB) *Service {
	return &Service{
		db:       dbx,
		accounts: pgaccounts.New(dbx),
		records:  pgledger.New(dbx),
	}
}

// Step is one delta plus the record documenting it. Amount on the record is
// the magnitude; Delta carries the sign. AccountID and ResultingBalance are
// filled in during the apply.
type Step struct {
	Delta  int64
	Record ledger.Record
}

// BuildFunc constructs the ordered steps of a composite apply. It runs with
// the account row locked; balance is the pre-apply balance. Returning an
// error aborts the whole operation with no state change.
type BuildFunc func(balance int64) ([]Step, error)

// GetBalance reads the current balance without locking.
func (s *Service) GetBalance(ctx context.Context, accountID uint64) (int64, error) {
	balance, err := s.accounts.GetBalance(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// History lists the account's ledger records, most recent first.
func (s *Service) History(ctx context.Context, accountID uint64, limit int) ([]ledger.Record, error) {
	_, err := s.accounts.GetBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}

	recs, err := s.records.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return recs, nil
}

// Apply atomically applies one delta and appends its record.
func (s *Service) Apply(ctx context.Context, accountID uint64, delta int64, rec ledger.Record) (int64, error) {
	return s.ApplyComposite(ctx, accountID, func(int64) ([]Step, error) {
		return []Step{{Delta: delta, Record: rec}}, nil
	})
}

// ApplyComposite runs the full flow in a single DB transaction:
//
// 1) Ensure the account exists.
// 2) Lock the account row (FOR UPDATE).
// 3) Build the steps under the lock.
// 4) Apply each delta with a funds check against the running balance,
//    appending each record with its post-apply balance snapshot.
func (s *Service) ApplyComposite(ctx context.Context, accountID uint64, build BuildFunc) (int64, error) {
	var newBalance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.accounts.Exists(tx, accountID)
		if err != nil {
			return fmt.Errorf("check account exists: %w", err)
		}

		balance, err := s.accounts.LockAndGetBalance(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		steps, err := build(balance)
		if err != nil {
			return fmt.Errorf("build steps: %w", err)
		}

		balance, err = s.applyStepsTx(tx, accountID, balance, steps)
		if err != nil {
			return err
		}

		newBalance = balance

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("apply composite: %w", err)
	}

	return newBalance, nil
}

// ApplyTx applies steps inside a caller-owned transaction. The caller must
// have locked the account row already, or accept that the first mutation
// takes the lock; they own commit/rollback. Used when a balance change must
// commit together with other state, like a payment intent transition.
func (s *Service) ApplyTx(tx *sql.Tx, accountID uint64, steps []Step) (int64, error) {
	err := s.accounts.Exists(tx, accountID)
	if err != nil {
		return 0, fmt.Errorf("check account exists: %w", err)
	}

	balance, err := s.accounts.LockAndGetBalance(tx, accountID)
	if err != nil {
		return 0, fmt.Errorf("lock and get balance: %w", err)
	}

	return s.applyStepsTx(tx, accountID, balance, steps)
}

func (s *Service) applyStepsTx(tx *sql.Tx, accountID uint64, balance int64, steps []Step) (int64, error) {
	for i := range steps {
		st := &steps[i]

		switch {
		case st.Delta < 0:
			// Pre-check against the locked running balance; the SQL guard
			// in DecreaseBalance is the backstop.
			if balance+st.Delta < 0 {
				return 0, fmt.Errorf("funds pre-check: %w", accounts.ErrInsufficientFunds)
			}

			err := s.accounts.DecreaseBalance(tx, accountID, -st.Delta)
			if err != nil {
				return 0, fmt.Errorf("decrease balance: %w", err)
			}

		case st.Delta > 0:
			err := s.accounts.IncreaseBalance(tx, accountID, st.Delta)
			if err != nil {
				return 0, fmt.Errorf("increase balance: %w", err)
			}
		}

		balance += st.Delta

		st.Record.AccountID = accountID
		st.Record.ResultingBalance = balance

		err := s.records.Insert(tx, &st.Record)
		if err != nil {
			return 0, fmt.Errorf("append record: %w", err)
		}
	}

	return balance, nil
}
