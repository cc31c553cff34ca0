package intents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastwager/wagercore/internal/repos/intents"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ intents.Intents = (*intentsRepo)(nil)

type intentsRepo struct{ db *sql.DB }

func New(db *sql.DB) *intentsRepo {
	return &intentsRepo{db: db}
}

func (r *intentsRepo) Insert(ctx context.Context, in *intents.Intent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_intents (id, account_id, amount, order_ref, state)
		VALUES ($1, $2, $3, $4, $5)
	`, in.ID, in.AccountID, in.Amount, in.OrderRef, string(in.State))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return intents.ErrDuplicateOrder
			}
		}

		return fmt.Errorf("insert intent: %w", err)
	}

	return nil
}

// LockByOrderRef locks the intent row until the caller's transaction ends,
// serializing concurrent confirmations for one order.
func (r *intentsRepo) LockByOrderRef(tx *sql.Tx, orderRef string) (*intents.Intent, error) {
	var (
		in    intents.Intent
		state string
	)

	err := tx.QueryRow(`
		SELECT id, account_id, amount, order_ref, state, created_at, finalized_at
		FROM payment_intents
		WHERE order_ref = $1
		FOR UPDATE
	`, orderRef).Scan(&in.ID, &in.AccountID, &in.Amount, &in.OrderRef, &state, &in.CreatedAt, &in.FinalizedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, intents.ErrIntentNotFound
		}

		return nil, fmt.Errorf("lock intent: %w", err)
	}

	in.State = intents.State(state)

	return &in, nil
}

// Finalize moves an intent out of the created state. The guard in the WHERE
// clause keeps terminal states immutable even if the caller skipped the lock.
func (r *intentsRepo) Finalize(tx *sql.Tx, id string, state intents.State) error {
	res, err := tx.Exec(`
		UPDATE payment_intents
		SET state = $2, finalized_at = now()
		WHERE id = $1
		  AND state = 'created'
	`, id, string(state))
	if err != nil {
		return fmt.Errorf("finalize intent: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return intents.ErrAlreadyFinalized
	}

	return nil
}
