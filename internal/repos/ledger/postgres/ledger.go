package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fastwager/wagercore/internal/repos/ledger"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ ledger.Ledger = (*ledgerRepo)(nil)

type ledgerRepo struct{ db *sql.DB }

func New(db *sql.DB) *ledgerRepo {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Insert(tx *sql.Tx, rec *ledger.Record) error {
	var payload []byte
	if rec.Payload != nil {
		var err error
		payload, err = json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	var orderRef *string
	if rec.OrderRef != "" {
		orderRef = &rec.OrderRef
	}

	_, err := tx.Exec(`
		INSERT INTO ledger_records (record_id, account_id, kind, amount, resulting_balance, payload, order_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.RecordID, rec.AccountID, string(rec.Kind), rec.Amount, rec.ResultingBalance, payload, orderRef)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return ledger.ErrDuplicateRecord
			}
		}

		return fmt.Errorf("insert record: %w", err)
	}

	return nil
}

// ListByAccount returns the most recent records first. limit <= 0 means
// no limit.
func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]ledger.Record, error) {
	q := `
		SELECT record_id, account_id, kind, amount, resulting_balance, payload, order_ref, created_at
		FROM ledger_records
		WHERE account_id = $1
		ORDER BY id DESC
	`
	args := []any{accountID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var recs []ledger.Record
	for rows.Next() {
		var (
			rec      ledger.Record
			kind     string
			payload  []byte
			orderRef sql.NullString
		)

		err := rows.Scan(&rec.RecordID, &rec.AccountID, &kind, &rec.Amount,
			&rec.ResultingBalance, &payload, &orderRef, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		rec.Kind = ledger.Kind(kind)
		rec.OrderRef = orderRef.String

		if len(payload) > 0 {
			rec.Payload = new(ledger.GamePayload)
			err := json.Unmarshal(payload, rec.Payload)
			if err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}

		recs = append(recs, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return recs, nil
}
