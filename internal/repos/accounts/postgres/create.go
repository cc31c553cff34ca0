package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastwager/wagercore/internal/repos/accounts"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *accountsRepo) Create(ctx context.Context, name, phone, passwordHash string) (uint64, error) {
	var id uint64

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (name, phone, password_hash, balance)
		VALUES ($1, $2, $3, 0)
		RETURNING id
	`, name, phone, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return 0, accounts.ErrPhoneTaken
		}

		return 0, fmt.Errorf("insert account: %w", err)
	}

	return id, nil
}
