package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastwager/wagercore/internal/repos/accounts"
)

func (r *accountsRepo) GetByPhone(ctx context.Context, phone string) (*accounts.Account, error) {
	var a accounts.Account

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, password_hash, balance, created_at
		FROM accounts
		WHERE phone = $1
	`, phone).Scan(&a.ID, &a.Name, &a.Phone, &a.PasswordHash, &a.Balance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("get account by phone: %w", err)
	}

	return &a, nil
}
