package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastwager/wagercore/internal/repos/accounts"
)

func (r *accountsRepo) GetBalance(ctx context.Context, accountID uint64) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM accounts
		WHERE id = $1
	`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrAccountNotFound
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
