package accounts

import (
	"database/sql"
	"fmt"

	"github.com/fastwager/wagercore/internal/repos/accounts"
)

func (r *accountsRepo) DecreaseBalance(tx *sql.Tx, accountID uint64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
	`, accountID, amount)
	if err != nil {
		return fmt.Errorf("decrease balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrInsufficientFunds
	}

	return nil
}
