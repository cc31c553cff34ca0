package accounts

import (
	"database/sql"
	"fmt"
	"testing"
)

// seedAccount inserts an account row with an explicit id so tests can refer
// to it without going through Create.
func seedAccount(t *testing.T, db *sql.DB, id uint64, balance int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (id, name, phone, password_hash, balance)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET balance = EXCLUDED.balance
	`, id, fmt.Sprintf("acct-%d", id), fmt.Sprintf("98%08d", id), "hash", balance)
	if err != nil {
		t.Fatalf("seed account(%d): %v", id, err)
	}
}
