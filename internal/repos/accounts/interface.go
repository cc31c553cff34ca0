package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPhoneTaken        = errors.New("phone already registered")
)

type Account struct {
	ID           uint64
	Name         string
	Phone        string
	PasswordHash string
	Balance      int64 // paise
	CreatedAt    time.Time
}

// Accounts is the account row store. Methods taking *sql.Tx participate in
// a caller-owned transaction; balance mutations require the row to be
// locked first via LockAndGetBalance.
type Accounts interface {
	Create(ctx context.Context, name, phone, passwordHash string) (uint64, error)
	GetByPhone(ctx context.Context, phone string) (*Account, error)
	Exists(tx *sql.Tx, accountID uint64) error
	GetBalance(ctx context.Context, accountID uint64) (int64, error)
	LockAndGetBalance(tx *sql.Tx, accountID uint64) (int64, error)
	IncreaseBalance(tx *sql.Tx, accountID uint64, amount int64) error
	DecreaseBalance(tx *sql.Tx, accountID uint64, amount int64) error
}
