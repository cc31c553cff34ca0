package intents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrIntentNotFound   = errors.New("payment intent not found")
	ErrAlreadyFinalized = errors.New("payment intent already finalized")
	ErrDuplicateOrder   = errors.New("duplicate gateway order reference")
)

type State string

const (
	StateCreated  State = "created"
	StateCaptured State = "captured"
	StateFailed   State = "failed"
)

// Intent is a pending external deposit. It transitions exactly once from
// created to captured or failed.
type Intent struct {
	ID          string
	AccountID   uint64
	Amount      int64 // paise
	OrderRef    string
	State       State
	CreatedAt   time.Time
	FinalizedAt *time.Time
}

type Intents interface {
	Insert(ctx context.Context, in *Intent) error
	LockByOrderRef(tx *sql.Tx, orderRef string) (*Intent, error)
	Finalize(tx *sql.Tx, id string, state State) error
}
