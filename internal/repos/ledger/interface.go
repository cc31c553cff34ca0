package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrDuplicateRecord = errors.New("duplicate ledger record")

type Kind string

const (
	KindBetDebit        Kind = "bet_debit"
	KindBetCredit       Kind = "bet_credit"
	KindDepositCredit   Kind = "deposit_credit"
	KindWithdrawalDebit Kind = "withdrawal_debit"
)

// GamePayload is the wager detail attached to bet records.
type GamePayload struct {
	Variant    string `json:"variant"`
	Prediction string `json:"prediction,omitempty"`
	Outcome    string `json:"outcome"`
	Win        bool   `json:"win"`
}

// Record is one immutable ledger line. Amount is a magnitude; Kind carries
// the direction. ResultingBalance snapshots the account balance after the
// record's effect was applied.
type Record struct {
	RecordID         string
	AccountID        uint64
	Kind             Kind
	Amount           int64
	ResultingBalance int64
	Payload          *GamePayload
	OrderRef         string
	CreatedAt        time.Time
}

type Ledger interface {
	Insert(tx *sql.Tx, rec *Record) error
	ListByAccount(ctx context.Context, accountID uint64, limit int) ([]Record, error)
}
