package payments

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/fastwager/wagercore/internal/infra/pgtestutil"
	"github.com/fastwager/wagercore/internal/repos/intents"
	pgintents "github.com/fastwager/wagercore/internal/repos/intents/postgres"
	"github.com/fastwager/wagercore/internal/repos/ledger"
	"github.com/fastwager/wagercore/internal/services/wallet"
)

func seedAccount(t *testing.T, db *sql.DB, id uint64, balance int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (id, name, phone, password_hash, balance)
		VALUES ($1, $2, $3, $4, $5)
	`, id, fmt.Sprintf("acct-%d", id), fmt.Sprintf("94%08d", id), "hash", balance)
	if err != nil {
		t.Fatalf("seed account(%d): %v", id, err)
	}
}

func seedIntent(t *testing.T, db *sql.DB, in *intents.Intent) {
	t.Helper()

	err := pgintents.New(db).Insert(testContext(t), in)
	if err != nil {
		t.Fatalf("seed intent %s: %v", in.OrderRef, err)
	}
}

// Confirming a capture credits the deposit exactly once: the second
// confirmation for the same order is a no-op.
func TestConfirm_Idempotent(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, 0)
	seedIntent(t, db, &intents.Intent{
		ID:        "d0000000-0000-4000-8000-000000000001",
		AccountID: 1,
		Amount:    50_000,
		OrderRef:  "order_idem",
		State:     intents.StateCreated,
	})

	walletSrv := wallet.New(db)
	svc := New(db, walletSrv, &stubOrders{})

	err := svc.Confirm(testContext(t), "order_idem", true, 50_000)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	bal, err := walletSrv.GetBalance(testContext(t), 1)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != 50_000 {
		t.Fatalf("balance after capture: want 50000, got %d", bal)
	}

	err = svc.Confirm(testContext(t), "order_idem", true, 50_000)
	if !errors.Is(err, intents.ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized on replay, got: %v", err)
	}

	bal, err = walletSrv.GetBalance(testContext(t), 1)
	if err != nil {
		t.Fatalf("get balance after replay: %v", err)
	}
	if bal != 50_000 {
		t.Fatalf("replay must not credit again: want 50000, got %d", bal)
	}

	recs, err := walletSrv.History(testContext(t), 1, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("want exactly one deposit record, got %d", len(recs))
	}
	if recs[0].Kind != ledger.KindDepositCredit || recs[0].OrderRef != "order_idem" {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
}

// A failed capture finalizes the intent with no ledger effect, and the
// terminal state blocks a later "captured" replay from crediting.
func TestConfirm_FailedThenCapturedReplay(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 2, 1_000)
	seedIntent(t, db, &intents.Intent{
		ID:        "d0000000-0000-4000-8000-000000000002",
		AccountID: 2,
		Amount:    50_000,
		OrderRef:  "order_fail",
		State:     intents.StateCreated,
	})

	walletSrv := wallet.New(db)
	svc := New(db, walletSrv, &stubOrders{})

	err := svc.Confirm(testContext(t), "order_fail", false, 50_000)
	if err != nil {
		t.Fatalf("confirm failed event: %v", err)
	}

	err = svc.Confirm(testContext(t), "order_fail", true, 50_000)
	if !errors.Is(err, intents.ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got: %v", err)
	}

	bal, err := walletSrv.GetBalance(testContext(t), 2)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != 1_000 {
		t.Fatalf("failed deposit must not credit: want 1000, got %d", bal)
	}
}

func TestCreateIntent_Persists(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 3, 0)

	svc := New(db, wallet.New(db), &stubOrders{orderRef: "order_persist"})

	in, err := svc.CreateIntent(testContext(t), 3, 25_000)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	got, err := pgintents.New(db).LockByOrderRef(tx, "order_persist")
	if err != nil {
		t.Fatalf("load intent: %v", err)
	}
	if got.ID != in.ID || got.State != intents.StateCreated || got.Amount != 25_000 {
		t.Fatalf("unexpected intent row: %+v", got)
	}
}
