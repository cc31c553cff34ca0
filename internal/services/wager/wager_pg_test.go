package wager

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fastwager/wagercore/internal/infra/pgtestutil"
	"github.com/fastwager/wagercore/internal/repos/accounts"
	"github.com/fastwager/wagercore/internal/repos/ledger"
	"github.com/fastwager/wagercore/internal/services/outcome"
	"github.com/fastwager/wagercore/internal/services/wallet"
)

func seedAccount(t *testing.T, db *sql.DB, id uint64, balance int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (id, name, phone, password_hash, balance)
		VALUES ($1, $2, $3, $4, $5)
	`, id, fmt.Sprintf("acct-%d", id), fmt.Sprintf("93%08d", id), "hash", balance)
	if err != nil {
		t.Fatalf("seed account(%d): %v", id, err)
	}
}

// A settled round always lands as a debit/credit pair with the game payload
// on both records, and the balance moves by the round's net effect.
func TestPlaceBet_Settlement(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, 10_000)

	walletSrv := wallet.New(db)
	svc := New(walletSrv)

	won := true
	res, err := svc.PlaceBet(testContext(t), Bet{
		AccountID: 1,
		Variant:   outcome.VariantMines,
		Amount:    5_000,
		MinesWon:  &won,
	})
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	if !res.Win || res.Winnings != 10_000 || res.NewBalance != 15_000 {
		t.Fatalf("unexpected result: %+v", res)
	}

	recs, err := walletSrv.History(testContext(t), 1, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want a debit/credit pair, got %d records", len(recs))
	}

	credit, debit := recs[0], recs[1]
	if credit.Kind != ledger.KindBetCredit || credit.Amount != 10_000 || credit.ResultingBalance != 15_000 {
		t.Fatalf("unexpected credit record: %+v", credit)
	}
	if debit.Kind != ledger.KindBetDebit || debit.Amount != 5_000 || debit.ResultingBalance != 5_000 {
		t.Fatalf("unexpected debit record: %+v", debit)
	}
	for _, rec := range recs {
		if rec.Payload == nil || rec.Payload.Variant != "mines" || !rec.Payload.Win {
			t.Fatalf("missing game payload on %s: %+v", rec.Kind, rec.Payload)
		}
	}
}

// A losing stake of the whole balance settles to exactly zero with a
// zero-amount credit closing the pair.
func TestPlaceBet_LossToZero(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 2, 5_000)

	walletSrv := wallet.New(db)
	svc := New(walletSrv)

	won := false
	res, err := svc.PlaceBet(testContext(t), Bet{
		AccountID: 2,
		Variant:   outcome.VariantMines,
		Amount:    5_000,
		MinesWon:  &won,
	})
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if res.Win || res.Winnings != 0 || res.NewBalance != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	recs, err := walletSrv.History(testContext(t), 2, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want a debit/credit pair on loss too, got %d", len(recs))
	}
	if recs[0].Kind != ledger.KindBetCredit || recs[0].Amount != 0 {
		t.Fatalf("want zero-amount credit, got %+v", recs[0])
	}
}

// Concurrent rounds on one account serialize: the final balance equals the
// initial balance plus the sum of each round's net effect, and every round
// either fully settles or fails with the balance untouched.
func TestPlaceBet_ConcurrentRounds(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	const (
		startBalance = 10_000
		stake        = 1_000
		rounds       = 8
	)

	seedAccount(t, db, 3, startBalance)

	walletSrv := wallet.New(db)
	svc := New(walletSrv)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var net int64
	var insufficient int

	wg.Add(rounds)
	for i := 0; i < rounds; i++ {
		won := i%2 == 0
		go func(won bool) {
			defer wg.Done()

			res, err := svc.PlaceBet(testContext(t), Bet{
				AccountID: 3,
				Variant:   outcome.VariantMines,
				Amount:    stake,
				MinesWon:  &won,
			})
			if err != nil {
				if errors.Is(err, accounts.ErrInsufficientFunds) {
					mu.Lock()
					insufficient++
					mu.Unlock()
					return
				}
				t.Errorf("place bet: %v", err)
				return
			}

			mu.Lock()
			net += res.Winnings - stake
			mu.Unlock()
		}(won)
	}
	wg.Wait()

	bal, err := walletSrv.GetBalance(testContext(t), 3)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != startBalance+net {
		t.Fatalf("balance drifted: want %d, got %d (insufficient=%d)", startBalance+net, bal, insufficient)
	}

	recs, err := walletSrv.History(testContext(t), 3, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	settled := rounds - insufficient
	if len(recs) != settled*2 {
		t.Fatalf("want %d records for %d settled rounds, got %d", settled*2, settled, len(recs))
	}
}
