package signup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastwager/wagercore/internal/repos/accounts"
)

type fakeAccounts struct {
	accounts.Accounts

	gotName string
	gotHash string
	nextID  uint64
	err     error
}

func (f *fakeAccounts) Create(_ context.Context, name, _, passwordHash string) (uint64, error) {
	f.gotName = name
	f.gotHash = passwordHash
	return f.nextID, f.err
}

func TestRegister(t *testing.T) {
	fake := &fakeAccounts{nextID: 42}
	svc := New(fake)

	id, err := svc.Register(testContext(t), "Asha", "9812345678", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "Asha", fake.gotName)

	// the stored credential must be a verifiable bcrypt hash, never the
	// raw password
	assert.NotEqual(t, "correct horse battery", fake.gotHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(fake.gotHash), []byte("correct horse battery")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(fake.gotHash), []byte("wrong password")))
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := New(&fakeAccounts{})

	_, err := svc.Register(testContext(t), "Asha", "9812345678", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_PhoneTaken(t *testing.T) {
	svc := New(&fakeAccounts{err: accounts.ErrPhoneTaken})

	_, err := svc.Register(testContext(t), "Asha", "9812345678", "long enough pass")
	assert.ErrorIs(t, err, accounts.ErrPhoneTaken)
}
