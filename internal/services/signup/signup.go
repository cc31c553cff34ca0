// Package signup creates accounts. Sessions and login are an external
// collaborator's job; this only owns the account row and its credential
// hash.
package signup

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastwager/wagercore/internal/repos/accounts"
)

var ErrWeakPassword = errors.New("password too short")

const minPasswordLen = 8

type Service struct {
	accounts accounts.Accounts
}

func New(repo accounts.Accounts) *Service {
	return &Service{accounts: repo}
}

// Register creates an account with a zero balance and a bcrypt-hashed
// password. Phone numbers are unique; a taken phone surfaces as
// accounts.ErrPhoneTaken.
func (s *Service) Register(ctx context.Context, name, phone, password string) (uint64, error) {
	if len(password) < minPasswordLen {
		return 0, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.accounts.Create(ctx, name, phone, string(hash))
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	return id, nil
}
