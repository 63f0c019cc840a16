package memory

import (
	"context"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
)

// SaveAccount registers a new account. Returns ErrDuplicate when the account
// number is already taken; the caller regenerates and retries.
func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountNumber]; exists {
		return apperrors.ErrDuplicate
	}
	s.accounts[account.AccountNumber] = &accountEntry{
		lock:    make(chan struct{}, 1),
		account: account,
	}
	s.accountOrder = append(s.accountOrder, account.AccountNumber)
	return nil
}

// FindAccountByNumber returns a snapshot of the account.
func (s *Store) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.accounts[accountNumber]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := e.account
	return &cp, nil
}

// ListAccountsByOwner returns the owner's accounts in creation order.
func (s *Store) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Account
	for _, num := range s.accountOrder {
		if acct := s.accounts[num].account; acct.OwnerID == ownerID {
			out = append(out, acct)
		}
	}
	return out, nil
}

// ListAccounts returns every account in creation order.
func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.accountOrder))
	for _, num := range s.accountOrder {
		out = append(out, s.accounts[num].account)
	}
	return out, nil
}
