package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
)

// ledgerTx stages balance mutations against private copies of the locked
// accounts and publishes them, together with the journal entries, at Commit.
// Rollback (or an abandoned tx after caller cancellation) discards everything.
type ledgerTx struct {
	store   *Store
	locked  []*accountEntry // acquisition order, released in reverse
	staged  map[string]domain.Account
	entries []domain.Entry
	done    bool
}

// BeginLedgerTx starts an atomic ledger mutation.
func (s *Store) BeginLedgerTx(ctx context.Context) (portsrepo.LedgerTx, error) {
	return &ledgerTx{
		store:  s,
		staged: make(map[string]domain.Account),
	}, nil
}

func (t *ledgerTx) LockAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if t.done {
		return nil, fmt.Errorf("ledger tx already finished")
	}
	if acct, ok := t.staged[accountNumber]; ok {
		cp := acct
		return &cp, nil
	}
	e, ok := t.store.findEntry(accountNumber)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if err := t.store.acquire(ctx, e); err != nil {
		return nil, err
	}
	t.locked = append(t.locked, e)

	t.store.mu.RLock()
	acct := e.account
	t.store.mu.RUnlock()
	t.staged[accountNumber] = acct
	cp := acct
	return &cp, nil
}

func (t *ledgerTx) AdjustBalance(ctx context.Context, accountNumber string, delta domain.Money) (domain.Money, error) {
	acct, ok := t.staged[accountNumber]
	if !ok {
		return 0, fmt.Errorf("account %s is not locked by this tx", accountNumber)
	}
	if acct.Status == domain.AccountClosed {
		return 0, apperrors.ErrAccountClosed
	}
	newBalance := acct.Balance + delta
	if delta < 0 && newBalance < 0 {
		return 0, apperrors.ErrInsufficientFunds
	}
	acct.Balance = newBalance
	t.staged[accountNumber] = acct
	return newBalance, nil
}

func (t *ledgerTx) CloseAccount(ctx context.Context, accountNumber string) error {
	acct, ok := t.staged[accountNumber]
	if !ok {
		return fmt.Errorf("account %s is not locked by this tx", accountNumber)
	}
	if acct.Status == domain.AccountClosed {
		return apperrors.ErrAccountClosed
	}
	if acct.Balance != 0 {
		return apperrors.ErrConflict
	}
	now := time.Now().UTC()
	acct.Status = domain.AccountClosed
	acct.ClosedAt = &now
	t.staged[accountNumber] = acct
	return nil
}

func (t *ledgerTx) AppendEntry(ctx context.Context, entry domain.Entry) error {
	if t.done {
		return fmt.Errorf("ledger tx already finished")
	}
	t.entries = append(t.entries, entry)
	return nil
}

func (t *ledgerTx) Commit(ctx context.Context) ([]domain.Entry, error) {
	if t.done {
		return nil, fmt.Errorf("ledger tx already finished")
	}
	s := t.store
	s.mu.Lock()
	stamp := s.stamp()
	committed := make([]domain.Entry, 0, len(t.entries))
	for _, e := range t.entries {
		s.nextEntryID++
		e.ID = s.nextEntryID
		e.Timestamp = stamp
		s.journal = append(s.journal, e)
		committed = append(committed, e)
	}
	for num, acct := range t.staged {
		s.accounts[num].account = acct
	}
	s.mu.Unlock()

	t.finish()
	return committed, nil
}

func (t *ledgerTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

// finish releases the held locks in reverse acquisition order.
func (t *ledgerTx) finish() {
	t.done = true
	for i := len(t.locked) - 1; i >= 0; i-- {
		release(t.locked[i])
	}
	t.locked = nil
}
