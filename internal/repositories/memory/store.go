// Package memory is the in-process implementation of the ledger ports.
//
// Every account carries its own exclusive lock (a capacity-1 channel) with
// bounded, context-aware acquisition. A ledger transaction stages its
// mutations against private copies and publishes them under the store's write
// lock at commit, so readers always observe a consistent snapshot: never a
// negative balance, never a debit without its matching credit.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
)

// DefaultLockTimeout bounds how long an operation waits for an account lock
// before failing with ErrBusy.
const DefaultLockTimeout = 2 * time.Second

type accountEntry struct {
	// lock is held by whoever owns the token in the channel.
	lock    chan struct{}
	account domain.Account
}

// Store holds accounts, users and the append-only journal.
type Store struct {
	mu sync.RWMutex

	accounts     map[string]*accountEntry
	accountOrder []string

	users       map[string]domain.User
	userByName  map[string]string
	userByEmail map[string]string
	userOrder   []string

	journal     []domain.Entry
	nextEntryID int64
	lastStamp   time.Time

	lockTimeout time.Duration
}

// NewStore creates an empty store. A non-positive lockTimeout falls back to
// DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		accounts:    make(map[string]*accountEntry),
		users:       make(map[string]domain.User),
		userByName:  make(map[string]string),
		userByEmail: make(map[string]string),
		lockTimeout: lockTimeout,
	}
}

// acquire takes the account's exclusive lock, waiting at most the configured
// timeout. On timeout it returns ErrBusy; on caller cancellation, the context
// error. Either way no state has changed.
func (s *Store) acquire(ctx context.Context, e *accountEntry) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case e.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return apperrors.ErrBusy
	}
}

func release(e *accountEntry) {
	<-e.lock
}

func (s *Store) findEntry(accountNumber string) (*accountEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.accounts[accountNumber]
	return e, ok
}

// stamp returns a commit timestamp that never decreases, keeping timestamps
// monotonic with journal ids. Caller must hold s.mu.
func (s *Store) stamp() time.Time {
	now := time.Now().UTC()
	if now.Before(s.lastStamp) {
		now = s.lastStamp
	}
	s.lastStamp = now
	return now
}
