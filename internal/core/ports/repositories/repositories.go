// Package repositories defines the persistence ports the services depend on.
// Two implementations exist: the in-memory store (default) and the pgsql
// adapter. Both honor the same locking and atomicity contract.
package repositories

import (
	"context"

	"github.com/sleepystack/vaulta/internal/core/domain"
)

// UserRepository stores user profiles.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
}

// AccountReader provides read-only access to account records. Reads are
// consistent snapshots: they never observe a debit without its matching
// credit.
type AccountReader interface {
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	// ListAccountsByOwner returns the owner's accounts in creation order.
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountRepository adds account creation to AccountReader. SaveAccount
// returns apperrors.ErrDuplicate when the account number is already taken so
// the caller can regenerate and retry.
type AccountRepository interface {
	AccountReader
	SaveAccount(ctx context.Context, account domain.Account) error
}

// JournalReader is the read side of the append-only journal. All listings are
// ordered by entry id descending (most recent first) and report the total
// number of matching entries for pagination.
type JournalReader interface {
	ListEntriesByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]domain.Entry, int64, error)
	ListEntries(ctx context.Context, typeFilter *domain.EntryType, limit, offset int) ([]domain.Entry, int64, error)
	// ListRecentEntries returns the newest entries touching any of the given
	// accounts, newest first.
	ListRecentEntries(ctx context.Context, accountNumbers []string, limit int) ([]domain.Entry, error)
	CountEntries(ctx context.Context) (int64, error)
}

// LedgerTx is one atomic ledger mutation: the balance changes and the journal
// append inside it become visible together at Commit, or not at all.
//
// LockAccount acquisition is bounded; exceeding the store's lock timeout
// returns apperrors.ErrBusy with no effect. Lock acquisition order is the
// caller's responsibility (the engine locks in lexicographic account-number
// order to stay deadlock free).
type LedgerTx interface {
	// LockAccount takes the account's exclusive lock and returns its current
	// state. The lock is held until Commit or Rollback.
	LockAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	// AdjustBalance applies delta to a locked account. It fails with
	// ErrInsufficientFunds when the delta would drive the balance negative and
	// ErrAccountClosed when the account is closed, leaving the balance
	// unchanged either way.
	AdjustBalance(ctx context.Context, accountNumber string, delta domain.Money) (domain.Money, error)
	// CloseAccount marks a locked account CLOSED. The balance must be exactly
	// zero (ErrConflict otherwise); closing twice fails with ErrAccountClosed.
	CloseAccount(ctx context.Context, accountNumber string) error
	// AppendEntry stages a journal entry; ids and timestamps are assigned at
	// commit so that journal id order reflects actual commit order.
	AppendEntry(ctx context.Context, entry domain.Entry) error
	// Commit publishes the staged balance changes and journal entries as one
	// unit and returns the committed entries with their assigned ids.
	Commit(ctx context.Context) ([]domain.Entry, error)
	// Rollback discards every staged change and releases all locks. Safe to
	// call after Commit (no-op), so callers can defer it.
	Rollback(ctx context.Context) error
}

// LedgerRepository is the single write path into accounts and the journal.
type LedgerRepository interface {
	AccountRepository
	JournalReader
	BeginLedgerTx(ctx context.Context) (LedgerTx, error)
}
