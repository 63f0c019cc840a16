package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
)

// SQLSTATE raised when lock_timeout expires while waiting on a row lock.
const pgLockNotAvailable = "55P03"

// PgxLedgerRepository is the PostgreSQL write path into accounts and the
// journal. Per-account exclusive locks are row locks taken with
// SELECT ... FOR UPDATE; the lock wait is bounded by lock_timeout so a
// contended account surfaces as ErrBusy instead of blocking forever.
type PgxLedgerRepository struct {
	*PgxAccountRepository
	*PgxJournalRepository
	lockTimeout time.Duration
}

func newPgxLedgerRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		PgxAccountRepository: newPgxAccountRepository(pool),
		PgxJournalRepository: newPgxJournalRepository(pool),
		lockTimeout:          lockTimeout,
	}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// BeginLedgerTx opens a database transaction with the lock timeout applied.
// Every lock, balance change and journal append inside it commits as one
// unit; entry ids come from the BIGSERIAL at insert time, under the row
// locks, so id order matches commit order for entries touching the same
// accounts.
func (r *PgxLedgerRepository) BeginLedgerTx(ctx context.Context) (portsrepo.LedgerTx, error) {
	tx, err := r.PgxAccountRepository.Begin(ctx)
	if err != nil {
		return nil, err
	}
	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms';", r.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, timeout); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return &pgxLedgerTx{
		tx:     tx,
		locked: make(map[string]*domain.Account),
	}, nil
}

type pgxLedgerTx struct {
	tx     pgx.Tx
	locked map[string]*domain.Account
	staged []domain.Entry
	done   bool
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

// LockAccount takes the account's row lock and returns its current state.
// A lock wait exceeding lock_timeout raises SQLSTATE 55P03, reported as
// ErrBusy.
func (t *pgxLedgerTx) LockAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if t.done {
		return nil, fmt.Errorf("ledger transaction already finished")
	}
	if acct, ok := t.locked[accountNumber]; ok {
		return snapshot(acct), nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE;`
	acct, err := scanAccount(t.tx.QueryRow(ctx, query, accountNumber))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrBusy, accountNumber)
		}
		return nil, err
	}
	t.locked[accountNumber] = acct
	return snapshot(acct), nil
}

// AdjustBalance applies delta to a locked account's balance.
func (t *pgxLedgerTx) AdjustBalance(ctx context.Context, accountNumber string, delta domain.Money) (domain.Money, error) {
	acct, err := t.lockedAccount(accountNumber)
	if err != nil {
		return 0, err
	}
	if acct.Status == domain.AccountClosed {
		return 0, fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, accountNumber)
	}
	newBalance := acct.Balance + delta
	if newBalance < 0 {
		return 0, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, accountNumber)
	}
	query := `UPDATE accounts SET balance = $2 WHERE account_number = $1;`
	if _, err := t.tx.Exec(ctx, query, accountNumber, newBalance); err != nil {
		return 0, fmt.Errorf("failed to update balance for account %s: %w", accountNumber, err)
	}
	acct.Balance = newBalance
	return newBalance, nil
}

// CloseAccount marks a locked zero-balance account CLOSED.
func (t *pgxLedgerTx) CloseAccount(ctx context.Context, accountNumber string) error {
	acct, err := t.lockedAccount(accountNumber)
	if err != nil {
		return err
	}
	if acct.Status == domain.AccountClosed {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, accountNumber)
	}
	if acct.Balance != 0 {
		return fmt.Errorf("%w: account %s balance is not zero", apperrors.ErrConflict, accountNumber)
	}
	now := time.Now().UTC()
	query := `UPDATE accounts SET status = $2, closed_at = $3 WHERE account_number = $1;`
	if _, err := t.tx.Exec(ctx, query, accountNumber, domain.AccountClosed, now); err != nil {
		return fmt.Errorf("failed to close account %s: %w", accountNumber, err)
	}
	acct.Status = domain.AccountClosed
	acct.ClosedAt = &now
	return nil
}

// AppendEntry stages a journal entry for insert at commit.
func (t *pgxLedgerTx) AppendEntry(ctx context.Context, entry domain.Entry) error {
	if t.done {
		return fmt.Errorf("ledger transaction already finished")
	}
	t.staged = append(t.staged, entry)
	return nil
}

// Commit inserts the staged entries and commits the database transaction.
func (t *pgxLedgerTx) Commit(ctx context.Context) ([]domain.Entry, error) {
	if t.done {
		return nil, fmt.Errorf("ledger transaction already finished")
	}
	query := `
		INSERT INTO ledger_entries (entry_type, from_account, to_account, amount, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING entry_id, created_at;
	`
	committed := make([]domain.Entry, 0, len(t.staged))
	for _, entry := range t.staged {
		err := t.tx.QueryRow(ctx, query,
			entry.Type,
			entry.FromAccount,
			entry.ToAccount,
			entry.Amount,
		).Scan(&entry.ID, &entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
		}
		committed = append(committed, entry)
	}
	if err := t.tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	t.done = true
	return committed, nil
}

// Rollback discards the transaction. Safe to defer alongside Commit.
func (t *pgxLedgerTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback ledger transaction: %w", err)
	}
	return nil
}

func (t *pgxLedgerTx) lockedAccount(accountNumber string) (*domain.Account, error) {
	if t.done {
		return nil, fmt.Errorf("ledger transaction already finished")
	}
	acct, ok := t.locked[accountNumber]
	if !ok {
		return nil, fmt.Errorf("account %s is not locked in this transaction", accountNumber)
	}
	return acct, nil
}

func snapshot(acct *domain.Account) *domain.Account {
	cp := *acct
	if acct.ClosedAt != nil {
		closedAt := *acct.ClosedAt
		cp.ClosedAt = &closedAt
	}
	return &cp
}
