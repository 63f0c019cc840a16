package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(100 * time.Millisecond)
}

func seedAccount(t *testing.T, s *Store, number string, balance domain.Money) {
	t.Helper()
	require.NoError(t, s.SaveAccount(context.Background(), domain.Account{
		AccountNumber: number,
		OwnerID:       "owner-1",
		AccountType:   domain.Checking,
		Balance:       balance,
		Status:        domain.AccountActive,
		CreatedAt:     time.Now().UTC(),
	}))
}

func TestSaveAccountDuplicate(t *testing.T) {
	s := newTestStore(t)
	seedAccount(t, s, "8880000001", 0)

	err := s.SaveAccount(context.Background(), domain.Account{AccountNumber: "8880000001"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestFindAccountByNumberReturnsSnapshot(t *testing.T) {
	s := newTestStore(t)
	seedAccount(t, s, "8880000001", 1000)

	a, err := s.FindAccountByNumber(context.Background(), "8880000001")
	require.NoError(t, err)
	a.Balance = 9999

	b, err := s.FindAccountByNumber(context.Background(), "8880000001")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(1000), b.Balance, "mutating a returned account must not leak into the store")

	_, err = s.FindAccountByNumber(context.Background(), "8889999999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLedgerTxCommitPublishesAtomically(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 10000)
	seedAccount(t, s, "8880000002", 0)

	tx, err := s.BeginLedgerTx(ctx)
	require.NoError(t, err)

	_, err = tx.LockAccount(ctx, "8880000001")
	require.NoError(t, err)
	_, err = tx.LockAccount(ctx, "8880000002")
	require.NoError(t, err)

	_, err = tx.AdjustBalance(ctx, "8880000001", -5000)
	require.NoError(t, err)
	_, err = tx.AdjustBalance(ctx, "8880000002", 5000)
	require.NoError(t, err)

	// Nothing is visible before commit.
	a, err := s.FindAccountByNumber(ctx, "8880000001")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(10000), a.Balance)

	require.NoError(t, tx.AppendEntry(ctx, domain.Entry{
		Type:        domain.Transfer,
		FromAccount: "8880000001",
		ToAccount:   "8880000002",
		Amount:      5000,
	}))

	committed, err := tx.Commit(ctx)
	require.NoError(t, err)
	require.Len(t, committed, 1)
	assert.Equal(t, int64(1), committed[0].ID)
	assert.False(t, committed[0].Timestamp.IsZero())

	a, err = s.FindAccountByNumber(ctx, "8880000001")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(5000), a.Balance)
	b, err := s.FindAccountByNumber(ctx, "8880000002")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(5000), b.Balance)
}

func TestLedgerTxRollbackLeavesNoTrace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 10000)

	tx, err := s.BeginLedgerTx(ctx)
	require.NoError(t, err)
	_, err = tx.LockAccount(ctx, "8880000001")
	require.NoError(t, err)
	_, err = tx.AdjustBalance(ctx, "8880000001", -5000)
	require.NoError(t, err)
	require.NoError(t, tx.AppendEntry(ctx, domain.Entry{
		Type: domain.Withdrawal, FromAccount: "8880000001", ToAccount: domain.WithdrawalSink, Amount: 5000,
	}))
	require.NoError(t, tx.Rollback(ctx))

	a, err := s.FindAccountByNumber(ctx, "8880000001")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(10000), a.Balance)
	count, err := s.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// A second rollback, or one after commit, is a no-op.
	require.NoError(t, tx.Rollback(ctx))
}

func TestLockTimeoutSurfacesBusy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 0)

	holder, err := s.BeginLedgerTx(ctx)
	require.NoError(t, err)
	_, err = holder.LockAccount(ctx, "8880000001")
	require.NoError(t, err)
	defer holder.Rollback(ctx)

	waiter, err := s.BeginLedgerTx(ctx)
	require.NoError(t, err)
	defer waiter.Rollback(ctx)

	start := time.Now()
	_, err = waiter.LockAccount(ctx, "8880000001")
	assert.ErrorIs(t, err, apperrors.ErrBusy)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestLockWaitHonorsContextCancellation(t *testing.T) {
	s := NewStore(10 * time.Second)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 0)

	holder, err := s.BeginLedgerTx(ctx)
	require.NoError(t, err)
	_, err = holder.LockAccount(ctx, "8880000001")
	require.NoError(t, err)
	defer holder.Rollback(ctx)

	cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	waiter, err := s.BeginLedgerTx(cancelCtx)
	require.NoError(t, err)
	defer waiter.Rollback(ctx)

	_, err = waiter.LockAccount(cancelCtx, "8880000001")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAdjustBalanceGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 1000)

	tx, err := s.BeginLedgerTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.LockAccount(ctx, "8880000001")
	require.NoError(t, err)

	_, err = tx.AdjustBalance(ctx, "8880000001", -2000)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	bal, err := tx.AdjustBalance(ctx, "8880000001", -1000)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(0), bal)

	require.NoError(t, tx.CloseAccount(ctx, "8880000001"))
	_, err = tx.AdjustBalance(ctx, "8880000001", 100)
	assert.ErrorIs(t, err, apperrors.ErrAccountClosed)
}

func TestCloseAccountGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 500)

	tx, err := s.BeginLedgerTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.LockAccount(ctx, "8880000001")
	require.NoError(t, err)

	err = tx.CloseAccount(ctx, "8880000001")
	assert.ErrorIs(t, err, apperrors.ErrConflict, "non-zero balance blocks closing")

	_, err = tx.AdjustBalance(ctx, "8880000001", -500)
	require.NoError(t, err)
	require.NoError(t, tx.CloseAccount(ctx, "8880000001"))

	err = tx.CloseAccount(ctx, "8880000001")
	assert.ErrorIs(t, err, apperrors.ErrAccountClosed)
}

func TestJournalOrderingAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 0)

	for i := 0; i < 25; i++ {
		tx, err := s.BeginLedgerTx(ctx)
		require.NoError(t, err)
		_, err = tx.LockAccount(ctx, "8880000001")
		require.NoError(t, err)
		_, err = tx.AdjustBalance(ctx, "8880000001", 100)
		require.NoError(t, err)
		require.NoError(t, tx.AppendEntry(ctx, domain.Entry{
			Type: domain.Deposit, FromAccount: domain.DepositSource, ToAccount: "8880000001", Amount: 100,
		}))
		_, err = tx.Commit(ctx)
		require.NoError(t, err)
	}

	var all []domain.Entry
	pageSize := 10
	for page := 0; ; page++ {
		entries, total, err := s.ListEntriesByAccount(ctx, "8880000001", pageSize, page*pageSize)
		require.NoError(t, err)
		assert.Equal(t, int64(25), total)
		if len(entries) == 0 {
			break
		}
		all = append(all, entries...)
	}

	require.Len(t, all, 25, "pages concatenate to the full set without gaps or duplicates")
	seen := make(map[int64]bool)
	lastStamp := time.Time{}
	for i, e := range all {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
		if i > 0 {
			assert.Greater(t, all[i-1].ID, e.ID, "listing is id descending")
			assert.False(t, all[i-1].Timestamp.Before(e.Timestamp), "timestamps are non-decreasing with id")
		}
		_ = lastStamp
	}
}

func TestListEntriesTypeFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 1000)

	commit := func(e domain.Entry) {
		tx, err := s.BeginLedgerTx(ctx)
		require.NoError(t, err)
		_, err = tx.LockAccount(ctx, "8880000001")
		require.NoError(t, err)
		require.NoError(t, tx.AppendEntry(ctx, e))
		_, err = tx.Commit(ctx)
		require.NoError(t, err)
	}
	commit(domain.Entry{Type: domain.Deposit, FromAccount: domain.DepositSource, ToAccount: "8880000001", Amount: 100})
	commit(domain.Entry{Type: domain.Withdrawal, FromAccount: "8880000001", ToAccount: domain.WithdrawalSink, Amount: 50})
	commit(domain.Entry{Type: domain.Deposit, FromAccount: domain.DepositSource, ToAccount: "8880000001", Amount: 200})

	deposit := domain.Deposit
	entries, total, err := s.ListEntries(ctx, &deposit, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, domain.Deposit, e.Type)
	}

	entries, total, err = s.ListEntries(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 3)
}

func TestListRecentEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "8880000001", 0)
	seedAccount(t, s, "8880000002", 0)

	for i := 0; i < 8; i++ {
		tx, err := s.BeginLedgerTx(ctx)
		require.NoError(t, err)
		_, err = tx.LockAccount(ctx, "8880000001")
		require.NoError(t, err)
		_, err = tx.AdjustBalance(ctx, "8880000001", 100)
		require.NoError(t, err)
		require.NoError(t, tx.AppendEntry(ctx, domain.Entry{
			Type: domain.Deposit, FromAccount: domain.DepositSource, ToAccount: "8880000001", Amount: 100,
		}))
		_, err = tx.Commit(ctx)
		require.NoError(t, err)
	}

	recent, err := s.ListRecentEntries(ctx, []string{"8880000001", "8880000002"}, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, int64(8), recent[0].ID, "newest first")

	recent, err = s.ListRecentEntries(ctx, []string{"8880000002"}, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestUserStoreUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := domain.User{
		UserID: "u1", Username: "alice", Email: "alice@example.com",
		Role: domain.RoleUser, Status: domain.UserActive, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveUser(ctx, user))

	dup := user
	dup.UserID = "u2"
	dup.Email = "other@example.com"
	assert.ErrorIs(t, s.SaveUser(ctx, dup), apperrors.ErrDuplicate, "username must be unique")

	dup.Username = "bob"
	dup.Email = "alice@example.com"
	assert.ErrorIs(t, s.SaveUser(ctx, dup), apperrors.ErrDuplicate, "email must be unique")

	found, err := s.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)

	found.Username = "renamed"
	require.NoError(t, s.UpdateUser(ctx, *found))
	_, err = s.FindUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "old username index entry is removed on update")
	found, err = s.FindUserByUsername(ctx, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)
}
