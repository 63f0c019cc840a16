package services_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/core/services"
	"github.com/sleepystack/vaulta/internal/repositories/memory"
)

// The engine tests run against the real in-memory store so locking, staging
// and commit behavior are exercised end to end.
type TransactionServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	txnSvc portssvc.TransactionSvcFacade

	aliceID string
	bobID   string
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore(150 * time.Millisecond)
	s.txnSvc = services.NewTransactionService(s.store, s.store)

	s.aliceID = "user-alice"
	s.bobID = "user-bob"
	s.Require().NoError(s.store.SaveUser(s.ctx, domain.User{
		UserID: s.aliceID, Username: "alice", Email: "alice@example.com",
		Role: domain.RoleUser, Status: domain.UserActive, CreatedAt: time.Now().UTC(),
	}))
	s.Require().NoError(s.store.SaveUser(s.ctx, domain.User{
		UserID: s.bobID, Username: "bob", Email: "bob@example.com",
		Role: domain.RoleUser, Status: domain.UserActive, CreatedAt: time.Now().UTC(),
	}))
}

func (s *TransactionServiceTestSuite) seedAccount(number, ownerID string, balance domain.Money) {
	s.Require().NoError(s.store.SaveAccount(s.ctx, domain.Account{
		AccountNumber: number,
		OwnerID:       ownerID,
		AccountType:   domain.Checking,
		Balance:       balance,
		Status:        domain.AccountActive,
		CreatedAt:     time.Now().UTC(),
	}))
}

func (s *TransactionServiceTestSuite) balance(number string) domain.Money {
	acct, err := s.store.FindAccountByNumber(s.ctx, number)
	s.Require().NoError(err)
	return acct.Balance
}

func (s *TransactionServiceTestSuite) journalCount() int64 {
	count, err := s.store.CountEntries(s.ctx)
	s.Require().NoError(err)
	return count
}

func (s *TransactionServiceTestSuite) TestDeposit() {
	s.seedAccount("8880000001", s.aliceID, 0)

	entry, err := s.txnSvc.Deposit(s.ctx, "8880000001", 10000)
	s.Require().NoError(err)
	s.Equal(domain.Deposit, entry.Type)
	s.Equal(domain.DepositSource, entry.FromAccount)
	s.Equal("8880000001", entry.ToAccount)
	s.Equal(domain.Money(10000), entry.Amount)
	s.Equal(int64(1), entry.ID)
	s.Equal(domain.Money(10000), s.balance("8880000001"))
}

func (s *TransactionServiceTestSuite) TestDepositRejectsNonPositiveAmount() {
	s.seedAccount("8880000001", s.aliceID, 0)

	_, err := s.txnSvc.Deposit(s.ctx, "8880000001", 0)
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.txnSvc.Deposit(s.ctx, "8880000001", -100)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Zero(s.journalCount())
}

func (s *TransactionServiceTestSuite) TestDepositUnknownAccount() {
	_, err := s.txnSvc.Deposit(s.ctx, "8889999999", 100)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestWithdrawInsufficientFunds() {
	s.seedAccount("8880000001", s.aliceID, 2000)

	_, err := s.txnSvc.Withdraw(s.ctx, "8880000001", 100000, s.aliceID)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(domain.Money(2000), s.balance("8880000001"), "failed withdrawal leaves the balance unchanged")
	s.Zero(s.journalCount(), "no journal entry for a failed operation")
}

func (s *TransactionServiceTestSuite) TestWithdrawNotOwner() {
	s.seedAccount("8880000001", s.aliceID, 5000)

	_, err := s.txnSvc.Withdraw(s.ctx, "8880000001", 100, s.bobID)
	s.ErrorIs(err, apperrors.ErrNotOwner)
	s.Equal(domain.Money(5000), s.balance("8880000001"))
}

func (s *TransactionServiceTestSuite) TestFrozenUserDeniedNewOperations() {
	s.seedAccount("8880000001", s.aliceID, 5000)

	user, err := s.store.FindUserByID(s.ctx, s.aliceID)
	s.Require().NoError(err)
	user.Status = domain.UserFrozen
	s.Require().NoError(s.store.UpdateUser(s.ctx, *user))

	_, err = s.txnSvc.Withdraw(s.ctx, "8880000001", 100, s.aliceID)
	s.ErrorIs(err, apperrors.ErrUserLocked)

	_, err = s.txnSvc.Transfer(s.ctx, "8880000001", "8880000002", 100, s.aliceID)
	s.ErrorIs(err, apperrors.ErrUserLocked)
}

// Deposits carry no requester identity, so a frozen owner's account still
// receives money; freezing stops funds from leaving, not from arriving.
func (s *TransactionServiceTestSuite) TestFrozenOwnerStillReceivesDeposits() {
	s.seedAccount("8880000001", s.aliceID, 0)

	user, err := s.store.FindUserByID(s.ctx, s.aliceID)
	s.Require().NoError(err)
	user.Status = domain.UserFrozen
	s.Require().NoError(s.store.UpdateUser(s.ctx, *user))

	_, err = s.txnSvc.Deposit(s.ctx, "8880000001", 500)
	s.Require().NoError(err)
	s.Equal(domain.Money(500), s.balance("8880000001"))
}

func (s *TransactionServiceTestSuite) TestTransferSameAccount() {
	s.seedAccount("8880000001", s.aliceID, 5000)

	_, err := s.txnSvc.Transfer(s.ctx, "8880000001", "8880000001", 100, s.aliceID)
	s.ErrorIs(err, apperrors.ErrSameAccount)
}

func (s *TransactionServiceTestSuite) TestTransferConservation() {
	s.seedAccount("8880000001", s.aliceID, 10000)
	s.seedAccount("8880000002", s.bobID, 3000)

	entry, err := s.txnSvc.Transfer(s.ctx, "8880000001", "8880000002", 4000, s.aliceID)
	s.Require().NoError(err)
	s.Equal(domain.Transfer, entry.Type)
	s.Equal(domain.Money(6000), s.balance("8880000001"))
	s.Equal(domain.Money(7000), s.balance("8880000002"))
	s.Equal(int64(1), s.journalCount(), "one TRANSFER entry covers both legs")
}

// A destination that closed between validation and credit triggers the
// compensating rollback: the debit is reversed and nothing is journaled.
func (s *TransactionServiceTestSuite) TestTransferToClosedDestinationCompensates() {
	s.seedAccount("8880000001", s.aliceID, 10000)
	s.Require().NoError(s.store.SaveAccount(s.ctx, domain.Account{
		AccountNumber: "8880000002",
		OwnerID:       s.bobID,
		AccountType:   domain.Savings,
		Balance:       0,
		Status:        domain.AccountClosed,
		CreatedAt:     time.Now().UTC(),
	}))

	_, err := s.txnSvc.Transfer(s.ctx, "8880000001", "8880000002", 4000, s.aliceID)
	s.ErrorIs(err, apperrors.ErrAccountClosed)
	s.Equal(domain.Money(10000), s.balance("8880000001"), "debit was reversed")
	s.Equal(domain.Money(0), s.balance("8880000002"))
	s.Zero(s.journalCount())
}

func (s *TransactionServiceTestSuite) TestTransferInsufficientFunds() {
	s.seedAccount("8880000001", s.aliceID, 1000)
	s.seedAccount("8880000002", s.bobID, 0)

	_, err := s.txnSvc.Transfer(s.ctx, "8880000001", "8880000002", 5000, s.aliceID)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(domain.Money(1000), s.balance("8880000001"))
	s.Equal(domain.Money(0), s.balance("8880000002"))
}

// Opposing concurrent transfers between the same pair must neither deadlock
// nor lose an update: the combined balance is conserved and every committed
// leg is journaled exactly once.
func (s *TransactionServiceTestSuite) TestConcurrentOpposingTransfers() {
	s.seedAccount("8880000001", s.aliceID, 100000)
	s.seedAccount("8880000002", s.bobID, 100000)

	const n = 20
	var wg sync.WaitGroup
	committed := make([]bool, 2*n)
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := s.txnSvc.Transfer(s.ctx, "8880000001", "8880000002", 100, s.aliceID); err == nil {
				committed[i] = true
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if _, err := s.txnSvc.Transfer(s.ctx, "8880000002", "8880000001", 100, s.bobID); err == nil {
				committed[n+i] = true
			}
		}(i)
	}
	wg.Wait()

	total := s.balance("8880000001") + s.balance("8880000002")
	s.Equal(domain.Money(200000), total, "conservation across concurrent transfers")

	var committedCount int64
	for _, ok := range committed {
		if ok {
			committedCount++
		}
	}
	s.Equal(committedCount, s.journalCount(), "each committed transfer journaled exactly once")
}

// Concurrent deposits to one account serialize on its lock; every deposit is
// applied and the journal id order matches commit order.
func (s *TransactionServiceTestSuite) TestConcurrentDepositsSerialize() {
	s.seedAccount("8880000001", s.aliceID, 0)

	const n = 30
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.txnSvc.Deposit(s.ctx, "8880000001", 100)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var applied domain.Money
	for err := range errs {
		if err == nil {
			applied += 100
		} else {
			s.ErrorIs(err, apperrors.ErrBusy)
		}
	}
	s.Equal(applied, s.balance("8880000001"))

	entries, total, err := s.store.ListEntriesByAccount(s.ctx, "8880000001", int(n), 0)
	s.Require().NoError(err)
	s.Equal(int64(applied/100), total)
	for i := 1; i < len(entries); i++ {
		s.Greater(entries[i-1].ID, entries[i].ID)
	}
}

// The full walkthrough: open with 100.00, withdraw 30.00, transfer 50.00,
// reject the overdraft, reject closing a non-zero account.
func (s *TransactionServiceTestSuite) TestEndToEndScenario() {
	s.seedAccount("8880000001", s.aliceID, 0)
	s.seedAccount("8880000002", s.bobID, 0)

	_, err := s.txnSvc.Deposit(s.ctx, "8880000001", 10000)
	s.Require().NoError(err)
	s.Equal(domain.Money(10000), s.balance("8880000001"))

	_, err = s.txnSvc.Withdraw(s.ctx, "8880000001", 3000, s.aliceID)
	s.Require().NoError(err)
	s.Equal(domain.Money(7000), s.balance("8880000001"))

	_, err = s.txnSvc.Transfer(s.ctx, "8880000001", "8880000002", 5000, s.aliceID)
	s.Require().NoError(err)
	s.Equal(domain.Money(2000), s.balance("8880000001"))
	s.Equal(domain.Money(5000), s.balance("8880000002"))

	_, err = s.txnSvc.Withdraw(s.ctx, "8880000001", 100000, s.aliceID)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(domain.Money(2000), s.balance("8880000001"))

	accountSvc := services.NewAccountService(s.store, s.store, s.txnSvc)
	err = accountSvc.CloseAccount(s.ctx, "8880000002", s.bobID, false)
	s.ErrorIs(err, apperrors.ErrConflict)
	acct, err := s.store.FindAccountByNumber(s.ctx, "8880000002")
	s.Require().NoError(err)
	s.Equal(domain.AccountActive, acct.Status)

	entries, total, err := s.store.ListEntriesByAccount(s.ctx, "8880000001", 10, 0)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Equal(domain.Transfer, entries[0].Type)
	s.Equal(domain.Withdrawal, entries[1].Type)
	s.Equal(domain.Deposit, entries[2].Type)
}

// Random mixed workloads must never drive a balance negative, and the journal
// must account for every committed mutation.
func (s *TransactionServiceTestSuite) TestRandomOperationsKeepBalancesNonNegative() {
	numbers := []string{"8880000001", "8880000002", "8880000003"}
	s.seedAccount(numbers[0], s.aliceID, 5000)
	s.seedAccount(numbers[1], s.aliceID, 5000)
	s.seedAccount(numbers[2], s.bobID, 5000)

	rng := rand.New(rand.NewSource(42))
	owners := map[string]string{
		numbers[0]: s.aliceID,
		numbers[1]: s.aliceID,
		numbers[2]: s.bobID,
	}
	var committed int64
	for i := 0; i < 200; i++ {
		from := numbers[rng.Intn(len(numbers))]
		to := numbers[rng.Intn(len(numbers))]
		amount := domain.Money(rng.Int63n(3000) + 1)

		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = s.txnSvc.Deposit(s.ctx, to, amount)
		case 1:
			_, err = s.txnSvc.Withdraw(s.ctx, from, amount, owners[from])
		default:
			_, err = s.txnSvc.Transfer(s.ctx, from, to, amount, owners[from])
		}
		if err == nil {
			committed++
		}
	}

	for _, number := range numbers {
		s.GreaterOrEqual(s.balance(number), domain.Money(0), number)
	}
	s.Equal(committed, s.journalCount(), "one entry per committed operation")
}

func (s *TransactionServiceTestSuite) TestLockContentionSurfacesBusy() {
	s.seedAccount("8880000001", s.aliceID, 10000)

	tx, err := s.store.BeginLedgerTx(s.ctx)
	s.Require().NoError(err)
	_, err = tx.LockAccount(s.ctx, "8880000001")
	s.Require().NoError(err)
	defer tx.Rollback(s.ctx)

	_, err = s.txnSvc.Deposit(s.ctx, "8880000001", 100)
	s.ErrorIs(err, apperrors.ErrBusy)
	s.Equal(domain.Money(10000), s.balance("8880000001"), "a busy failure has no effect")
	s.Zero(s.journalCount())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
