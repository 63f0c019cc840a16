package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
)

// transactionService is the transaction engine: the sole write path that
// moves money. Every operation validates first, then locks the involved
// accounts, applies the balance changes, journals them and commits as one
// atomic unit. Business-rule failures surface before anything is visible;
// lock timeouts surface as ErrBusy with no effect.
type transactionService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepository
	userRepo   portsrepo.UserRepository
}

// NewTransactionService creates the transaction engine.
func NewTransactionService(ledgerRepo portsrepo.LedgerRepository, userRepo portsrepo.UserRepository) portssvc.TransactionSvcFacade {
	return &transactionService{
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// Deposit credits the account and journals a DEPOSIT entry from the cash
// pseudo-account.
func (s *transactionService) Deposit(ctx context.Context, accountNumber string, amount domain.Money) (*domain.Entry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
	}

	tx, err := s.ledgerRepo.BeginLedgerTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.LockAccount(ctx, accountNumber); err != nil {
		return nil, err
	}
	if _, err := tx.AdjustBalance(ctx, accountNumber, amount); err != nil {
		return nil, err
	}
	if err := tx.AppendEntry(ctx, domain.Entry{
		Type:        domain.Deposit,
		FromAccount: domain.DepositSource,
		ToAccount:   accountNumber,
		Amount:      amount,
	}); err != nil {
		return nil, err
	}

	committed, err := tx.Commit(ctx)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Deposit committed",
		slog.String("account_number", accountNumber),
		slog.String("amount", amount.String()),
		slog.Int64("entry_id", committed[0].ID))
	return &committed[0], nil
}

// Withdraw debits the caller's account and journals a WITHDRAWAL entry to the
// cash pseudo-account. Fails with ErrInsufficientFunds when the balance does
// not cover the amount, leaving it unchanged.
func (s *transactionService) Withdraw(ctx context.Context, accountNumber string, amount domain.Money, requesterID string) (*domain.Entry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrValidation)
	}
	if err := s.ensureActiveUser(ctx, requesterID); err != nil {
		return nil, err
	}

	tx, err := s.ledgerRepo.BeginLedgerTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := tx.LockAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != requesterID {
		return nil, apperrors.ErrNotOwner
	}
	if _, err := tx.AdjustBalance(ctx, accountNumber, -amount); err != nil {
		return nil, err
	}
	if err := tx.AppendEntry(ctx, domain.Entry{
		Type:        domain.Withdrawal,
		FromAccount: accountNumber,
		ToAccount:   domain.WithdrawalSink,
		Amount:      amount,
	}); err != nil {
		return nil, err
	}

	committed, err := tx.Commit(ctx)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Withdrawal committed",
		slog.String("account_number", accountNumber),
		slog.String("amount", amount.String()),
		slog.Int64("entry_id", committed[0].ID))
	return &committed[0], nil
}

// Transfer debits the source, credits the destination and journals a single
// TRANSFER entry covering both legs. Locks are taken in lexicographic
// account-number order so two opposite-direction transfers between the same
// pair can never deadlock. If the credit fails after the debit was applied
// (e.g. the destination turned out to be closed), the debit is reversed
// before the error is returned and nothing is journaled.
func (s *transactionService) Transfer(ctx context.Context, fromAccount, toAccount string, amount domain.Money, requesterID string) (*domain.Entry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	if fromAccount == toAccount {
		return nil, apperrors.ErrSameAccount
	}
	if err := s.ensureActiveUser(ctx, requesterID); err != nil {
		return nil, err
	}

	tx, err := s.ledgerRepo.BeginLedgerTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	first, second := fromAccount, toAccount
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*domain.Account, 2)
	for _, num := range []string{first, second} {
		account, err := tx.LockAccount(ctx, num)
		if err != nil {
			return nil, err
		}
		locked[num] = account
	}
	if locked[fromAccount].OwnerID != requesterID {
		return nil, apperrors.ErrNotOwner
	}

	if _, err := tx.AdjustBalance(ctx, fromAccount, -amount); err != nil {
		return nil, err
	}
	if _, err := tx.AdjustBalance(ctx, toAccount, amount); err != nil {
		// Compensating rollback: the debit already applied, so reverse it
		// before surfacing the credit failure.
		if _, rbErr := tx.AdjustBalance(ctx, fromAccount, amount); rbErr != nil {
			s.LogError(ctx, rbErr, "FATAL: debit reversal failed after credit failure, manual reconciliation required",
				slog.String("from_account", fromAccount),
				slog.String("to_account", toAccount),
				slog.String("amount", amount.String()))
			return nil, fmt.Errorf("%w: debit reversal failed after credit failure: %v", apperrors.ErrConsistency, rbErr)
		}
		return nil, err
	}

	if err := tx.AppendEntry(ctx, domain.Entry{
		Type:        domain.Transfer,
		FromAccount: fromAccount,
		ToAccount:   toAccount,
		Amount:      amount,
	}); err != nil {
		return nil, err
	}

	committed, err := tx.Commit(ctx)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transfer committed",
		slog.String("from_account", fromAccount),
		slog.String("to_account", toAccount),
		slog.String("amount", amount.String()),
		slog.Int64("entry_id", committed[0].ID))
	return &committed[0], nil
}

// ensureActiveUser denies new operations for frozen profiles. In-flight
// operations are never aborted by a status change.
func (s *transactionService) ensureActiveUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CanPerformActions() {
		return apperrors.ErrUserLocked
	}
	return nil
}
