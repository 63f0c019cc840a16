package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
	"github.com/sleepystack/vaulta/internal/utils"
)

// accountNumberAttempts bounds the retry loop for account number collisions.
const accountNumberAttempts = 5

// accountService manages the account lifecycle. Initial deposits are routed
// through the transaction engine so journal writing stays centralized.
type accountService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepository
	userRepo   portsrepo.UserRepository
	txnSvc     portssvc.TransactionSvcFacade
}

// NewAccountService creates the account service.
func NewAccountService(ledgerRepo portsrepo.LedgerRepository, userRepo portsrepo.UserRepository, txnSvc portssvc.TransactionSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		txnSvc:     txnSvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// OpenAccount creates an ACTIVE account with a fresh unique account number.
// A user holds at most one account per type. A positive initial deposit is
// applied through the engine, producing the corresponding DEPOSIT entry.
func (s *accountService) OpenAccount(ctx context.Context, ownerID string, req dto.OpenAccountRequest) (*domain.Account, error) {
	user, err := s.userRepo.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !user.CanPerformActions() {
		return nil, apperrors.ErrUserLocked
	}
	if req.InitialDeposit < 0 {
		return nil, fmt.Errorf("%w: initial deposit cannot be negative", apperrors.ErrValidation)
	}

	existing, err := s.ledgerRepo.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, acct := range existing {
		if acct.AccountType == req.AccountType && acct.Status == domain.AccountActive {
			return nil, fmt.Errorf("%w: user already has a %s account", apperrors.ErrValidation, req.AccountType)
		}
	}

	account := domain.Account{
		OwnerID:     ownerID,
		AccountType: req.AccountType,
		Balance:     0,
		Status:      domain.AccountActive,
		CreatedAt:   time.Now().UTC(),
	}
	for attempt := 0; ; attempt++ {
		number, err := utils.GenerateAccountNumber()
		if err != nil {
			return nil, err
		}
		account.AccountNumber = number
		err = s.ledgerRepo.SaveAccount(ctx, account)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrDuplicate) || attempt == accountNumberAttempts-1 {
			return nil, fmt.Errorf("failed to allocate account number: %w", err)
		}
	}

	if req.InitialDeposit > 0 {
		if _, err := s.txnSvc.Deposit(ctx, account.AccountNumber, req.InitialDeposit); err != nil {
			s.LogError(ctx, err, "Initial deposit failed after account creation",
				slog.String("account_number", account.AccountNumber))
			return nil, err
		}
		account.Balance = req.InitialDeposit
	}

	s.LogInfo(ctx, "Account opened",
		slog.String("account_number", account.AccountNumber),
		slog.String("account_type", string(account.AccountType)),
		slog.String("owner_id", ownerID))
	return &account, nil
}

// GetAccount fetches one account, enforcing ownership unless the caller is an
// admin.
func (s *accountService) GetAccount(ctx context.Context, accountNumber, requesterID string, admin bool) (*domain.Account, error) {
	account, err := s.ledgerRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if !admin && account.OwnerID != requesterID {
		return nil, apperrors.ErrNotOwner
	}
	return account, nil
}

// ListAccountsByOwner returns the owner's accounts in creation order.
func (s *accountService) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	user, err := s.userRepo.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !user.CanPerformActions() {
		return nil, apperrors.ErrUserLocked
	}
	return s.ledgerRepo.ListAccountsByOwner(ctx, ownerID)
}

// ListAllAccounts returns every account (admin view).
func (s *accountService) ListAllAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.ledgerRepo.ListAccounts(ctx)
}

// CloseAccount marks the account CLOSED. The balance must be exactly zero
// (ErrConflict otherwise); closing an already closed account fails with
// ErrAccountClosed. Closed accounts are retained for audit.
func (s *accountService) CloseAccount(ctx context.Context, accountNumber, requesterID string, admin bool) error {
	tx, err := s.ledgerRepo.BeginLedgerTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := tx.LockAccount(ctx, accountNumber)
	if err != nil {
		return err
	}
	if !admin && account.OwnerID != requesterID {
		return apperrors.ErrNotOwner
	}
	if err := tx.CloseAccount(ctx, accountNumber); err != nil {
		return err
	}
	if _, err := tx.Commit(ctx); err != nil {
		return err
	}

	s.LogInfo(ctx, "Account closed",
		slog.String("account_number", accountNumber),
		slog.String("requester_id", requesterID))
	return nil
}
