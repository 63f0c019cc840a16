package services

import (
	"context"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
)

// recentTransactionCount is how many entries the dashboard summary shows.
const recentTransactionCount = 5

// queryService is the read side. It computes every view at call time from
// committed state and never takes write locks.
type queryService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepository
	userRepo   portsrepo.UserRepository
}

// NewQueryService creates the read-side service.
func NewQueryService(ledgerRepo portsrepo.LedgerRepository, userRepo portsrepo.UserRepository) portssvc.QuerySvcFacade {
	return &queryService{
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
	}
}

var _ portssvc.QuerySvcFacade = (*queryService)(nil)

// Summary builds the per-user dashboard view: total balance across ACTIVE
// accounts, the primary account (first CHECKING, else first), and the most
// recent transactions across all of the user's accounts.
func (s *queryService) Summary(ctx context.Context, ownerID string) (*dto.DashboardSummary, error) {
	user, err := s.userRepo.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !user.CanPerformActions() {
		return nil, apperrors.ErrUserLocked
	}

	accounts, err := s.ledgerRepo.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var totalBalance domain.Money
	var primary string
	numbers := make([]string, 0, len(accounts))
	for _, acct := range accounts {
		numbers = append(numbers, acct.AccountNumber)
		if acct.Status == domain.AccountActive {
			totalBalance += acct.Balance
		}
		if primary == "" && acct.AccountType == domain.Checking {
			primary = acct.AccountNumber
		}
	}
	if primary == "" && len(accounts) > 0 {
		primary = accounts[0].AccountNumber
	}

	recent, err := s.ledgerRepo.ListRecentEntries(ctx, numbers, recentTransactionCount)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardSummary{
		TotalBalance:         totalBalance,
		PrimaryAccountNumber: primary,
		RecentTransactions:   dto.ToTransactionResponses(recent),
		UserStatus:           string(user.Status),
	}, nil
}

// AdminStats aggregates system-wide figures. Each account and journal entry
// is counted exactly once.
func (s *queryService) AdminStats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.ledgerRepo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	txCount, err := s.ledgerRepo.CountEntries(ctx)
	if err != nil {
		return nil, err
	}

	stats := dto.AdminStatsResponse{
		TotalUsers:             int64(len(users)),
		TotalTransactionsCount: txCount,
	}
	for _, user := range users {
		switch user.Status {
		case domain.UserActive:
			stats.ActiveUsers++
		case domain.UserFrozen:
			stats.LockedUsers++
		}
	}
	for _, acct := range accounts {
		if acct.Status == domain.AccountActive {
			stats.TotalSystemBalance += acct.Balance
		}
	}
	if stats.TotalUsers > 0 {
		stats.UserActivityRate = float64(stats.ActiveUsers) / float64(stats.TotalUsers) * 100
		stats.AvgBalancePerUser = stats.TotalSystemBalance.Decimal().InexactFloat64() / float64(stats.TotalUsers)
		stats.AvgTransactionsPerUser = float64(stats.TotalTransactionsCount) / float64(stats.TotalUsers)
	}
	return &stats, nil
}

// History pages the journal entries touching one account, newest first,
// enforcing ownership unless the caller is an admin.
func (s *queryService) History(ctx context.Context, accountNumber, requesterID string, admin bool, page, size int) (*dto.Page[dto.TransactionResponse], error) {
	account, err := s.ledgerRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if !admin && account.OwnerID != requesterID {
		return nil, apperrors.ErrNotOwner
	}

	entries, total, err := s.ledgerRepo.ListEntriesByAccount(ctx, accountNumber, size, page*size)
	if err != nil {
		return nil, err
	}
	result := dto.NewPage(dto.ToTransactionResponses(entries), page, size, total)
	return &result, nil
}

// PagedTransactions pages the whole journal, optionally filtered by entry
// type (admin view).
func (s *queryService) PagedTransactions(ctx context.Context, typeFilter *domain.EntryType, page, size int) (*dto.Page[dto.TransactionResponse], error) {
	entries, total, err := s.ledgerRepo.ListEntries(ctx, typeFilter, size, page*size)
	if err != nil {
		return nil, err
	}
	result := dto.NewPage(dto.ToTransactionResponses(entries), page, size, total)
	return &result, nil
}
