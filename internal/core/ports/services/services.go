// Package services defines the service facades the HTTP layer depends on.
package services

import (
	"context"

	"github.com/sleepystack/vaulta/internal/core/domain"
	"github.com/sleepystack/vaulta/internal/dto"
)

// UserSvcFacade manages user profiles and credentials.
type UserSvcFacade interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	// VerifyTokenVersion rejects tokens minted before the user's last forced
	// logout.
	VerifyTokenVersion(ctx context.Context, userID string, tokenVersion int) error
	// ChangePassword verifies the current password before applying the new
	// one and revokes outstanding sessions.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// Logout revokes every outstanding token for the user.
	Logout(ctx context.Context, userID string) error
	ListUsersForManagement(ctx context.Context) ([]dto.UserManagementResponse, error)
	ToggleUserStatus(ctx context.Context, userID string) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) error
	PromoteToAdmin(ctx context.Context, userID string) error
	ResetPassword(ctx context.Context, userID string, tempPassword string) error
	// EnsureAdminUser creates the seed admin on boot when absent.
	EnsureAdminUser(ctx context.Context, username, email, password string) error
}

// AccountSvcFacade covers the account lifecycle.
type AccountSvcFacade interface {
	OpenAccount(ctx context.Context, ownerID string, req dto.OpenAccountRequest) (*domain.Account, error)
	// GetAccount enforces ownership unless admin is set.
	GetAccount(ctx context.Context, accountNumber, requesterID string, admin bool) (*domain.Account, error)
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
	ListAllAccounts(ctx context.Context) ([]domain.Account, error)
	// CloseAccount requires a zero balance and, unless admin is set, that the
	// requester owns the account.
	CloseAccount(ctx context.Context, accountNumber, requesterID string, admin bool) error
}

// TransactionSvcFacade is the transaction engine: the sole write path for
// money movement.
type TransactionSvcFacade interface {
	Deposit(ctx context.Context, accountNumber string, amount domain.Money) (*domain.Entry, error)
	Withdraw(ctx context.Context, accountNumber string, amount domain.Money, requesterID string) (*domain.Entry, error)
	Transfer(ctx context.Context, fromAccount, toAccount string, amount domain.Money, requesterID string) (*domain.Entry, error)
}

// QuerySvcFacade is the read side. It never mutates state.
type QuerySvcFacade interface {
	Summary(ctx context.Context, ownerID string) (*dto.DashboardSummary, error)
	AdminStats(ctx context.Context) (*dto.AdminStatsResponse, error)
	History(ctx context.Context, accountNumber, requesterID string, admin bool, page, size int) (*dto.Page[dto.TransactionResponse], error)
	PagedTransactions(ctx context.Context, typeFilter *domain.EntryType, page, size int) (*dto.Page[dto.TransactionResponse], error)
}

// ServiceContainer bundles the facades for route registration.
type ServiceContainer struct {
	User        UserSvcFacade
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	Query       QuerySvcFacade
}
