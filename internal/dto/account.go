package dto

import (
	"time"

	"github.com/sleepystack/vaulta/internal/core/domain"
)

// OpenAccountRequest opens a new account for the authenticated user,
// optionally seeded with an initial deposit.
type OpenAccountRequest struct {
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=CHECKING SAVINGS"`
	InitialDeposit domain.Money       `json:"initialDeposit" binding:"omitempty,gte=0"`
}

// AccountResponse is the wire shape of an account. AccountNumber stays a
// string to preserve its fixed width.
type AccountResponse struct {
	AccountNumber string        `json:"accountNumber"`
	AccountType   string        `json:"accountType"`
	Balance       domain.Money  `json:"balance"`
	Status        string        `json:"status"`
	OwnerUsername string        `json:"username"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// ToAccountResponse maps a domain account to its wire shape.
func ToAccountResponse(account domain.Account, ownerUsername string) AccountResponse {
	return AccountResponse{
		AccountNumber: account.AccountNumber,
		AccountType:   string(account.AccountType),
		Balance:       account.Balance,
		Status:        string(account.Status),
		OwnerUsername: ownerUsername,
		CreatedAt:     account.CreatedAt,
	}
}

// ToAccountResponses maps a slice of accounts owned by one user.
func ToAccountResponses(accounts []domain.Account, ownerUsername string) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		out[i] = ToAccountResponse(account, ownerUsername)
	}
	return out
}

// UpdateAccountStatusRequest is the admin-side account status change.
type UpdateAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status" binding:"required,oneof=ACTIVE CLOSED"`
}
