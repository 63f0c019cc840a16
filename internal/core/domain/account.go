package domain

import "time"

// AccountType is fixed at creation; a user holds at most one account per type.
type AccountType string

const (
	Checking AccountType = "CHECKING"
	Savings  AccountType = "SAVINGS"
)

// AccountStatus is the lifecycle state of an account. CLOSED is terminal:
// a closed account is retained for audit but never mutated again.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
)

// Account is a ledger account. Balance is never negative at any commit
// boundary; mutation happens only through the transaction engine's write path
// while the account's exclusive lock is held.
type Account struct {
	AccountNumber string        `json:"accountNumber"`
	OwnerID       string        `json:"ownerID"`
	AccountType   AccountType   `json:"accountType"`
	Balance       Money         `json:"balance"`
	Status        AccountStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	ClosedAt      *time.Time    `json:"closedAt,omitempty"`
}

// IsActive reports whether the account accepts new operations.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}
