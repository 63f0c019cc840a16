package dto

import "github.com/sleepystack/vaulta/internal/core/domain"

// DashboardSummary is the per-user dashboard view: computed at call time from
// committed state, never cached.
type DashboardSummary struct {
	TotalBalance         domain.Money          `json:"totalBalance"`
	PrimaryAccountNumber string                `json:"primaryAccountNumber"`
	RecentTransactions   []TransactionResponse `json:"recentTransactions"`
	UserStatus           string                `json:"userStatus"`
}
