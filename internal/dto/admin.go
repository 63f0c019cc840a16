package dto

import "github.com/sleepystack/vaulta/internal/core/domain"

// AdminStatsResponse aggregates system-wide figures for the admin dashboard.
type AdminStatsResponse struct {
	TotalUsers             int64        `json:"totalUsers"`
	ActiveUsers            int64        `json:"activeUsers"`
	LockedUsers            int64        `json:"lockedUsers"`
	TotalSystemBalance     domain.Money `json:"totalSystemBalance"`
	TotalTransactionsCount int64        `json:"totalTransactionsCount"`
	UserActivityRate       float64      `json:"userActivityRate"`
	AvgBalancePerUser      float64      `json:"avgBalancePerUser"`
	AvgTransactionsPerUser float64      `json:"avgTransactionsPerUser"`
}

// UserManagementResponse is the admin view of one user, including the summed
// balance of their accounts.
type UserManagementResponse struct {
	UserID       string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	Status       string       `json:"status"`
	TokenVersion int          `json:"tokenVersion"`
	TotalBalance domain.Money `json:"totalBalance"`
}

// UpdateUserStatusRequest sets a user's status explicitly.
type UpdateUserStatusRequest struct {
	Status domain.UserStatus `json:"status" binding:"required,oneof=ACTIVE FROZEN"`
}

// ResetPasswordRequest carries the temporary password an admin assigns.
type ResetPasswordRequest struct {
	TempPassword string `json:"tempPassword" binding:"required,min=8"`
}
