package domain

import "time"

// UserRole determines which API surface a user may reach.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// UserStatus is the lifecycle state of a user profile. A FROZEN user is denied
// new operations; in-flight operations are allowed to finish.
type UserStatus string

const (
	UserActive UserStatus = "ACTIVE"
	UserFrozen UserStatus = "FROZEN"
)

// User represents an authenticated owner of accounts.
type User struct {
	UserID       string     `json:"userID"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`
	// TokenVersion is embedded in issued JWTs; bumping it invalidates every
	// outstanding token for this user (forced logout).
	TokenVersion int       `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CanPerformActions reports whether the user may initiate new operations.
func (u User) CanPerformActions() bool {
	return u.Status == UserActive
}
