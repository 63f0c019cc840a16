package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that a debit would drive an account balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAccountClosed indicates that an operation targeted a closed account.
var ErrAccountClosed = errors.New("account is closed")

// ErrNotOwner indicates that the caller does not own the targeted account.
var ErrNotOwner = errors.New("caller does not own this account")

// ErrSameAccount indicates that a transfer named the same account on both sides.
var ErrSameAccount = errors.New("source and destination accounts are the same")

// ErrBusy indicates that an account lock could not be acquired within the
// configured timeout. The operation had no effect and is safe to retry.
var ErrBusy = errors.New("account busy, try again")

// ErrConflict indicates that the resource state forbids the operation,
// e.g. closing an account with a non-zero balance.
var ErrConflict = errors.New("operation conflicts with resource state")

// ErrForbidden indicates that the caller lacks the required role.
var ErrForbidden = errors.New("forbidden")

// ErrUserLocked indicates that the calling user's profile is frozen and new
// operations are denied.
var ErrUserLocked = errors.New("user profile is locked")

// ErrConsistency marks a fatal consistency fault: a partial mutation whose
// compensating rollback also failed. Must never be swallowed; requires manual
// reconciliation.
var ErrConsistency = errors.New("ledger consistency fault")
