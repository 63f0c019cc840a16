package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// AccountNumberPrefix is the fixed institution prefix of every account number.
const AccountNumberPrefix = "888"

var accountNumberPattern = regexp.MustCompile(`^888\d{7}$`)

// GenerateAccountNumber produces a candidate 10-digit account number:
// the fixed prefix followed by seven random digits. Uniqueness is enforced by
// the account store; callers retry on collision.
func GenerateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return fmt.Sprintf("%s%07d", AccountNumberPrefix, n.Int64()), nil
}

// IsValidAccountNumber reports whether s has the fixed-width account number
// format. Exposed for request validation.
func IsValidAccountNumber(s string) bool {
	return accountNumberPattern.MatchString(s)
}
