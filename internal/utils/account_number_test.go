package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccountNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n, err := GenerateAccountNumber()
		require.NoError(t, err)
		assert.Len(t, n, 10)
		assert.True(t, strings.HasPrefix(n, AccountNumberPrefix))
		assert.True(t, IsValidAccountNumber(n))
		seen[n] = true
	}
	assert.Greater(t, len(seen), 90, "generated numbers should rarely collide")
}

func TestIsValidAccountNumber(t *testing.T) {
	assert.True(t, IsValidAccountNumber("8881234567"))
	assert.False(t, IsValidAccountNumber("888123456"))   // too short
	assert.False(t, IsValidAccountNumber("88812345678")) // too long
	assert.False(t, IsValidAccountNumber("1231234567"))  // wrong prefix
	assert.False(t, IsValidAccountNumber("888123456a"))
	assert.False(t, IsValidAccountNumber(""))
}
