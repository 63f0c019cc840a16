package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleepystack/vaulta/internal/core/domain"
)

func TestMoneyFromDecimal(t *testing.T) {
	d, err := decimal.NewFromString("100.00")
	require.NoError(t, err)
	m, err := domain.MoneyFromDecimal(d)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(10000), m)

	d, err = decimal.NewFromString("0.1")
	require.NoError(t, err)
	m, err = domain.MoneyFromDecimal(d)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(10), m)

	d, err = decimal.NewFromString("1.005")
	require.NoError(t, err)
	_, err = domain.MoneyFromDecimal(d)
	assert.Error(t, err, "sub-cent amounts must be rejected")
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "100.00", domain.Money(10000).String())
	assert.Equal(t, "0.05", domain.Money(5).String())
	assert.Equal(t, "-30.00", domain.Money(-3000).String())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(domain.Money(12345))
	require.NoError(t, err)
	assert.Equal(t, "123.45", string(b), "money serializes as an unquoted two-fraction-digit number")

	var m domain.Money
	require.NoError(t, json.Unmarshal([]byte("50.00"), &m))
	assert.Equal(t, domain.Money(5000), m)

	require.NoError(t, json.Unmarshal([]byte(`"30.5"`), &m), "quoted amounts are accepted")
	assert.Equal(t, domain.Money(3050), m)

	assert.Error(t, json.Unmarshal([]byte("1.001"), &m))
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestEntryTouches(t *testing.T) {
	e := domain.Entry{Type: domain.Transfer, FromAccount: "8880000001", ToAccount: "8880000002"}
	assert.True(t, e.Touches("8880000001"))
	assert.True(t, e.Touches("8880000002"))
	assert.False(t, e.Touches("8880000003"))
}
