package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyIsValid(t *testing.T) {
	for _, c := range []Currency{USD, EUR, GBP, CAD, AUD, JPY} {
		assert.True(t, c.IsValid(), string(c))
	}
	assert.False(t, Currency("XXX").IsValid())
	assert.False(t, Currency("").IsValid())
}

func TestDefaultCurrencyIsUSD(t *testing.T) {
	assert.Equal(t, USD, DefaultCurrency)
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestNewMoneyUSD(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(50.00))
	assert.Equal(t, USD, m.Currency())

	m = NewMoneyUSDFromFloat(19.99)
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(19.99)))

	m, err := NewMoneyUSDFromString("7.25")
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(7.25)))
}

func TestZero(t *testing.T) {
	assert.True(t, Zero(EUR).IsZero())
	z := ZeroUSD()
	assert.True(t, z.IsZero())
	assert.Equal(t, USD, z.Currency())
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyUSDFromFloat(100)
	b := NewMoneyUSDFromFloat(40)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(140)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(60)))

	doubled := a.Multiply(decimal.NewFromInt(2))
	assert.True(t, doubled.Amount().Equal(decimal.NewFromInt(200)))
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	usd := NewMoneyUSDFromFloat(10)
	eur := Zero(EUR)

	_, err := usd.Add(eur)
	assert.Error(t, err)

	_, err = usd.Subtract(eur)
	assert.Error(t, err)

	_, err = usd.LessThan(eur)
	assert.Error(t, err)
}

func TestMoneyComparisons(t *testing.T) {
	small := NewMoneyUSDFromFloat(5)
	big := NewMoneyUSDFromFloat(10)

	less, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, greater)

	gte, err := big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, small.Equals(NewMoneyUSDFromFloat(5)))
	assert.False(t, small.Equals(big))
}

func TestCalculatePercentage(t *testing.T) {
	m := NewMoneyUSDFromFloat(100)
	tax := m.CalculatePercentage(decimal.NewFromInt(10))
	assert.True(t, tax.Amount().Equal(decimal.NewFromInt(10)))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyUSDFromFloat(99.99)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var parsed Money
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, m.Equals(parsed))
}
