package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := NewMoneyUSD(decimal.NewFromFloat(10.50))
		b := NewMoneyUSD(decimal.NewFromFloat(4.25))
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "14.75", sum.Amount().StringFixed(2))
	})

	t.Run("mixed currencies refuse arithmetic", func(t *testing.T) {
		usd := NewMoneyUSD(decimal.NewFromInt(10))
		eur, err := NewMoney(decimal.NewFromInt(10), EUR)
		require.NoError(t, err)
		_, err = usd.Add(eur)
		require.Error(t, err)
		_, err = usd.Subtract(eur)
		require.Error(t, err)
	})

	t.Run("multiply and round", func(t *testing.T) {
		m := NewMoneyUSD(decimal.NewFromFloat(3.333))
		got := m.Multiply(decimal.NewFromInt(3)).Round(2)
		assert.Equal(t, "10.00", got.Amount().StringFixed(2))
	})

	t.Run("negative and zero checks", func(t *testing.T) {
		assert.True(t, ZeroUSD().IsZero())
		assert.True(t, NewMoneyUSD(decimal.NewFromInt(-1)).IsNegative())
	})
}

func TestMoneyJSON(t *testing.T) {
	m, err := NewMoneyUSDFromString("19.99")
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))
}

func TestMoneySQL(t *testing.T) {
	m, err := NewMoneyUSDFromString("42.50")
	require.NoError(t, err)

	v, err := m.Value()
	require.NoError(t, err)

	var back Money
	require.NoError(t, back.Scan(v))
	assert.Equal(t, "42.50", back.Amount().StringFixed(2))
}
