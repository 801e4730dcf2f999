package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), MAD)
		require.NoError(t, err)
		assert.Equal(t, MAD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("empty currency is rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoneyAdd(t *testing.T) {
	t.Run("same currency", func(t *testing.T) {
		a := NewMoneyMADFromFloat(10.50)
		b := NewMoneyMADFromFloat(5.25)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "15.75", sum.StringFixed(2))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		a := NewMoneyMADFromFloat(10)
		b, _ := NewMoney(decimal.NewFromInt(5), EUR)
		_, err := a.Add(b)
		assert.Error(t, err)
	})
}

func TestMoneyCalculatePercentage(t *testing.T) {
	m := NewMoneyMADFromFloat(200)
	tax := m.CalculatePercentage(decimal.NewFromInt(20))
	assert.Equal(t, "40.00", tax.StringFixed(2))
}

func TestMoneyStringFixed(t *testing.T) {
	m := NewMoneyMADFromFloat(1234.5)
	assert.Equal(t, "1234.50", m.StringFixed(2))
	assert.Equal(t, "1234.50 MAD", m.String())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyMADFromFloat(99.99)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.50"))
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.Equal(t, "42.50", m.StringFixed(2))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
