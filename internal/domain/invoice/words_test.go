package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildium/backend/internal/domain/shared/valueobject"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "zéro"},
		{1, "un"},
		{9, "neuf"},
		{10, "dix"},
		{16, "seize"},
		{17, "dix-sept"},
		{20, "vingt"},
		{21, "vingt-et-un"},
		{32, "trente-deux"},
		{61, "soixante-et-un"},
		{70, "soixante-dix"},
		{71, "soixante-et-onze"},
		{79, "soixante-dix-neuf"},
		{80, "quatre-vingts"},
		{81, "quatre-vingt-un"},
		{90, "quatre-vingt-dix"},
		{91, "quatre-vingt-onze"},
		{99, "quatre-vingt-dix-neuf"},
		{100, "cent"},
		{101, "cent-un"},
		{200, "deux-cents"},
		{201, "deux-cent-un"},
		{240, "deux-cent-quarante"},
		{999, "neuf-cent-quatre-vingt-dix-neuf"},
		{1000, "mille"},
		{1001, "mille-un"},
		{2000, "deux-mille"},
		{2024, "deux-mille-vingt-quatre"},
		{80000, "quatre-vingt-mille"},
		{123456, "cent-vingt-trois-mille-quatre-cent-cinquante-six"},
		{180000, "cent-quatre-vingt-mille"},
		{200000, "deux-cent-mille"},
		{200080, "deux-cent-mille-quatre-vingts"},
		{200200, "deux-cent-mille-deux-cents"},
		{1000000, "un-million"},
		{2000000, "deux-millions"},
		{1000000000, "un-milliard"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := AmountInWords(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountInWords_NegativeRejected(t *testing.T) {
	_, err := AmountInWords(-1)
	assert.Error(t, err)
}

func TestAmountInWords_Deterministic(t *testing.T) {
	first, err := AmountInWords(987654321)
	require.NoError(t, err)
	for range 10 {
		again, err := AmountInWords(987654321)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAmountInWordsMAD(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "zéro dirham"},
		{"1", "un dirham"},
		{"240", "deux-cent-quarante dirhams"},
		{"240.50", "deux-cent-quarante dirhams et cinquante centimes"},
		{"2.01", "deux dirhams et un centime"},
		{"1500.75", "mille-cinq-cents dirhams et soixante-quinze centimes"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			m, err := valueobject.NewMoneyMADFromString(tt.amount)
			require.NoError(t, err)
			got, err := AmountInWordsMAD(m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("negative rejected", func(t *testing.T) {
		_, err := AmountInWordsMAD(valueobject.NewMoneyMAD(decimal.NewFromInt(-5)))
		assert.Error(t, err)
	})

	t.Run("foreign currency rejected", func(t *testing.T) {
		m, err := valueobject.NewMoney(decimal.NewFromInt(100), valueobject.EUR)
		require.NoError(t, err)
		_, err = AmountInWordsMAD(m)
		assert.Error(t, err)
	})
}
