package money

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckScale(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		scale   int32
		wantErr bool
	}{
		{"integer", "10", 2, false},
		{"exact scale", "5.25", 2, false},
		{"trailing zeros", "1.5000", 2, false},
		{"excess digits", "1.005", 2, true},
		{"quantity four digits", "0.1234", 4, false},
		{"quantity five digits", "0.12345", 4, true},
		{"negative excess", "-3.141", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckScale(MustParse(tt.value), tt.scale)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrExcessScale))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, "2.35", Round(MustParse("2.345"), 2).StringFixed(2))
	assert.Equal(t, "-2.35", Round(MustParse("-2.345"), 2).StringFixed(2))
	assert.Equal(t, "2.34", Round(MustParse("2.3449"), 2).StringFixed(2))
}

func TestFloor(t *testing.T) {
	assert.Equal(t, "33.33", Floor(MustParse("33.3333"), 2).StringFixed(2))
	assert.Equal(t, "0.01", Floor(MustParse("0.019"), 2).StringFixed(2))
}

func TestLineAmounts(t *testing.T) {
	net := LineNet(MustParse("3"), MustParse("10.00"))
	vat := LineVat(net, MustParse("0.22"))

	assert.True(t, net.Equal(MustParse("30.00")))
	assert.True(t, vat.Equal(MustParse("6.60")))

	// 0.3333 x 0.10 = 0.03333 -> 0.03
	assert.Equal(t, "0.03", LineNet(MustParse("0.3333"), MustParse("0.10")).StringFixed(2))
	// 0.05 x 0.1 = 0.005 -> 0.01
	assert.Equal(t, "0.01", LineVat(MustParse("0.05"), MustParse("0.1")).StringFixed(2))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("12,50")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidNumber))
}

func TestSum(t *testing.T) {
	total := Sum(MustParse("0.1"), MustParse("0.2"), MustParse("0.3"))
	assert.True(t, total.Equal(MustParse("0.6")))
}
