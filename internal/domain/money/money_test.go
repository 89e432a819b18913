package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/joyeria-api/internal/domain/money"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escalas
// ──────────────────────────────────────────────────────────────────────────────

func TestFitsScale_Casos(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   bool
	}{
		{"6000", 2, true},
		{"6000.1", 2, true},
		{"6000.10", 2, true},
		{"6000.100", 2, true},
		{"6000.125", 2, false},
		{"-0.01", 2, true},
		{"0.001", 2, false},
		{"12.345", 3, true},
		{"12.3456", 3, false},
		{"1e3", 2, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, money.FitsScale(decimal.RequireFromString(c.in), c.places))
		})
	}
}

func TestRound2_HalfUp(t *testing.T) {
	assert.True(t, decimal.RequireFromString("10.13").Equal(money.Round2(decimal.RequireFromString("10.125"))))
	assert.True(t, decimal.RequireFromString("1.235").Equal(money.RoundWeight(decimal.RequireFromString("1.2345"))))
}
