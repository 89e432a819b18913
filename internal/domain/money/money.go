// Package money reúne las reglas de redondeo compartidas por los calculadores.
//
// Todos los montos se redondean a 2 decimales y los pesos a 3 (miligramos) con
// redondeo "half-up": decimal.Round redondea alejándose de cero, lo que coincide
// con half-up porque los valores redondeados nunca son negativos.
package money

import "github.com/shopspring/decimal"

// Escalas de persistencia: NUMERIC(_,2) para dinero y NUMERIC(_,3) para pesos y porcentajes.
const (
	MoneyScale   int32 = 2
	WeightScale  int32 = 3
	PercentScale int32 = 3
)

var hundred = decimal.NewFromInt(100)

// Round2 redondea un monto a 2 decimales (paise).
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// RoundWeight redondea un peso en gramos a 3 decimales.
func RoundWeight(d decimal.Decimal) decimal.Decimal { return d.Round(3) }

// Percent devuelve base * pct / 100 sin redondear.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// NonNegative recorta a cero los valores negativos.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ValidPercent indica si pct está en [0, 100].
func ValidPercent(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// FitsScale indica si d no tiene más de places decimales significativos.
// 6000.10 cabe en 2; 6000.125 no.
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Exponent() >= -places || d.Equal(d.Truncate(places))
}
