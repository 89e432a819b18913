// Package tcs clasifica ventas para el Tax Collected at Source de la sección 206C(1H).
//
// El umbral es un disparador acumulado, no un tramo marginal: una vez que el acumulado del
// año fiscal supera el umbral, el TCS se aplica sobre el monto completo de la venta.
package tcs

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
)

// Rates parámetros legales del TCS.
type Rates struct {
	Threshold      decimal.Decimal // 10,00,000
	RateWithPAN    decimal.Decimal // 0.001
	RateWithoutPAN decimal.Decimal // 0.01
}

// DefaultRates valores vigentes de la sección 206C(1H).
func DefaultRates() Rates {
	return Rates{
		Threshold:      decimal.NewFromInt(1_000_000),
		RateWithPAN:    decimal.RequireFromString("0.001"),
		RateWithoutPAN: decimal.RequireFromString("0.01"),
	}
}

// Validate umbral >= 0 y tasas entre 0 y 1.
func (r Rates) Validate() error {
	one := decimal.NewFromInt(1)
	if r.Threshold.IsNegative() ||
		r.RateWithPAN.IsNegative() || r.RateWithPAN.GreaterThan(one) ||
		r.RateWithoutPAN.IsNegative() || r.RateWithoutPAN.GreaterThan(one) {
		return fmt.Errorf("%w: parámetros TCS fuera de rango", domain.ErrInvalidInput)
	}
	return nil
}

// Input datos para clasificar una venta.
type Input struct {
	CumulativeBefore decimal.Decimal
	SaleAmount       decimal.Decimal
	HasValidPAN      bool
	Exempt           bool
	ExemptionReason  string
}

// Decision resultado de la clasificación.
type Decision struct {
	Type             string
	Rate             decimal.Decimal
	Amount           decimal.Decimal
	IsExempted       bool
	ExemptionReason  string
	CumulativeBefore decimal.Decimal
	CumulativeAfter  decimal.Decimal
}

// Classify decide el tipo de TCS. El acumulado siempre crece en SaleAmount, incluso en ventas
// exentas, porque cuentan para el umbral de las ventas siguientes.
func Classify(in Input, r Rates) (Decision, error) {
	if !in.SaleAmount.GreaterThan(decimal.Zero) {
		return Decision{}, fmt.Errorf("%w: monto de venta debe ser positivo", domain.ErrInvalidInput)
	}
	if in.CumulativeBefore.IsNegative() {
		return Decision{}, fmt.Errorf("%w: acumulado negativo", domain.ErrInvalidInput)
	}
	after := in.CumulativeBefore.Add(in.SaleAmount)
	d := Decision{
		Rate:             decimal.Zero,
		Amount:           decimal.Zero,
		CumulativeBefore: in.CumulativeBefore,
		CumulativeAfter:  after,
	}
	switch {
	case in.Exempt:
		d.Type = entity.TcsTypeExempted
		d.IsExempted = true
		d.ExemptionReason = in.ExemptionReason
	case after.LessThanOrEqual(r.Threshold):
		d.Type = entity.TcsTypeBelowThreshold
	case in.HasValidPAN:
		d.Type = entity.TcsTypeWithPAN
		d.Rate = r.RateWithPAN
		d.Amount = money.Round2(in.SaleAmount.Mul(r.RateWithPAN))
	default:
		d.Type = entity.TcsTypeWithoutPAN
		d.Rate = r.RateWithoutPAN
		d.Amount = money.Round2(in.SaleAmount.Mul(r.RateWithoutPAN))
	}
	return d, nil
}
