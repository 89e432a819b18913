package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
)

// Tipos de cargo de elaboración.
const (
	MakingChargePerGram    = "PER_GRAM"
	MakingChargePercentage = "PERCENTAGE"
	MakingChargeFixed      = "FIXED"
)

// MakingCharge cargo de elaboración. Es un tipo cerrado: solo PerGram, Percentage y Fixed lo
// implementan (método no exportado), así un tipo nuevo obliga a implementar amount y validate.
type MakingCharge interface {
	Kind() string
	Value() decimal.Decimal
	amount(netWeight, metalAmount decimal.Decimal) decimal.Decimal
	validate() error
}

// PerGram cargo por gramo de metal neto.
type PerGram struct{ Rate decimal.Decimal }

// Percentage porcentaje sobre el valor del metal.
type Percentage struct{ Percent decimal.Decimal }

// Fixed monto fijo por unidad, independiente del peso.
type Fixed struct{ Amount decimal.Decimal }

func (m PerGram) Kind() string              { return MakingChargePerGram }
func (m PerGram) Value() decimal.Decimal    { return m.Rate }
func (m Percentage) Kind() string           { return MakingChargePercentage }
func (m Percentage) Value() decimal.Decimal { return m.Percent }
func (m Fixed) Kind() string                { return MakingChargeFixed }
func (m Fixed) Value() decimal.Decimal      { return m.Amount }

func (m PerGram) amount(netWeight, _ decimal.Decimal) decimal.Decimal {
	return netWeight.Mul(m.Rate)
}

func (m Percentage) amount(_, metalAmount decimal.Decimal) decimal.Decimal {
	return money.Percent(metalAmount, m.Percent)
}

func (m Fixed) amount(_, _ decimal.Decimal) decimal.Decimal {
	return m.Amount
}

func (m PerGram) validate() error {
	if m.Rate.IsNegative() {
		return fmt.Errorf("%w: cargo por gramo negativo", domain.ErrInvalidInput)
	}
	return nil
}

func (m Percentage) validate() error {
	if !money.ValidPercent(m.Percent) {
		return fmt.Errorf("%w: porcentaje de elaboración fuera de 0-100", domain.ErrInvalidInput)
	}
	return nil
}

func (m Fixed) validate() error {
	if m.Amount.IsNegative() {
		return fmt.Errorf("%w: cargo fijo negativo", domain.ErrInvalidInput)
	}
	return nil
}

// ParseMakingCharge construye el cargo a partir del tipo (PER_GRAM | PERCENTAGE | FIXED) y su valor.
func ParseMakingCharge(kind string, value decimal.Decimal) (MakingCharge, error) {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case MakingChargePerGram:
		return PerGram{Rate: value}, nil
	case MakingChargePercentage:
		return Percentage{Percent: value}, nil
	case MakingChargeFixed:
		return Fixed{Amount: value}, nil
	}
	return nil, fmt.Errorf("%w: tipo de cargo de elaboración %q", domain.ErrInvalidInput, kind)
}
