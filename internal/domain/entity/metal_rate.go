package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetalRate tarifa por gramo de una pureza, vigente desde EffectiveDate.
// Las filas son solo de inserción: una tarifa nueva reemplaza a la anterior, nunca la modifica.
type MetalRate struct {
	ID            int64
	MetalID       string
	PurityID      string
	RatePerGram   decimal.Decimal
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// EffectiveOn y RowID permiten aplicar la regla de vigencia genérica.
func (r MetalRate) EffectiveOn() time.Time { return r.EffectiveDate }
func (r MetalRate) RowID() int64           { return r.ID }

// StoneRate tarifa por unidad de una piedra según sus 4C / grado.
type StoneRate struct {
	ID            int64
	StoneID       string
	Carat         decimal.Decimal
	Cut           string
	Color         string
	Clarity       string
	Grade         string
	RatePerUnit   decimal.Decimal
	EffectiveDate time.Time
	CreatedAt     time.Time
}

func (r StoneRate) EffectiveOn() time.Time { return r.EffectiveDate }
func (r StoneRate) RowID() int64           { return r.ID }

// StoneCriteria atributos que identifican una tarifa de piedra. Los vacíos no filtran.
type StoneCriteria struct {
	StoneID string
	Carat   decimal.Decimal
	Cut     string
	Color   string
	Clarity string
	Grade   string
}

// Matches indica si la tarifa corresponde a los criterios.
func (c StoneCriteria) Matches(r StoneRate) bool {
	if r.StoneID != c.StoneID || !r.Carat.Equal(c.Carat) {
		return false
	}
	return matchOptional(c.Cut, r.Cut) &&
		matchOptional(c.Color, r.Color) &&
		matchOptional(c.Clarity, r.Clarity) &&
		matchOptional(c.Grade, r.Grade)
}

func matchOptional(want, got string) bool {
	return want == "" || want == got
}
