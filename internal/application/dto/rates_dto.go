package dto

import "github.com/shopspring/decimal"

// UpsertPurityRequest body para PUT /api/purities/:id.
type UpsertPurityRequest struct {
	MetalID    string          `json:"metal_id" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PurityResponse pureza en respuestas.
type PurityResponse struct {
	ID         string          `json:"id"`
	MetalID    string          `json:"metal_id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CreateMetalRateRequest body para POST /api/rates/metal. EffectiveDate vacío = hoy.
type CreateMetalRateRequest struct {
	MetalID       string          `json:"metal_id" validate:"required"`
	PurityID      string          `json:"purity_id" validate:"required"`
	RatePerGram   decimal.Decimal `json:"rate_per_gram"`
	EffectiveDate string          `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// MetalRateResponse tarifa de metal.
type MetalRateResponse struct {
	ID            int64           `json:"id"`
	MetalID       string          `json:"metal_id"`
	PurityID      string          `json:"purity_id"`
	RatePerGram   decimal.Decimal `json:"rate_per_gram"`
	EffectiveDate string          `json:"effective_date"`
}

// StoneCriteriaRequest atributos de la piedra; los vacíos no filtran.
type StoneCriteriaRequest struct {
	StoneID string          `json:"stone_id" validate:"required"`
	Carat   decimal.Decimal `json:"carat"`
	Cut     string          `json:"cut,omitempty"`
	Color   string          `json:"color,omitempty"`
	Clarity string          `json:"clarity,omitempty"`
	Grade   string          `json:"grade,omitempty"`
}

// CreateStoneRateRequest body para POST /api/rates/stone.
type CreateStoneRateRequest struct {
	StoneCriteriaRequest
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	EffectiveDate string          `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// StoneRateResponse tarifa de piedra.
type StoneRateResponse struct {
	ID            int64           `json:"id"`
	StoneID       string          `json:"stone_id"`
	Carat         decimal.Decimal `json:"carat"`
	Cut           string          `json:"cut,omitempty"`
	Color         string          `json:"color,omitempty"`
	Clarity       string          `json:"clarity,omitempty"`
	Grade         string          `json:"grade,omitempty"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	EffectiveDate string          `json:"effective_date"`
}
