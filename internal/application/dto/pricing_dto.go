package dto

import "github.com/shopspring/decimal"

// PriceLineRequest línea a cotizar.
type PriceLineRequest struct {
	PurityID          string                `json:"purity_id" validate:"required"`
	NetMetalWeight    decimal.Decimal       `json:"net_metal_weight"`
	MakingChargeType  string                `json:"making_charge_type" validate:"required,oneof=PER_GRAM PERCENTAGE FIXED"`
	MakingChargeValue decimal.Decimal       `json:"making_charge_value"`
	WastagePercentage decimal.Decimal       `json:"wastage_percentage"`
	StoneAmount       *decimal.Decimal      `json:"stone_amount,omitempty"`
	Stone             *StoneCriteriaRequest `json:"stone,omitempty"`
	StoneQuantity     decimal.Decimal       `json:"stone_quantity"`
	Quantity          int                   `json:"quantity" validate:"min=1"`
	DiscountAmount    decimal.Decimal       `json:"discount_amount"`
	GSTPercentage     decimal.Decimal       `json:"gst_percentage"`
}

// QuoteRequest body para POST /api/pricing/quote. AsOf vacío = ahora.
type QuoteRequest struct {
	AsOf  string             `json:"as_of,omitempty"`
	Lines []PriceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PriceLineResponse desglose de una línea.
type PriceLineResponse struct {
	PurityID         string           `json:"purity_id"`
	PurityPercentage decimal.Decimal  `json:"purity_percentage"`
	RatePerGram      decimal.Decimal  `json:"rate_per_gram"`
	StoneRatePerUnit *decimal.Decimal `json:"stone_rate_per_unit,omitempty"`
	MetalAmount      decimal.Decimal  `json:"metal_amount"`
	MakingCharges    decimal.Decimal  `json:"making_charges"`
	WastageAmount    decimal.Decimal  `json:"wastage_amount"`
	StoneAmount      decimal.Decimal  `json:"stone_amount"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	TaxableAmount    decimal.Decimal  `json:"taxable_amount"`
	GSTAmount        decimal.Decimal  `json:"gst_amount"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
}

// QuoteResponse cotización completa.
type QuoteResponse struct {
	Lines       []PriceLineResponse `json:"lines"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
}

// CreateSaleRequest body para POST /api/sales. SaleID vacío genera uno.
type CreateSaleRequest struct {
	SaleID     string             `json:"sale_id,omitempty"`
	CustomerID string             `json:"customer_id" validate:"required"`
	Date       string             `json:"date,omitempty"`
	Lines      []PriceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleResponse venta cerrada con su TCS.
type SaleResponse struct {
	SaleID        string                 `json:"sale_id"`
	CustomerID    string                 `json:"customer_id"`
	Date          string                 `json:"date"`
	Lines         []PriceLineResponse    `json:"lines"`
	SaleValue     decimal.Decimal        `json:"sale_value"`
	Tcs           TcsTransactionResponse `json:"tcs"`
	AmountPayable decimal.Decimal        `json:"amount_payable"`
}
