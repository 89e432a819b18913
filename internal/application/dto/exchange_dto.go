package dto

import "github.com/shopspring/decimal"

// ExchangeItemRequest pieza entregada por el cliente.
type ExchangeItemRequest struct {
	MetalID                      string          `json:"metal_id" validate:"required"`
	PurityID                     string          `json:"purity_id" validate:"required"`
	GrossWeight                  decimal.Decimal `json:"gross_weight"`
	NetWeight                    decimal.Decimal `json:"net_weight"`
	MakingChargeDeductionPercent decimal.Decimal `json:"making_charge_deduction_percent"`
	WastageDeductionPercent      decimal.Decimal `json:"wastage_deduction_percent"`
}

// ExchangeRequest body para POST /api/exchanges y /api/exchanges/calculate.
type ExchangeRequest struct {
	CustomerID        string                `json:"customer_id"`
	Type              string                `json:"type" validate:"required,oneof=EXCHANGE BUYBACK"`
	Items             []ExchangeItemRequest `json:"items" validate:"required,min=1,dive"`
	NewPurchaseAmount *decimal.Decimal      `json:"new_purchase_amount,omitempty"`
	AsOf              string                `json:"as_of,omitempty"`
}

// ExchangeItemResponse pieza valorizada.
type ExchangeItemResponse struct {
	ID                           string          `json:"id,omitempty"`
	MetalID                      string          `json:"metal_id"`
	PurityID                     string          `json:"purity_id"`
	GrossWeight                  decimal.Decimal `json:"gross_weight"`
	NetWeight                    decimal.Decimal `json:"net_weight"`
	MakingChargeDeductionPercent decimal.Decimal `json:"making_charge_deduction_percent"`
	WastageDeductionPercent      decimal.Decimal `json:"wastage_deduction_percent"`
	PurityPercentage             decimal.Decimal `json:"purity_percentage"`
	PureWeight                   decimal.Decimal `json:"pure_weight"`
	CurrentRatePerGram           decimal.Decimal `json:"current_rate_per_gram"`
	MarketValue                  decimal.Decimal `json:"market_value"`
	TotalDeductionPercent        decimal.Decimal `json:"total_deduction_percent"`
	DeductionAmount              decimal.Decimal `json:"deduction_amount"`
	CreditAmount                 decimal.Decimal `json:"credit_amount"`
}

// ExchangeTotalsResponse totales y liquidación del canje.
type ExchangeTotalsResponse struct {
	TotalGrossWeight     decimal.Decimal  `json:"total_gross_weight"`
	TotalNetWeight       decimal.Decimal  `json:"total_net_weight"`
	TotalPureWeight      decimal.Decimal  `json:"total_pure_weight"`
	TotalMarketValue     decimal.Decimal  `json:"total_market_value"`
	TotalDeductionAmount decimal.Decimal  `json:"total_deduction_amount"`
	TotalCreditAmount    decimal.Decimal  `json:"total_credit_amount"`
	NewPurchaseAmount    *decimal.Decimal `json:"new_purchase_amount,omitempty"`
	BalanceRefund        *decimal.Decimal `json:"balance_refund,omitempty"`
	CashPayment          *decimal.Decimal `json:"cash_payment,omitempty"`
}

// ExchangeCalculationResponse valoración sin persistir.
type ExchangeCalculationResponse struct {
	Type  string                 `json:"type"`
	Items []ExchangeItemResponse `json:"items"`
	ExchangeTotalsResponse
}

// ExchangeResponse canje persistido.
type ExchangeResponse struct {
	ID          string                 `json:"id"`
	CustomerID  string                 `json:"customer_id"`
	Type        string                 `json:"type"`
	Status      string                 `json:"status"`
	Items       []ExchangeItemResponse `json:"items"`
	CreatedBy   string                 `json:"created_by,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	CompletedAt string                 `json:"completed_at,omitempty"`
	ExchangeTotalsResponse
}
