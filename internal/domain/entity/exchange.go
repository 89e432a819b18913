package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de canje.
const (
	ExchangeTypeExchange = "EXCHANGE" // se descuenta de una compra nueva
	ExchangeTypeBuyback  = "BUYBACK"  // se liquida en efectivo
)

// Estados del canje. COMPLETED y CANCELLED son terminales.
const (
	ExchangeStatusPending   = "PENDING"
	ExchangeStatusCompleted = "COMPLETED"
	ExchangeStatusCancelled = "CANCELLED"
)

// ExchangeTransaction cabecera de un canje o recompra con su liquidación.
type ExchangeTransaction struct {
	ID                   string
	CustomerID           string
	Type                 string
	Status               string
	Items                []*ExchangeItem
	TotalGrossWeight     decimal.Decimal
	TotalNetWeight       decimal.Decimal
	TotalPureWeight      decimal.Decimal
	TotalMarketValue     decimal.Decimal
	TotalDeductionAmount decimal.Decimal
	TotalCreditAmount    decimal.Decimal
	NewPurchaseAmount    *decimal.Decimal
	BalanceRefund        *decimal.Decimal
	CashPayment          *decimal.Decimal
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CompletedAt          *time.Time
}

// ExchangeItem pieza entregada por el cliente, con su valoración.
type ExchangeItem struct {
	ID                           string
	ExchangeID                   string
	MetalID                      string
	PurityID                     string
	GrossWeight                  decimal.Decimal
	NetWeight                    decimal.Decimal
	MakingChargeDeductionPercent decimal.Decimal
	WastageDeductionPercent      decimal.Decimal
	PurityPercentage             decimal.Decimal
	PureWeight                   decimal.Decimal
	CurrentRatePerGram           decimal.Decimal
	MarketValue                  decimal.Decimal
	TotalDeductionPercent        decimal.Decimal
	DeductionAmount              decimal.Decimal
	CreditAmount                 decimal.Decimal
}

// CustomerCreditEntry asiento del libro de crédito del cliente al completar un canje.
type CustomerCreditEntry struct {
	ID            string
	CustomerID    string
	ExchangeID    string
	CreditAmount  decimal.Decimal
	BalanceRefund decimal.Decimal
	CashPayment   decimal.Decimal
	CreatedAt     time.Time
}
