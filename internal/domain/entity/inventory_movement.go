package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario de metal usado.
const (
	MovementTypeExchangeIN = "EXCHANGE_IN" // entrada por canje
	MovementTypeBuybackIN  = "BUYBACK_IN"  // entrada por recompra
)

// InventoryMovement representa una entrada de metal usado al stock.
type InventoryMovement struct {
	ID            string
	TransactionID string // ID del canje que originó el movimiento
	MetalID       string
	PurityID      string
	Type          string
	GrossWeight   decimal.Decimal
	NetWeight     decimal.Decimal
	PureWeight    decimal.Decimal
	UnitCost      decimal.Decimal // costo por gramo puro (crédito / peso puro)
	TotalCost     decimal.Decimal // crédito otorgado por la pieza
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
