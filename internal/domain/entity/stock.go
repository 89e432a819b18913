package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OldGoldStock existencias de metal recibido por canje o recompra, por metal y pureza.
// Pesos en gramos.
type OldGoldStock struct {
	MetalID     string
	PurityID    string
	GrossWeight decimal.Decimal
	NetWeight   decimal.Decimal
	PureWeight  decimal.Decimal
	// AvgCostPerGram costo promedio ponderado por gramo puro (crédito pagado / peso puro).
	AvgCostPerGram decimal.Decimal
	UpdatedAt      time.Time
}
