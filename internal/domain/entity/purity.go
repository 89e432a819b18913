package entity

import "github.com/shopspring/decimal"

// Purity pureza de un metal (ej. 22K = 91.6, 18K = 75).
type Purity struct {
	ID         string
	MetalID    string
	Name       string
	Percentage decimal.Decimal // 0-100
}
