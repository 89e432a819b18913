package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clasificación TCS de una venta (sección 206C(1H)).
const (
	TcsTypeExempted       = "EXEMPTED"        // venta exenta; suma al acumulado igual
	TcsTypeBelowThreshold = "BELOW_THRESHOLD" // acumulado del año aún dentro del umbral
	TcsTypeWithPAN        = "TCS_WITH_PAN"    // TCS 0.1% (PAN válido)
	TcsTypeWithoutPAN     = "TCS_WITHOUT_PAN" // TCS 1% (sin PAN válido)
)

// TcsCustomerYearState acumulado de ventas de un cliente en un año fiscal.
// Se crea con la primera venta del año y solo se incrementa; Version sirve al control optimista.
type TcsCustomerYearState struct {
	CustomerID           string
	FinancialYear        string // "2024-25"
	CumulativeSaleAmount decimal.Decimal
	HasValidPAN          bool
	PANNumber            string
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TcsTransaction registro inmutable de la clasificación de una venta (auditoría Form 26Q).
type TcsTransaction struct {
	ID                         string
	SaleID                     string
	CustomerID                 string
	FinancialYear              string
	Quarter                    int
	TransactionDate            time.Time
	SaleAmount                 decimal.Decimal
	CumulativeSaleAmountBefore decimal.Decimal
	TcsRate                    decimal.Decimal
	TcsAmount                  decimal.Decimal
	TcsType                    string
	IsExempted                 bool
	ExemptionReason            string
	PANNumber                  string
	CreatedAt                  time.Time
}
