// Package form26q arma el resumen trimestral de TCS (Form 26Q) a partir de los registros del ledger.
package form26q

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

// Line fila del reporte, numerada desde 1 en orden de fecha e ID.
type Line struct {
	Serial          int
	TransactionID   string
	SaleID          string
	CustomerID      string
	PANNumber       string
	TransactionDate time.Time
	SaleAmount      decimal.Decimal
	TcsRate         decimal.Decimal
	TcsAmount       decimal.Decimal
	TcsType         string
	ExemptionReason string
}

// TypeSubtotal totales por clasificación TCS.
type TypeSubtotal struct {
	TcsType    string
	Count      int
	SaleAmount decimal.Decimal
	TcsAmount  decimal.Decimal
}

// Report resumen del trimestre. No incluye marcas de tiempo de generación: regenerar el mismo
// trimestre produce el mismo reporte.
type Report struct {
	FinancialYear   string
	Quarter         string
	PeriodFrom      time.Time
	PeriodTo        time.Time // exclusivo
	Lines           []Line
	TotalSaleAmount decimal.Decimal
	TotalTcsAmount  decimal.Decimal
	Count           int
	ByType          []TypeSubtotal // EXEMPTED, BELOW_THRESHOLD, TCS_WITH_PAN, TCS_WITHOUT_PAN y luego otros tipos por nombre
	DistinctPANs    []string       // ordenados
}

var typeOrder = []string{
	entity.TcsTypeExempted,
	entity.TcsTypeBelowThreshold,
	entity.TcsTypeWithPAN,
	entity.TcsTypeWithoutPAN,
}

// Aggregator solo lee; no tiene efectos.
type Aggregator struct {
	txns repository.TcsTransactionRepository
	cal  fiscal.Calendar
}

// NewAggregator construye el agregador.
func NewAggregator(txns repository.TcsTransactionRepository, cal fiscal.Calendar) *Aggregator {
	return &Aggregator{txns: txns, cal: cal}
}

// Generate arma el reporte del año fiscal y trimestre.
func (a *Aggregator) Generate(ctx context.Context, fy fiscal.FinancialYear, q fiscal.Quarter) (*Report, error) {
	rows, err := a.txns.ListByQuarter(ctx, fy.String(), int(q))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].TransactionDate.Equal(rows[j].TransactionDate) {
			return rows[i].TransactionDate.Before(rows[j].TransactionDate)
		}
		return rows[i].ID < rows[j].ID
	})

	from, to := a.cal.QuarterRange(fy, q)
	r := &Report{
		FinancialYear:   fy.String(),
		Quarter:         q.String(),
		PeriodFrom:      from,
		PeriodTo:        to,
		Lines:           make([]Line, 0, len(rows)),
		TotalSaleAmount: decimal.Zero,
		TotalTcsAmount:  decimal.Zero,
	}
	byType := make(map[string]*TypeSubtotal, len(typeOrder))
	for _, t := range typeOrder {
		byType[t] = &TypeSubtotal{TcsType: t, SaleAmount: decimal.Zero, TcsAmount: decimal.Zero}
	}
	pans := make(map[string]struct{})

	for i, t := range rows {
		r.Lines = append(r.Lines, Line{
			Serial:          i + 1,
			TransactionID:   t.ID,
			SaleID:          t.SaleID,
			CustomerID:      t.CustomerID,
			PANNumber:       t.PANNumber,
			TransactionDate: t.TransactionDate.In(a.cal.Location()),
			SaleAmount:      t.SaleAmount,
			TcsRate:         t.TcsRate,
			TcsAmount:       t.TcsAmount,
			TcsType:         t.TcsType,
			ExemptionReason: t.ExemptionReason,
		})
		r.TotalSaleAmount = r.TotalSaleAmount.Add(t.SaleAmount)
		r.TotalTcsAmount = r.TotalTcsAmount.Add(t.TcsAmount)

		sub, ok := byType[t.TcsType]
		if !ok {
			sub = &TypeSubtotal{TcsType: t.TcsType, SaleAmount: decimal.Zero, TcsAmount: decimal.Zero}
			byType[t.TcsType] = sub
		}
		sub.Count++
		sub.SaleAmount = sub.SaleAmount.Add(t.SaleAmount)
		sub.TcsAmount = sub.TcsAmount.Add(t.TcsAmount)

		if t.PANNumber != "" {
			pans[t.PANNumber] = struct{}{}
		}
	}
	r.Count = len(r.Lines)

	for _, t := range typeOrder {
		r.ByType = append(r.ByType, *byType[t])
		delete(byType, t)
	}
	// tipos fuera de typeOrder al final, por nombre
	extra := make([]string, 0, len(byType))
	for t := range byType {
		extra = append(extra, t)
	}
	sort.Strings(extra)
	for _, t := range extra {
		r.ByType = append(r.ByType, *byType[t])
	}
	r.DistinctPANs = make([]string, 0, len(pans))
	for p := range pans {
		r.DistinctPANs = append(r.DistinctPANs, p)
	}
	sort.Strings(r.DistinctPANs)
	return r, nil
}
