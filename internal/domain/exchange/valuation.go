// Package exchange valoriza piezas recibidas en canje o recompra y liquida la transacción.
package exchange

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
)

// ItemInput pieza entregada por el cliente.
type ItemInput struct {
	MetalID                      string
	PurityID                     string
	GrossWeight                  decimal.Decimal
	NetWeight                    decimal.Decimal
	MakingChargeDeductionPercent decimal.Decimal
	WastageDeductionPercent      decimal.Decimal
}

// ItemResult pieza valorizada.
type ItemResult struct {
	ItemInput
	PurityPercentage      decimal.Decimal
	PureWeight            decimal.Decimal
	CurrentRatePerGram    decimal.Decimal
	MarketValue           decimal.Decimal
	TotalDeductionPercent decimal.Decimal
	DeductionAmount       decimal.Decimal
	CreditAmount          decimal.Decimal
}

// Totals sumas del lote. Pureza y tarifa son por pieza y no se promedian.
type Totals struct {
	GrossWeight     decimal.Decimal
	NetWeight       decimal.Decimal
	PureWeight      decimal.Decimal
	MarketValue     decimal.Decimal
	DeductionAmount decimal.Decimal
	CreditAmount    decimal.Decimal
}

// Validate pesos >= 0 con hasta 3 decimales, neto <= bruto y cada deducción en 0-100.
// La suma de deducciones no se limita: si supera 100 el crédito queda en cero.
func (in ItemInput) Validate() error {
	var errs []error
	if in.MetalID == "" || in.PurityID == "" {
		errs = append(errs, errors.New("metal y pureza requeridos"))
	}
	if in.GrossWeight.IsNegative() || in.NetWeight.IsNegative() {
		errs = append(errs, errors.New("peso negativo"))
	}
	if in.NetWeight.GreaterThan(in.GrossWeight) {
		errs = append(errs, errors.New("peso neto mayor que el bruto"))
	}
	if !money.ValidPercent(in.MakingChargeDeductionPercent) {
		errs = append(errs, errors.New("deducción de elaboración fuera de 0-100"))
	}
	if !money.ValidPercent(in.WastageDeductionPercent) {
		errs = append(errs, errors.New("deducción de merma fuera de 0-100"))
	}
	if !money.FitsScale(in.GrossWeight, money.WeightScale) || !money.FitsScale(in.NetWeight, money.WeightScale) {
		errs = append(errs, errors.New("peso con más de 3 decimales"))
	}
	if !money.FitsScale(in.MakingChargeDeductionPercent, money.PercentScale) ||
		!money.FitsScale(in.WastageDeductionPercent, money.PercentScale) {
		errs = append(errs, errors.New("deducción con más de 3 decimales"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrInvalidInput}, errs...)...)
	}
	return nil
}

// ValueItem valoriza una pieza con la pureza del maestro y la tarifa vigente.
//
//	PureWeight  = NetWeight * Purity / 100
//	MarketValue = PureWeight * Rate
//	Credit      = max(0, MarketValue * (1 - TotalDeduction / 100))
func ValueItem(in ItemInput, purityPercentage, ratePerGram decimal.Decimal) (ItemResult, error) {
	if err := in.Validate(); err != nil {
		return ItemResult{}, err
	}
	if !money.ValidPercent(purityPercentage) {
		return ItemResult{}, fmt.Errorf("%w: pureza %s fuera de 0-100", domain.ErrInvalidInput, purityPercentage)
	}
	if ratePerGram.IsNegative() {
		return ItemResult{}, fmt.Errorf("%w: tarifa negativa", domain.ErrInvalidInput)
	}

	pure := money.RoundWeight(money.Percent(in.NetWeight, purityPercentage))
	market := money.Round2(pure.Mul(ratePerGram))
	totalDeduction := in.MakingChargeDeductionPercent.Add(in.WastageDeductionPercent)
	deduction := money.Round2(money.Percent(market, totalDeduction))
	if deduction.GreaterThan(market) {
		deduction = market
	}

	return ItemResult{
		ItemInput:             in,
		PurityPercentage:      purityPercentage,
		PureWeight:            pure,
		CurrentRatePerGram:    ratePerGram,
		MarketValue:           market,
		TotalDeductionPercent: totalDeduction,
		DeductionAmount:       deduction,
		CreditAmount:          money.NonNegative(market.Sub(deduction)),
	}, nil
}

// Aggregate suma pesos, valores, deducciones y créditos de todas las piezas.
func Aggregate(items []ItemResult) Totals {
	var t Totals
	for _, it := range items {
		t.GrossWeight = t.GrossWeight.Add(it.GrossWeight)
		t.NetWeight = t.NetWeight.Add(it.NetWeight)
		t.PureWeight = t.PureWeight.Add(it.PureWeight)
		t.MarketValue = t.MarketValue.Add(it.MarketValue)
		t.DeductionAmount = t.DeductionAmount.Add(it.DeductionAmount)
		t.CreditAmount = t.CreditAmount.Add(it.CreditAmount)
	}
	return t
}
