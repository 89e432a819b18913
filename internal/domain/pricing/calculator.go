// Package pricing calcula el desglose de precio de una línea de joyería vendida.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
)

// Input datos de una línea de venta. RatePerGram es la tarifa por gramo de la pureza de la
// pieza, por eso PurityPercentage no vuelve a multiplicar el valor del metal.
type Input struct {
	NetMetalWeight    decimal.Decimal
	PurityPercentage  decimal.Decimal
	MakingCharge      MakingCharge
	WastagePercentage decimal.Decimal
	StoneAmount       *decimal.Decimal // override; nil = 0 salvo que el caller valorice la piedra
	Quantity          int
	DiscountAmount    decimal.Decimal
	GSTPercentage     decimal.Decimal
}

// Result desglose calculado. Cada campo queda redondeado a 2 decimales al momento de calcularse.
type Result struct {
	RatePerGram   decimal.Decimal
	MetalAmount   decimal.Decimal
	MakingCharges decimal.Decimal
	WastageAmount decimal.Decimal
	StoneAmount   decimal.Decimal
	Subtotal      decimal.Decimal
	TaxableAmount decimal.Decimal
	GSTAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

// Validate revisa rangos: pesos y montos >= 0, porcentajes en 0-100, cantidad >= 1.
func (in Input) Validate() error {
	var errs []error
	if in.NetMetalWeight.IsNegative() {
		errs = append(errs, errors.New("peso neto negativo"))
	}
	if !money.ValidPercent(in.PurityPercentage) {
		errs = append(errs, errors.New("pureza fuera de 0-100"))
	}
	if !money.ValidPercent(in.WastagePercentage) {
		errs = append(errs, errors.New("merma fuera de 0-100"))
	}
	if !money.ValidPercent(in.GSTPercentage) {
		errs = append(errs, errors.New("GST fuera de 0-100"))
	}
	if in.Quantity < 1 {
		errs = append(errs, errors.New("cantidad menor a 1"))
	}
	if in.DiscountAmount.IsNegative() {
		errs = append(errs, errors.New("descuento negativo"))
	}
	if in.StoneAmount != nil && in.StoneAmount.IsNegative() {
		errs = append(errs, errors.New("valor de piedra negativo"))
	}
	if in.MakingCharge == nil {
		errs = append(errs, errors.New("cargo de elaboración requerido"))
	} else if err := in.MakingCharge.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrInvalidInput}, errs...)...)
	}
	return nil
}

// Calculate aplica, en orden: metal, elaboración, merma, piedra, subtotal por cantidad,
// descuento (nunca base negativa), GST y total. Es una función pura: mismo input, mismo resultado.
func Calculate(in Input, ratePerGram decimal.Decimal) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if ratePerGram.IsNegative() {
		return Result{}, fmt.Errorf("%w: tarifa negativa", domain.ErrInvalidInput)
	}

	metal := money.Round2(in.NetMetalWeight.Mul(ratePerGram))
	making := money.Round2(in.MakingCharge.amount(in.NetMetalWeight, metal))
	wastage := money.Round2(money.Percent(in.NetMetalWeight, in.WastagePercentage).Mul(ratePerGram))
	stone := decimal.Zero
	if in.StoneAmount != nil {
		stone = money.Round2(*in.StoneAmount)
	}

	// La cantidad multiplica el paquete completo por unidad (un cargo fijo es por unidad).
	perUnit := metal.Add(making).Add(wastage).Add(stone)
	subtotal := money.Round2(perUnit.Mul(decimal.NewFromInt(int64(in.Quantity))))
	taxable := money.Round2(money.NonNegative(subtotal.Sub(in.DiscountAmount)))
	gst := money.Round2(money.Percent(taxable, in.GSTPercentage))

	return Result{
		RatePerGram:   ratePerGram,
		MetalAmount:   metal,
		MakingCharges: making,
		WastageAmount: wastage,
		StoneAmount:   stone,
		Subtotal:      subtotal,
		TaxableAmount: taxable,
		GSTAmount:     gst,
		TotalAmount:   taxable.Add(gst),
	}, nil
}

// StoneValue valor de piedras según tarifa por unidad y cantidad (quilates o piezas).
func StoneValue(ratePerUnit, quantity decimal.Decimal) decimal.Decimal {
	return money.Round2(ratePerUnit.Mul(quantity))
}
