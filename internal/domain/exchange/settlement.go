package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
)

// Settlement liquidación: en EXCHANGE se llena solo uno de BalanceRefund o CashPayment;
// en BUYBACK solo CashPayment.
type Settlement struct {
	Type              string
	TotalCreditAmount decimal.Decimal
	NewPurchaseAmount *decimal.Decimal
	BalanceRefund     *decimal.Decimal
	CashPayment       *decimal.Decimal
}

// Refund saldo a devolver al cliente (cero si no aplica).
func (s Settlement) Refund() decimal.Decimal { return orZero(s.BalanceRefund) }

// Cash efectivo que cambia de manos (cero si no aplica). En EXCHANGE lo paga el cliente;
// en BUYBACK lo paga la tienda.
func (s Settlement) Cash() decimal.Decimal { return orZero(s.CashPayment) }

// Settle liquida según el tipo de transacción.
func Settle(txType string, totalCredit decimal.Decimal, newPurchase *decimal.Decimal) (Settlement, error) {
	s := Settlement{Type: txType, TotalCreditAmount: totalCredit}
	switch txType {
	case entity.ExchangeTypeBuyback:
		if newPurchase != nil {
			return Settlement{}, fmt.Errorf("%w: una recompra no admite compra nueva", domain.ErrInvalidInput)
		}
		cash := totalCredit
		s.CashPayment = &cash
	case entity.ExchangeTypeExchange:
		if newPurchase == nil {
			return Settlement{}, fmt.Errorf("%w: el canje requiere el monto de la compra nueva", domain.ErrInvalidInput)
		}
		if newPurchase.IsNegative() {
			return Settlement{}, fmt.Errorf("%w: compra nueva negativa", domain.ErrInvalidInput)
		}
		if !money.FitsScale(*newPurchase, money.MoneyScale) {
			return Settlement{}, fmt.Errorf("%w: compra nueva con más de 2 decimales", domain.ErrInvalidInput)
		}
		purchase := *newPurchase
		s.NewPurchaseAmount = &purchase
		if totalCredit.GreaterThanOrEqual(purchase) {
			refund := totalCredit.Sub(purchase)
			s.BalanceRefund = &refund
		} else {
			cash := purchase.Sub(totalCredit)
			s.CashPayment = &cash
		}
	default:
		return Settlement{}, fmt.Errorf("%w: tipo de canje %q", domain.ErrInvalidInput, txType)
	}
	return s, nil
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
