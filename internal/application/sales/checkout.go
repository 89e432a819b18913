// Package sales cierra una venta: cotiza cada línea y registra el total en el ledger TCS.
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/application/pricing"
	apptcs "github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// LinePricer cotiza una línea.
type LinePricer interface {
	PriceItem(ctx context.Context, in pricing.LineInput, asOf time.Time) (*pricing.LineResult, error)
}

// SaleRecorder registra la venta en el acumulado TCS.
type SaleRecorder interface {
	RecordSale(ctx context.Context, in apptcs.SaleRecord) (*entity.TcsTransaction, error)
}

// Input venta a cerrar. SaleID vacío genera uno nuevo; Date cero = ahora.
type Input struct {
	SaleID     string
	CustomerID string
	Date       time.Time
	Lines      []pricing.LineInput
}

// Result venta cerrada.
type Result struct {
	SaleID         string
	CustomerID     string
	Date           time.Time
	Lines          []*pricing.LineResult
	SaleValue      decimal.Decimal // suma de totales con GST: base del TCS
	TcsTransaction *entity.TcsTransaction
	AmountPayable  decimal.Decimal // SaleValue + TCS
}

// CheckoutUseCase orquesta cotización y TCS.
type CheckoutUseCase struct {
	pricer LinePricer
	ledger SaleRecorder
	log    *logger.Logger
	now    func() time.Time
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(pricer LinePricer, ledger SaleRecorder, log *logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{pricer: pricer, ledger: ledger, log: log.Component("checkout"), now: time.Now}
}

// CreateSale cotiza todas las líneas antes de tocar el ledger: si alguna falla, el acumulado no cambia.
func (uc *CheckoutUseCase) CreateSale(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.CustomerID) == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: cliente y al menos una línea requeridos", domain.ErrInvalidInput)
	}
	date := in.Date
	if date.IsZero() {
		date = uc.now()
	}
	saleID := in.SaleID
	if saleID == "" {
		saleID = uuid.New().String()
	}

	lines := make([]*pricing.LineResult, 0, len(in.Lines))
	total := decimal.Zero
	for i, l := range in.Lines {
		res, err := uc.pricer.PriceItem(ctx, l, date)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		lines = append(lines, res)
		total = total.Add(res.TotalAmount)
	}
	total = money.Round2(total)
	if !total.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: el total de la venta debe ser positivo", domain.ErrInvalidInput)
	}

	txn, err := uc.ledger.RecordSale(ctx, apptcs.SaleRecord{
		CustomerID:      in.CustomerID,
		SaleID:          saleID,
		SaleAmount:      total,
		TransactionDate: date,
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("sale_id", saleID).Str("customer_id", in.CustomerID).
		Str("sale_value", total.String()).Str("tcs_amount", txn.TcsAmount.String()).Msg("venta cerrada")
	return &Result{
		SaleID:         saleID,
		CustomerID:     in.CustomerID,
		Date:           date,
		Lines:          lines,
		SaleValue:      total,
		TcsTransaction: txn,
		AmountPayable:  total.Add(txn.TcsAmount),
	}, nil
}
