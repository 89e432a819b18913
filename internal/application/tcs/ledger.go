// Package tcs lleva el acumulado de ventas por cliente y año fiscal y registra el TCS de cada venta.
package tcs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	domaintcs "github.com/jhoicas/joyeria-api/internal/domain/tcs"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// Config parámetros del ledger.
type Config struct {
	Rates      domaintcs.Rates
	MaxRetries int // reintentos ante conflicto de versión, además del primer intento
}

// DefaultConfig tasas legales y 5 reintentos.
func DefaultConfig() Config {
	return Config{Rates: domaintcs.DefaultRates(), MaxRetries: 5}
}

// SaleRecord venta a registrar.
type SaleRecord struct {
	CustomerID      string
	SaleID          string
	SaleAmount      decimal.Decimal
	TransactionDate time.Time
}

// Preview clasificación de una venta hipotética; no modifica el acumulado.
type Preview struct {
	CustomerID    string
	FinancialYear string
	Quarter       int
	HasValidPAN   bool
	PANNumber     string
	Decision      domaintcs.Decision
}

// Ledger registra ventas en el acumulado TCS.
//
// La lectura-incremento de (cliente, año fiscal) se serializa con un lock por clave dentro del
// proceso y con control optimista de versión en el store, que cubre varias instancias.
type Ledger struct {
	tx         TxRunner
	states     repository.TcsStateRepository
	exemptions ExemptionPolicy
	pans       PANRegistry
	cal        fiscal.Calendar
	cfg        Config
	locks      *keyedMutex
	log        *logger.Logger
	now        func() time.Time
}

// NewLedger construye el ledger. states se usa para lecturas fuera de transacción.
func NewLedger(
	tx TxRunner,
	states repository.TcsStateRepository,
	exemptions ExemptionPolicy,
	pans PANRegistry,
	cal fiscal.Calendar,
	cfg Config,
	log *logger.Logger,
) (*Ledger, error) {
	if err := cfg.Rates.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: MaxRetries negativo", domain.ErrInvalidInput)
	}
	return &Ledger{
		tx:         tx,
		states:     states,
		exemptions: exemptions,
		pans:       pans,
		cal:        cal,
		cfg:        cfg,
		locks:      newKeyedMutex(),
		log:        log.Component("tcs_ledger"),
		now:        time.Now,
	}, nil
}

// RecordSale clasifica la venta, incrementa el acumulado del año y guarda el registro inmutable.
// Una venta ya registrada con el mismo cliente y monto retorna el registro existente sin tocar
// el acumulado; el mismo SaleID con otros datos es ErrDuplicate.
func (l *Ledger) RecordSale(ctx context.Context, in SaleRecord) (*entity.TcsTransaction, error) {
	if strings.TrimSpace(in.CustomerID) == "" || strings.TrimSpace(in.SaleID) == "" {
		return nil, fmt.Errorf("%w: cliente y venta requeridos", domain.ErrInvalidInput)
	}
	if !in.SaleAmount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: monto de venta debe ser positivo", domain.ErrInvalidInput)
	}
	if !money.FitsScale(in.SaleAmount, money.MoneyScale) {
		return nil, fmt.Errorf("%w: monto de venta con más de 2 decimales", domain.ErrInvalidInput)
	}
	if in.TransactionDate.IsZero() {
		in.TransactionDate = l.now()
	}
	fy, q := l.cal.Period(in.TransactionDate)

	exemption, pan, err := l.consult(ctx, in.CustomerID, in.TransactionDate)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(in.CustomerID + "|" + fy.String())
	defer unlock()

	log := l.log.With().Str("customer_id", in.CustomerID).Str("financial_year", fy.String()).
		Str("sale_id", in.SaleID).Logger()

	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		txn, replayed, err := l.recordOnce(ctx, in, fy, q, exemption, pan)
		if err == nil && replayed {
			log.Info().Str("tcs_transaction_id", txn.ID).Msg("venta ya registrada en TCS, se devuelve el registro existente")
			return txn, nil
		}
		if err == nil {
			log.Info().Str("tcs_type", txn.TcsType).Str("tcs_amount", txn.TcsAmount.String()).
				Str("cumulative_before", txn.CumulativeSaleAmountBefore.String()).Msg("venta registrada en TCS")
			return txn, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		log.Warn().Int("attempt", attempt+1).Msg("conflicto de versión en acumulado TCS, reintentando")
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	log.Error().Int("max_retries", l.cfg.MaxRetries).Msg("reintentos agotados en acumulado TCS")
	return nil, fmt.Errorf("%w: cliente %s año %s", domain.ErrThresholdRaceDetected, in.CustomerID, fy)
}

func (l *Ledger) recordOnce(
	ctx context.Context,
	in SaleRecord,
	fy fiscal.FinancialYear,
	q fiscal.Quarter,
	exemption Exemption,
	pan PANStatus,
) (*entity.TcsTransaction, bool, error) {
	var (
		out      *entity.TcsTransaction
		replayed bool
	)
	err := l.tx.RunTcs(ctx, func(states repository.TcsStateRepository, txns repository.TcsTransactionRepository) error {
		prev, err := txns.GetBySaleID(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if prev != nil {
			if prev.CustomerID != in.CustomerID || !prev.SaleAmount.Equal(in.SaleAmount) {
				return fmt.Errorf("%w: venta %s ya registrada para el cliente %s por %s",
					domain.ErrDuplicate, in.SaleID, prev.CustomerID, prev.SaleAmount)
			}
			out, replayed = prev, true
			return nil
		}

		now := l.now()
		state, err := states.GetForUpdate(ctx, in.CustomerID, fy.String())
		if err != nil {
			return err
		}
		created := state == nil
		if created {
			state = &entity.TcsCustomerYearState{
				CustomerID:           in.CustomerID,
				FinancialYear:        fy.String(),
				CumulativeSaleAmount: decimal.Zero,
				CreatedAt:            now,
			}
		}

		decision, err := domaintcs.Classify(domaintcs.Input{
			CumulativeBefore: state.CumulativeSaleAmount,
			SaleAmount:       in.SaleAmount,
			HasValidPAN:      pan.HasValidPAN,
			Exempt:           exemption.Exempt,
			ExemptionReason:  exemption.Reason,
		}, l.cfg.Rates)
		if err != nil {
			return err
		}

		expected := state.Version
		state.CumulativeSaleAmount = decision.CumulativeAfter
		state.HasValidPAN = pan.HasValidPAN
		state.PANNumber = validPAN(pan)
		state.UpdatedAt = now
		if created {
			err = states.Create(ctx, state)
		} else {
			err = states.Update(ctx, state, expected)
		}
		if err != nil {
			return err
		}

		txn := &entity.TcsTransaction{
			ID:                         uuid.New().String(),
			SaleID:                     in.SaleID,
			CustomerID:                 in.CustomerID,
			FinancialYear:              fy.String(),
			Quarter:                    int(q),
			TransactionDate:            in.TransactionDate,
			SaleAmount:                 in.SaleAmount,
			CumulativeSaleAmountBefore: decision.CumulativeBefore,
			TcsRate:                    decision.Rate,
			TcsAmount:                  decision.Amount,
			TcsType:                    decision.Type,
			IsExempted:                 decision.IsExempted,
			ExemptionReason:            decision.ExemptionReason,
			PANNumber:                  validPAN(pan),
			CreatedAt:                  now,
		}
		if err := txns.Create(ctx, txn); err != nil {
			return err
		}
		out = txn
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, replayed, nil
}

// Preview clasifica una venta contra el acumulado actual sin escribir nada.
func (l *Ledger) Preview(ctx context.Context, customerID string, saleAmount decimal.Decimal, at time.Time) (*Preview, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: cliente requerido", domain.ErrInvalidInput)
	}
	if at.IsZero() {
		at = l.now()
	}
	fy, q := l.cal.Period(at)
	exemption, pan, err := l.consult(ctx, customerID, at)
	if err != nil {
		return nil, err
	}
	state, err := l.State(ctx, customerID, fy)
	if err != nil {
		return nil, err
	}
	decision, err := domaintcs.Classify(domaintcs.Input{
		CumulativeBefore: state.CumulativeSaleAmount,
		SaleAmount:       saleAmount,
		HasValidPAN:      pan.HasValidPAN,
		Exempt:           exemption.Exempt,
		ExemptionReason:  exemption.Reason,
	}, l.cfg.Rates)
	if err != nil {
		return nil, err
	}
	return &Preview{
		CustomerID:    customerID,
		FinancialYear: fy.String(),
		Quarter:       int(q),
		HasValidPAN:   pan.HasValidPAN,
		PANNumber:     validPAN(pan),
		Decision:      decision,
	}, nil
}

// State acumulado del cliente en el año. Sin ventas retorna un estado en cero (no persistido).
func (l *Ledger) State(ctx context.Context, customerID string, fy fiscal.FinancialYear) (*entity.TcsCustomerYearState, error) {
	state, err := l.states.Get(ctx, customerID, fy.String())
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &entity.TcsCustomerYearState{
			CustomerID:           customerID,
			FinancialYear:        fy.String(),
			CumulativeSaleAmount: decimal.Zero,
		}, nil
	}
	return state, nil
}

// consult política de exención y registro PAN. Una falla de la política nunca se asume como "no exento".
func (l *Ledger) consult(ctx context.Context, customerID string, at time.Time) (Exemption, PANStatus, error) {
	exemption, err := l.exemptions.Evaluate(ctx, customerID, at)
	if err != nil {
		l.log.Error().Err(err).Str("customer_id", customerID).Msg("falló la consulta de exención")
		return Exemption{}, PANStatus{}, fmt.Errorf("%w: %v", domain.ErrExemptionLookupFailed, err)
	}
	pan, err := l.pans.Lookup(ctx, customerID)
	if err != nil {
		return Exemption{}, PANStatus{}, err
	}
	return exemption, pan, nil
}

func validPAN(p PANStatus) string {
	if !p.HasValidPAN {
		return ""
	}
	return p.PAN
}
