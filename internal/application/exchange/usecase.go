// Package exchange valoriza, registra y liquida canjes y recompras de metal usado.
package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	domainexchange "github.com/jhoicas/joyeria-api/internal/domain/exchange"
	"github.com/jhoicas/joyeria-api/internal/domain/inventory"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// Input solicitud de valoración o registro de un canje.
type Input struct {
	CustomerID        string
	Type              string // EXCHANGE | BUYBACK
	Items             []domainexchange.ItemInput
	NewPurchaseAmount *decimal.Decimal
	AsOf              time.Time // fecha de la tarifa; cero = ahora
}

// Valuation resultado del cálculo: piezas valorizadas, totales y liquidación.
type Valuation struct {
	Items      []domainexchange.ItemResult
	Totals     domainexchange.Totals
	Settlement domainexchange.Settlement
}

// UseCase casos de uso de canje: calcular, crear, consultar, completar y cancelar.
type UseCase struct {
	txRunner  TxRunner
	exchanges repository.ExchangeRepository
	purities  repository.PurityRepository
	rates     RateResolver
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	exchanges repository.ExchangeRepository,
	purities repository.PurityRepository,
	rates RateResolver,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		exchanges: exchanges,
		purities:  purities,
		rates:     rates,
		log:       log.Component("exchange"),
		now:       time.Now,
	}
}

// Calculate valoriza las piezas con la tarifa vigente y liquida. No persiste nada.
func (uc *UseCase) Calculate(ctx context.Context, in Input) (*Valuation, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el canje requiere al menos una pieza", domain.ErrInvalidInput)
	}
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = uc.now()
	}

	results := make([]domainexchange.ItemResult, 0, len(in.Items))
	for i, item := range in.Items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("pieza %d: %w", i+1, err)
		}
		purity, err := uc.purities.GetByID(ctx, item.PurityID)
		if err != nil {
			return nil, err
		}
		if purity == nil {
			return nil, fmt.Errorf("%w: pureza %s", domain.ErrNotFound, item.PurityID)
		}
		if purity.MetalID != item.MetalID {
			return nil, fmt.Errorf("%w: la pureza %s no corresponde al metal %s", domain.ErrInvalidInput, item.PurityID, item.MetalID)
		}
		rate, err := uc.rates.CurrentMetalRate(ctx, item.PurityID, asOf)
		if err != nil {
			return nil, err
		}
		res, err := domainexchange.ValueItem(item, purity.Percentage, rate.RatePerGram)
		if err != nil {
			return nil, fmt.Errorf("pieza %d: %w", i+1, err)
		}
		results = append(results, res)
	}

	totals := domainexchange.Aggregate(results)
	settlement, err := domainexchange.Settle(in.Type, totals.CreditAmount, in.NewPurchaseAmount)
	if err != nil {
		return nil, err
	}
	return &Valuation{Items: results, Totals: totals, Settlement: settlement}, nil
}

// Create valoriza y guarda el canje en estado PENDING.
func (uc *UseCase) Create(ctx context.Context, userID string, in Input) (*entity.ExchangeTransaction, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("%w: cliente requerido", domain.ErrInvalidInput)
	}
	val, err := uc.Calculate(ctx, in)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	tx := &entity.ExchangeTransaction{
		ID:                   uuid.New().String(),
		CustomerID:           in.CustomerID,
		Type:                 in.Type,
		Status:               entity.ExchangeStatusPending,
		TotalGrossWeight:     val.Totals.GrossWeight,
		TotalNetWeight:       val.Totals.NetWeight,
		TotalPureWeight:      val.Totals.PureWeight,
		TotalMarketValue:     val.Totals.MarketValue,
		TotalDeductionAmount: val.Totals.DeductionAmount,
		TotalCreditAmount:    val.Totals.CreditAmount,
		NewPurchaseAmount:    val.Settlement.NewPurchaseAmount,
		BalanceRefund:        val.Settlement.BalanceRefund,
		CashPayment:          val.Settlement.CashPayment,
		CreatedBy:            userID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, r := range val.Items {
		tx.Items = append(tx.Items, &entity.ExchangeItem{
			ID:                           uuid.New().String(),
			ExchangeID:                   tx.ID,
			MetalID:                      r.MetalID,
			PurityID:                     r.PurityID,
			GrossWeight:                  r.GrossWeight,
			NetWeight:                    r.NetWeight,
			MakingChargeDeductionPercent: r.MakingChargeDeductionPercent,
			WastageDeductionPercent:      r.WastageDeductionPercent,
			PurityPercentage:             r.PurityPercentage,
			PureWeight:                   r.PureWeight,
			CurrentRatePerGram:           r.CurrentRatePerGram,
			MarketValue:                  r.MarketValue,
			TotalDeductionPercent:        r.TotalDeductionPercent,
			DeductionAmount:              r.DeductionAmount,
			CreditAmount:                 r.CreditAmount,
		})
	}

	err = uc.txRunner.RunExchange(ctx, func(
		exchanges repository.ExchangeRepository,
		_ repository.StockRepository,
		_ repository.InventoryMovementRepository,
		_ repository.CreditLedgerRepository,
	) error {
		return exchanges.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("exchange_id", tx.ID).Str("customer_id", tx.CustomerID).Str("type", tx.Type).
		Str("total_credit", tx.TotalCreditAmount.String()).Msg("canje registrado")
	return tx, nil
}

// Get canje con sus piezas; ErrNotFound si no existe.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.ExchangeTransaction, error) {
	tx, err := uc.exchanges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: canje %s", domain.ErrNotFound, id)
	}
	return tx, nil
}

// Complete pasa el canje a COMPLETED: ingresa las piezas al stock de metal usado con su
// movimiento y registra el crédito del cliente. Todo o nada.
func (uc *UseCase) Complete(ctx context.Context, id, userID string) (*entity.ExchangeTransaction, error) {
	var out *entity.ExchangeTransaction
	err := uc.txRunner.RunExchange(ctx, func(
		exchanges repository.ExchangeRepository,
		stock repository.StockRepository,
		movements repository.InventoryMovementRepository,
		credits repository.CreditLedgerRepository,
	) error {
		tx, err := exchanges.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return fmt.Errorf("%w: canje %s", domain.ErrNotFound, id)
		}
		if err := domainexchange.ValidateTransition(tx.Status, entity.ExchangeStatusCompleted); err != nil {
			return err
		}

		now := uc.now()
		movType := entity.MovementTypeExchangeIN
		if tx.Type == entity.ExchangeTypeBuyback {
			movType = entity.MovementTypeBuybackIN
		}
		for _, item := range tx.Items {
			st, err := stock.GetForUpdate(ctx, item.MetalID, item.PurityID)
			if err != nil {
				return err
			}
			unitCost := inventory.UnitCost(item.CreditAmount, item.PureWeight)
			st.AvgCostPerGram = inventory.CostCalculator(st.PureWeight, st.AvgCostPerGram, item.PureWeight, unitCost)
			st.GrossWeight = st.GrossWeight.Add(item.GrossWeight)
			st.NetWeight = st.NetWeight.Add(item.NetWeight)
			st.PureWeight = st.PureWeight.Add(item.PureWeight)
			st.UpdatedAt = now
			if err := stock.Upsert(ctx, st); err != nil {
				return err
			}
			if err := movements.Create(ctx, &entity.InventoryMovement{
				ID:            uuid.New().String(),
				TransactionID: tx.ID,
				MetalID:       item.MetalID,
				PurityID:      item.PurityID,
				Type:          movType,
				GrossWeight:   item.GrossWeight,
				NetWeight:     item.NetWeight,
				PureWeight:    item.PureWeight,
				UnitCost:      unitCost,
				TotalCost:     item.CreditAmount,
				Date:          now,
				CreatedAt:     now,
				CreatedBy:     userID,
			}); err != nil {
				return err
			}
		}

		settlement := domainexchange.Settlement{
			Type:              tx.Type,
			TotalCreditAmount: tx.TotalCreditAmount,
			NewPurchaseAmount: tx.NewPurchaseAmount,
			BalanceRefund:     tx.BalanceRefund,
			CashPayment:       tx.CashPayment,
		}
		if err := credits.Create(ctx, &entity.CustomerCreditEntry{
			ID:            uuid.New().String(),
			CustomerID:    tx.CustomerID,
			ExchangeID:    tx.ID,
			CreditAmount:  tx.TotalCreditAmount,
			BalanceRefund: settlement.Refund(),
			CashPayment:   settlement.Cash(),
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		tx.Status = entity.ExchangeStatusCompleted
		tx.UpdatedAt = now
		tx.CompletedAt = &now
		if err := exchanges.UpdateStatus(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("exchange_id", out.ID).Str("customer_id", out.CustomerID).Msg("canje completado")
	return out, nil
}

// Cancel pasa el canje a CANCELLED sin efectos sobre stock ni crédito.
func (uc *UseCase) Cancel(ctx context.Context, id string) (*entity.ExchangeTransaction, error) {
	var out *entity.ExchangeTransaction
	err := uc.txRunner.RunExchange(ctx, func(
		exchanges repository.ExchangeRepository,
		_ repository.StockRepository,
		_ repository.InventoryMovementRepository,
		_ repository.CreditLedgerRepository,
	) error {
		tx, err := exchanges.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return fmt.Errorf("%w: canje %s", domain.ErrNotFound, id)
		}
		if err := domainexchange.ValidateTransition(tx.Status, entity.ExchangeStatusCancelled); err != nil {
			return err
		}
		tx.Status = entity.ExchangeStatusCancelled
		tx.UpdatedAt = uc.now()
		if err := exchanges.UpdateStatus(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("exchange_id", out.ID).Msg("canje cancelado")
	return out, nil
}
