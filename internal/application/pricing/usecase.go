// Package pricing resuelve tarifas y pureza para cotizar líneas de venta.
package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	domainpricing "github.com/jhoicas/joyeria-api/internal/domain/pricing"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// RateResolver tarifas vigentes de metal y piedras.
type RateResolver interface {
	CurrentMetalRate(ctx context.Context, purityID string, asOf time.Time) (*entity.MetalRate, error)
	CurrentStoneRate(ctx context.Context, criteria entity.StoneCriteria, asOf time.Time) (*entity.StoneRate, error)
}

// LineInput línea de venta tal como llega del punto de venta.
type LineInput struct {
	PurityID          string
	NetMetalWeight    decimal.Decimal
	MakingChargeType  string // PER_GRAM | PERCENTAGE | FIXED
	MakingChargeValue decimal.Decimal
	WastagePercentage decimal.Decimal
	StoneAmount       *decimal.Decimal      // override manual
	Stone             *entity.StoneCriteria // se valoriza con la tarifa si no hay override
	StoneQuantity     decimal.Decimal
	Quantity          int
	DiscountAmount    decimal.Decimal
	GSTPercentage     decimal.Decimal
}

// LineResult desglose de la línea con la tarifa y pureza aplicadas.
type LineResult struct {
	PurityID         string
	PurityPercentage decimal.Decimal
	StoneRatePerUnit *decimal.Decimal
	domainpricing.Result
}

// UseCase cotiza líneas de joyería.
type UseCase struct {
	rates    RateResolver
	purities repository.PurityRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(rates RateResolver, purities repository.PurityRepository, log *logger.Logger) *UseCase {
	return &UseCase{rates: rates, purities: purities, log: log.Component("pricing"), now: time.Now}
}

// PriceItem calcula el desglose de la línea con la tarifa vigente en asOf (cero = ahora).
func (uc *UseCase) PriceItem(ctx context.Context, in LineInput, asOf time.Time) (*LineResult, error) {
	if strings.TrimSpace(in.PurityID) == "" {
		return nil, fmt.Errorf("%w: pureza requerida", domain.ErrInvalidInput)
	}
	if asOf.IsZero() {
		asOf = uc.now()
	}
	making, err := domainpricing.ParseMakingCharge(in.MakingChargeType, in.MakingChargeValue)
	if err != nil {
		return nil, err
	}
	purity, err := uc.purities.GetByID(ctx, in.PurityID)
	if err != nil {
		return nil, err
	}
	if purity == nil {
		return nil, fmt.Errorf("%w: pureza %s", domain.ErrNotFound, in.PurityID)
	}
	rate, err := uc.rates.CurrentMetalRate(ctx, in.PurityID, asOf)
	if err != nil {
		return nil, err
	}

	out := &LineResult{PurityID: in.PurityID, PurityPercentage: purity.Percentage}
	stone := in.StoneAmount
	if stone == nil && in.Stone != nil && in.StoneQuantity.GreaterThan(decimal.Zero) {
		sr, err := uc.rates.CurrentStoneRate(ctx, *in.Stone, asOf)
		if err != nil {
			return nil, err
		}
		v := domainpricing.StoneValue(sr.RatePerUnit, in.StoneQuantity)
		stone = &v
		perUnit := sr.RatePerUnit
		out.StoneRatePerUnit = &perUnit
	}

	res, err := domainpricing.Calculate(domainpricing.Input{
		NetMetalWeight:    in.NetMetalWeight,
		PurityPercentage:  purity.Percentage,
		MakingCharge:      making,
		WastagePercentage: in.WastagePercentage,
		StoneAmount:       stone,
		Quantity:          in.Quantity,
		DiscountAmount:    in.DiscountAmount,
		GSTPercentage:     in.GSTPercentage,
	}, rate.RatePerGram)
	if err != nil {
		return nil, err
	}
	out.Result = res
	uc.log.Debug().Str("purity_id", in.PurityID).Str("rate", rate.RatePerGram.String()).
		Str("total", res.TotalAmount.String()).Msg("línea cotizada")
	return out, nil
}
