// Package rates resuelve la tarifa vigente de metales y piedras y registra tarifas nuevas.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
	domainrates "github.com/jhoicas/joyeria-api/internal/domain/rates"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// LookupUseCase lecturas y altas de tarifas. Las lecturas no toman locks.
type LookupUseCase struct {
	repo  repository.RateRepository
	cache Cache // nil = sin caché
	cal   fiscal.Calendar
	log   *logger.Logger
	now   func() time.Time
	group singleflight.Group
}

// NewLookupUseCase construye el caso de uso. cache puede ser nil.
func NewLookupUseCase(repo repository.RateRepository, cache Cache, cal fiscal.Calendar, log *logger.Logger) *LookupUseCase {
	return &LookupUseCase{
		repo:  repo,
		cache: cache,
		cal:   cal,
		log:   log.Component("rate_lookup"),
		now:   time.Now,
	}
}

// CurrentMetalRate tarifa por gramo vigente de la pureza en asOf.
// Sin fila vigente retorna domain.ErrRateNotConfigured; nunca asume cero.
func (uc *LookupUseCase) CurrentMetalRate(ctx context.Context, purityID string, asOf time.Time) (*entity.MetalRate, error) {
	if strings.TrimSpace(purityID) == "" {
		return nil, fmt.Errorf("%w: pureza requerida", domain.ErrInvalidInput)
	}
	local := asOf.In(uc.cal.Location())
	rate, err := fetch(ctx, uc, func(ctx context.Context) (*entity.MetalRate, error) {
		return uc.repo.LatestMetalRate(ctx, purityID, local)
	}, "rates", "metal", purityID, local.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, fmt.Errorf("%w: pureza %s al %s", domain.ErrRateNotConfigured, purityID, local.Format(time.DateOnly))
	}
	return rate, nil
}

// CurrentStoneRate tarifa por unidad vigente de la piedra que cumple los criterios.
func (uc *LookupUseCase) CurrentStoneRate(ctx context.Context, criteria entity.StoneCriteria, asOf time.Time) (*entity.StoneRate, error) {
	if strings.TrimSpace(criteria.StoneID) == "" {
		return nil, fmt.Errorf("%w: piedra requerida", domain.ErrInvalidInput)
	}
	local := asOf.In(uc.cal.Location())
	rate, err := fetch(ctx, uc, func(ctx context.Context) (*entity.StoneRate, error) {
		return uc.repo.LatestStoneRate(ctx, criteria, local)
	}, "rates", "stone", criteria.StoneID, criteria.Carat.String(),
		criteria.Cut, criteria.Color, criteria.Clarity, criteria.Grade, local.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, fmt.Errorf("%w: piedra %s (%s ct) al %s", domain.ErrRateNotConfigured,
			criteria.StoneID, criteria.Carat, local.Format(time.DateOnly))
	}
	return rate, nil
}

// AddMetalRateInput alta de tarifa de metal. EffectiveDate cero = hoy.
type AddMetalRateInput struct {
	MetalID       string
	PurityID      string
	RatePerGram   decimal.Decimal
	EffectiveDate time.Time
}

// AddMetalRate agrega una fila nueva (nunca modifica las existentes) e invalida la caché.
func (uc *LookupUseCase) AddMetalRate(ctx context.Context, in AddMetalRateInput) (*entity.MetalRate, error) {
	var errs []error
	if strings.TrimSpace(in.MetalID) == "" || strings.TrimSpace(in.PurityID) == "" {
		errs = append(errs, errors.New("metal y pureza requeridos"))
	}
	if in.RatePerGram.IsNegative() {
		errs = append(errs, errors.New("tarifa por gramo negativa"))
	}
	if !money.FitsScale(in.RatePerGram, money.MoneyScale) {
		errs = append(errs, errors.New("tarifa por gramo con más de 2 decimales"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(append([]error{domain.ErrInvalidInput}, errs...)...)
	}
	now := uc.now()
	rate := &entity.MetalRate{
		MetalID:       in.MetalID,
		PurityID:      in.PurityID,
		RatePerGram:   in.RatePerGram,
		EffectiveDate: uc.effectiveDate(in.EffectiveDate, now),
		CreatedAt:     now,
	}
	if err := uc.repo.AppendMetalRate(ctx, rate); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("purity_id", rate.PurityID).Str("rate", rate.RatePerGram.String()).
		Time("effective_date", rate.EffectiveDate).Msg("tarifa de metal registrada")
	return rate, nil
}

// AddStoneRateInput alta de tarifa de piedra.
type AddStoneRateInput struct {
	Criteria      entity.StoneCriteria
	RatePerUnit   decimal.Decimal
	EffectiveDate time.Time
}

// AddStoneRate agrega una fila nueva de tarifa de piedra e invalida la caché.
func (uc *LookupUseCase) AddStoneRate(ctx context.Context, in AddStoneRateInput) (*entity.StoneRate, error) {
	var errs []error
	if strings.TrimSpace(in.Criteria.StoneID) == "" {
		errs = append(errs, errors.New("piedra requerida"))
	}
	if !in.Criteria.Carat.GreaterThan(decimal.Zero) {
		errs = append(errs, errors.New("quilates deben ser positivos"))
	}
	if in.RatePerUnit.IsNegative() {
		errs = append(errs, errors.New("tarifa por unidad negativa"))
	}
	if !money.FitsScale(in.Criteria.Carat, money.WeightScale) {
		errs = append(errs, errors.New("quilates con más de 3 decimales"))
	}
	if !money.FitsScale(in.RatePerUnit, money.MoneyScale) {
		errs = append(errs, errors.New("tarifa por unidad con más de 2 decimales"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(append([]error{domain.ErrInvalidInput}, errs...)...)
	}
	now := uc.now()
	rate := &entity.StoneRate{
		StoneID:       in.Criteria.StoneID,
		Carat:         in.Criteria.Carat,
		Cut:           in.Criteria.Cut,
		Color:         in.Criteria.Color,
		Clarity:       in.Criteria.Clarity,
		Grade:         in.Criteria.Grade,
		RatePerUnit:   in.RatePerUnit,
		EffectiveDate: uc.effectiveDate(in.EffectiveDate, now),
		CreatedAt:     now,
	}
	if err := uc.repo.AppendStoneRate(ctx, rate); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("stone_id", rate.StoneID).Str("rate", rate.RatePerUnit.String()).
		Time("effective_date", rate.EffectiveDate).Msg("tarifa de piedra registrada")
	return rate, nil
}

// effectiveDate día calendario (zona del calendario) como medianoche UTC.
func (uc *LookupUseCase) effectiveDate(t, now time.Time) time.Time {
	if t.IsZero() {
		t = now
	}
	return domainrates.DateOnly(t.In(uc.cal.Location()))
}

// storeError marca errores del store para no confundirlos con fallas de la caché.
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// fetch lee a través de la caché. Un error de caché se registra y se consulta el store;
// un error del store se propaga tal cual. Lecturas concurrentes de la misma clave se agrupan.
// Un resultado nil (sin tarifa) también se cachea y se invalida con el siguiente alta.
func fetch[T any](ctx context.Context, uc *LookupUseCase, load func(context.Context) (*T, error), parts ...string) (*T, error) {
	if uc.cache == nil {
		return load(ctx)
	}
	key, err := uc.cache.BuildKey(ctx, parts...)
	if err != nil {
		uc.log.Warn().Err(err).Msg("caché de tarifas no disponible")
		return load(ctx)
	}

	ch := uc.group.DoChan(key, func() (interface{}, error) {
		var raw json.RawMessage
		err := uc.cache.FetchJSON(ctx, key, &raw, func(ctx context.Context) (interface{}, error) {
			v, err := load(ctx)
			if err != nil {
				return nil, &storeError{err: err}
			}
			return v, nil
		})
		return raw, err
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		var se *storeError
		if errors.As(res.Err, &se) {
			return nil, se.err
		}
		uc.log.Warn().Err(res.Err).Str("key", key).Msg("error de caché, se consulta el store")
		return load(ctx)
	}
	var out *T
	if err := json.Unmarshal(res.Val.(json.RawMessage), &out); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("entrada de caché ilegible, se consulta el store")
		return load(ctx)
	}
	return out, nil
}

func (uc *LookupUseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché de tarifas")
	}
}
