package memory

import (
	"context"
	"time"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/rates"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var _ repository.RateRepository = (*RateRepo)(nil)

// RateRepo tarifas de metal y piedras en memoria (solo inserción).
type RateRepo struct{ s *Store }

// NewRateRepository construye el repositorio.
func NewRateRepository(s *Store) *RateRepo { return &RateRepo{s: s} }

// AppendMetalRate asigna el ID incremental y guarda la fila.
func (r *RateRepo) AppendMetalRate(_ context.Context, rate *entity.MetalRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRateID++
	rate.ID = r.s.nextRateID
	rate.EffectiveDate = rates.DateOnly(rate.EffectiveDate)
	r.s.metalRates = append(r.s.metalRates, *rate)
	return nil
}

// LatestMetalRate aplica la regla de vigencia sobre las filas de la pureza.
func (r *RateRepo) LatestMetalRate(_ context.Context, purityID string, asOf time.Time) (*entity.MetalRate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []entity.MetalRate
	for _, m := range r.s.metalRates {
		if m.PurityID == purityID {
			rows = append(rows, m)
		}
	}
	best, ok := rates.SelectEffective(rows, asOf)
	if !ok {
		return nil, nil
	}
	return &best, nil
}

// AppendStoneRate asigna el ID incremental y guarda la fila.
func (r *RateRepo) AppendStoneRate(_ context.Context, rate *entity.StoneRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRateID++
	rate.ID = r.s.nextRateID
	rate.EffectiveDate = rates.DateOnly(rate.EffectiveDate)
	r.s.stoneRates = append(r.s.stoneRates, *rate)
	return nil
}

// LatestStoneRate aplica la regla de vigencia sobre las filas que cumplen los criterios.
func (r *RateRepo) LatestStoneRate(_ context.Context, criteria entity.StoneCriteria, asOf time.Time) (*entity.StoneRate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []entity.StoneRate
	for _, sr := range r.s.stoneRates {
		if criteria.Matches(sr) {
			rows = append(rows, sr)
		}
	}
	best, ok := rates.SelectEffective(rows, asOf)
	if !ok {
		return nil, nil
	}
	return &best, nil
}
