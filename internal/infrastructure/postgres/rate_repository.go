package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var _ repository.RateRepository = (*RateRepo)(nil)

// RateRepo tarifas de metal y piedras (solo inserción, usable con pool o tx).
type RateRepo struct {
	q Querier
}

// NewRateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRateRepository(q Querier) *RateRepo {
	return &RateRepo{q: q}
}

// AppendMetalRate inserta la fila y asigna ID.
func (r *RateRepo) AppendMetalRate(ctx context.Context, rate *entity.MetalRate) error {
	query := `
		INSERT INTO metal_rates (metal_id, purity_id, rate_per_gram, effective_date, created_at)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		rate.MetalID, rate.PurityID, rate.RatePerGram, dateParam(rate.EffectiveDate), rate.CreatedAt,
	).Scan(&rate.ID)
	if err != nil {
		return fmt.Errorf("insert metal rate: %w", err)
	}
	return nil
}

// LatestMetalRate vigencia máxima <= asOf (fecha en la zona de asOf); desempate por ID mayor.
func (r *RateRepo) LatestMetalRate(ctx context.Context, purityID string, asOf time.Time) (*entity.MetalRate, error) {
	query := `
		SELECT id, metal_id, purity_id, rate_per_gram, effective_date, created_at
		FROM metal_rates
		WHERE purity_id = $1 AND effective_date <= $2::date
		ORDER BY effective_date DESC, id DESC
		LIMIT 1`
	var m entity.MetalRate
	err := r.q.QueryRow(ctx, query, purityID, dateParam(asOf)).Scan(
		&m.ID, &m.MetalID, &m.PurityID, &m.RatePerGram, &m.EffectiveDate, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest metal rate: %w", err)
	}
	return &m, nil
}

// AppendStoneRate inserta la fila y asigna ID.
func (r *RateRepo) AppendStoneRate(ctx context.Context, rate *entity.StoneRate) error {
	query := `
		INSERT INTO stone_rates (stone_id, carat, cut, color, clarity, grade, rate_per_unit, effective_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		rate.StoneID, rate.Carat, rate.Cut, rate.Color, rate.Clarity, rate.Grade,
		rate.RatePerUnit, dateParam(rate.EffectiveDate), rate.CreatedAt,
	).Scan(&rate.ID)
	if err != nil {
		return fmt.Errorf("insert stone rate: %w", err)
	}
	return nil
}

// LatestStoneRate igual que LatestMetalRate; los criterios vacíos no filtran.
func (r *RateRepo) LatestStoneRate(ctx context.Context, c entity.StoneCriteria, asOf time.Time) (*entity.StoneRate, error) {
	query := `
		SELECT id, stone_id, carat, cut, color, clarity, grade, rate_per_unit, effective_date, created_at
		FROM stone_rates
		WHERE stone_id = $1 AND carat = $2
		  AND ($3 = '' OR cut = $3)
		  AND ($4 = '' OR color = $4)
		  AND ($5 = '' OR clarity = $5)
		  AND ($6 = '' OR grade = $6)
		  AND effective_date <= $7::date
		ORDER BY effective_date DESC, id DESC
		LIMIT 1`
	var s entity.StoneRate
	err := r.q.QueryRow(ctx, query,
		c.StoneID, c.Carat, c.Cut, c.Color, c.Clarity, c.Grade, dateParam(asOf),
	).Scan(
		&s.ID, &s.StoneID, &s.Carat, &s.Cut, &s.Color, &s.Clarity, &s.Grade,
		&s.RatePerUnit, &s.EffectiveDate, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest stone rate: %w", err)
	}
	return &s, nil
}
