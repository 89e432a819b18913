package repository

import (
	"context"
	"time"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

// RateRepository puerto de tarifas de metal y piedras (solo inserción).
// Latest* retorna la fila vigente en asOf (vigencia máxima <= asOf, desempate por ID mayor)
// o (nil, nil) si no hay ninguna.
type RateRepository interface {
	AppendMetalRate(ctx context.Context, rate *entity.MetalRate) error
	LatestMetalRate(ctx context.Context, purityID string, asOf time.Time) (*entity.MetalRate, error)
	AppendStoneRate(ctx context.Context, rate *entity.StoneRate) error
	LatestStoneRate(ctx context.Context, criteria entity.StoneCriteria, asOf time.Time) (*entity.StoneRate, error)
}
