package repository

import (
	"context"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

// PurityRepository maestro de purezas. GetByID retorna (nil, nil) si no existe.
type PurityRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Purity, error)
	Upsert(ctx context.Context, purity *entity.Purity) error
}
