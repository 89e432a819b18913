package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/money"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

// PurityUseCase maestro de purezas.
type PurityUseCase struct {
	repo repository.PurityRepository
}

// NewPurityUseCase construye el caso de uso.
func NewPurityUseCase(repo repository.PurityRepository) *PurityUseCase {
	return &PurityUseCase{repo: repo}
}

// Upsert crea o reemplaza la pureza id. Percentage debe estar en 0-100 con hasta 3 decimales.
func (uc *PurityUseCase) Upsert(ctx context.Context, id string, in dto.UpsertPurityRequest) (*dto.PurityResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(in.MetalID) == "" {
		return nil, fmt.Errorf("%w: id y metal_id son requeridos", domain.ErrInvalidInput)
	}
	if in.Percentage.IsNegative() || in.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: percentage fuera de 0-100", domain.ErrInvalidInput)
	}
	if !money.FitsScale(in.Percentage, money.PercentScale) {
		return nil, fmt.Errorf("%w: percentage con más de 3 decimales", domain.ErrInvalidInput)
	}
	p := &entity.Purity{ID: id, MetalID: in.MetalID, Name: in.Name, Percentage: in.Percentage}
	if err := uc.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return &dto.PurityResponse{ID: p.ID, MetalID: p.MetalID, Name: p.Name, Percentage: p.Percentage}, nil
}

// GetByID obtiene una pureza.
func (uc *PurityUseCase) GetByID(ctx context.Context, id string) (*dto.PurityResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.PurityResponse{ID: p.ID, MetalID: p.MetalID, Name: p.Name, Percentage: p.Percentage}, nil
}
