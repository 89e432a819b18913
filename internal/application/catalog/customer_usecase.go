// Package catalog mantiene los maestros de clientes y purezas.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	domaintcs "github.com/jhoicas/joyeria-api/internal/domain/tcs"
)

// CustomerUseCase casos de uso para clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un nuevo cliente. El PAN se guarda normalizado; si viene con formato inválido
// se rechaza solo cuando además se marca como verificado.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	pan := domaintcs.NormalizePAN(in.PAN)
	if in.PANVerified {
		if err := domaintcs.ValidatePAN(pan); err != nil {
			return nil, err
		}
	}
	gstin := strings.ToUpper(strings.TrimSpace(in.GSTIN))
	if in.IsRegisteredDealer && gstin == "" {
		return nil, fmt.Errorf("%w: comerciante registrado requiere GSTIN", domain.ErrInvalidInput)
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(in.Name),
		PAN:                pan,
		PANVerified:        in.PANVerified,
		GSTIN:              gstin,
		IsRegisteredDealer: in.IsRegisteredDealer,
		Phone:              in.Phone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(c), nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:                 c.ID,
		Name:               c.Name,
		PAN:                c.PAN,
		PANVerified:        c.PANVerified,
		GSTIN:              c.GSTIN,
		IsRegisteredDealer: c.IsRegisteredDealer,
		Phone:              c.Phone,
	}
}
