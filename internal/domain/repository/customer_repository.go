package repository

import (
	"context"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// GetByID retorna (nil, nil) si no existe.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
