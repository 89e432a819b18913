package repository

import (
	"context"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

// ExchangeRepository persistencia de canjes y sus piezas.
type ExchangeRepository interface {
	Create(ctx context.Context, tx *entity.ExchangeTransaction) error
	// GetByID retorna el canje con sus piezas o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.ExchangeTransaction, error)
	// GetForUpdate igual que GetByID bloqueando la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.ExchangeTransaction, error)
	UpdateStatus(ctx context.Context, tx *entity.ExchangeTransaction) error
}

// CreditLedgerRepository libro de crédito del cliente.
type CreditLedgerRepository interface {
	Create(ctx context.Context, entry *entity.CustomerCreditEntry) error
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.CustomerCreditEntry, error)
}
