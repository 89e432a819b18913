package tcs

import (
	"context"
	"time"

	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios TCS atados a ella.
// Si fn retorna error se hace rollback de todo lo escrito.
type TxRunner interface {
	RunTcs(ctx context.Context, fn func(
		states repository.TcsStateRepository,
		txns repository.TcsTransactionRepository,
	) error) error
}

// Exemption resultado de la política de exención.
type Exemption struct {
	Exempt bool
	Reason string
}

// ExemptionPolicy decide si las ventas a un cliente están exentas de TCS.
type ExemptionPolicy interface {
	Evaluate(ctx context.Context, customerID string, at time.Time) (Exemption, error)
}

// PANStatus estado del PAN de un cliente según el registro.
type PANStatus struct {
	HasValidPAN bool
	PAN         string
}

// PANRegistry consulta el PAN de un cliente.
type PANRegistry interface {
	Lookup(ctx context.Context, customerID string) (PANStatus, error)
}
