package exchange

import (
	"context"
	"time"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repositorios que toca un canje.
// Cualquier error hace rollback de todo (stock, movimientos, crédito y estado).
type TxRunner interface {
	RunExchange(ctx context.Context, fn func(
		exchanges repository.ExchangeRepository,
		stock repository.StockRepository,
		movements repository.InventoryMovementRepository,
		credits repository.CreditLedgerRepository,
	) error) error
}

// RateResolver tarifa vigente por pureza.
type RateResolver interface {
	CurrentMetalRate(ctx context.Context, purityID string, asOf time.Time) (*entity.MetalRate, error)
}
