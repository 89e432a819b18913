package repository

import (
	"context"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

// TcsStateRepository acumulado TCS por (cliente, año fiscal).
type TcsStateRepository interface {
	// Get lectura simple; (nil, nil) si el cliente no tiene ventas en el año.
	Get(ctx context.Context, customerID, financialYear string) (*entity.TcsCustomerYearState, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, customerID, financialYear string) (*entity.TcsCustomerYearState, error)
	// Create inserta el estado inicial; si ya existe retorna domain.ErrVersionConflict.
	Create(ctx context.Context, state *entity.TcsCustomerYearState) error
	// Update guarda el estado solo si la versión almacenada es expectedVersion;
	// si no, retorna domain.ErrVersionConflict. Incrementa state.Version.
	Update(ctx context.Context, state *entity.TcsCustomerYearState, expectedVersion int64) error
}

// TcsTransactionRepository registros TCS inmutables (solo inserción).
type TcsTransactionRepository interface {
	// Create inserta el registro; ErrDuplicate si el ID o el SaleID ya existen.
	Create(ctx context.Context, txn *entity.TcsTransaction) error
	// GetBySaleID registro de la venta; (nil, nil) si la venta no fue registrada.
	GetBySaleID(ctx context.Context, saleID string) (*entity.TcsTransaction, error)
	// ListByQuarter transacciones de un año fiscal y trimestre, ordenadas por fecha e ID.
	ListByQuarter(ctx context.Context, financialYear string, quarter int) ([]*entity.TcsTransaction, error)
}
