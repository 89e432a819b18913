package repository

import (
	"context"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock de metal usado por metal+pureza.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	Get(ctx context.Context, metalID, purityID string) (*entity.OldGoldStock, error)
	Upsert(ctx context.Context, stock *entity.OldGoldStock) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE), creándola en cero si no existe,
	// de modo que dos transacciones sobre la misma clave siempre se serializan.
	GetForUpdate(ctx context.Context, metalID, purityID string) (*entity.OldGoldStock, error)
}
