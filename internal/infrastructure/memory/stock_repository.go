package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var (
	_ repository.StockRepository             = (*StockRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
)

// StockRepo stock de metal usado en memoria.
type StockRepo struct {
	s    *Store
	undo *undoLog
}

// NewStockRepository construye el repositorio fuera de transacción.
func NewStockRepository(s *Store) *StockRepo { return &StockRepo{s: s} }

// Get retorna stock en cero si no existe.
func (r *StockRepo) Get(_ context.Context, metalID, purityID string) (*entity.OldGoldStock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stock[stockKey{metalID, purityID}]
	if !ok {
		return &entity.OldGoldStock{
			MetalID:        metalID,
			PurityID:       purityID,
			GrossWeight:    decimal.Zero,
			NetWeight:      decimal.Zero,
			PureWeight:     decimal.Zero,
			AvgCostPerGram: decimal.Zero,
		}, nil
	}
	return &st, nil
}

// GetForUpdate igual que Get; el runner de canjes ya serializa.
func (r *StockRepo) GetForUpdate(ctx context.Context, metalID, purityID string) (*entity.OldGoldStock, error) {
	return r.Get(ctx, metalID, purityID)
}

// Upsert inserta o reemplaza el stock del metal y pureza.
func (r *StockRepo) Upsert(_ context.Context, st *entity.OldGoldStock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := stockKey{st.MetalID, st.PurityID}
	prev, existed := r.s.stock[key]
	r.s.stock[key] = *st
	r.undo.add(func() {
		if existed {
			r.s.stock[key] = prev
		} else {
			delete(r.s.stock, key)
		}
	})
	return nil
}

// MovementRepo movimientos de inventario en memoria.
type MovementRepo struct {
	s    *Store
	undo *undoLog
}

// NewMovementRepository construye el repositorio fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepo { return &MovementRepo{s: s} }

// Create agrega el movimiento.
func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	n := len(r.s.movements)
	r.undo.add(func() { r.s.movements = r.s.movements[:n-1] })
	return nil
}

// ListByTransaction movimientos generados por un canje.
func (r *MovementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.InventoryMovement
	for i := range r.s.movements {
		if r.s.movements[i].TransactionID == transactionID {
			m := r.s.movements[i]
			out = append(out, &m)
		}
	}
	return out, nil
}
