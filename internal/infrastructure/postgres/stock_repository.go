package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const selectStock = `
	SELECT metal_id, purity_id, gross_weight, net_weight, pure_weight, avg_cost_per_gram, updated_at
	FROM old_gold_stock WHERE metal_id = $1 AND purity_id = $2`

// Get obtiene el stock actual de un metal y pureza.
func (r *StockRepo) Get(ctx context.Context, metalID, purityID string) (*entity.OldGoldStock, error) {
	return r.get(ctx, selectStock, metalID, purityID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// La fila se crea en cero antes de bloquearla: sin fila no hay nada que bloquear y dos
// canjes concurrentes partirían ambos de cero.
func (r *StockRepo) GetForUpdate(ctx context.Context, metalID, purityID string) (*entity.OldGoldStock, error) {
	ensure := `
		INSERT INTO old_gold_stock (metal_id, purity_id, gross_weight, net_weight, pure_weight, avg_cost_per_gram, updated_at)
		VALUES ($1, $2, 0, 0, 0, 0, now())
		ON CONFLICT (metal_id, purity_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, metalID, purityID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	return r.get(ctx, selectStock+` FOR UPDATE`, metalID, purityID)
}

func (r *StockRepo) get(ctx context.Context, query, metalID, purityID string) (*entity.OldGoldStock, error) {
	var s entity.OldGoldStock
	err := r.q.QueryRow(ctx, query, metalID, purityID).Scan(
		&s.MetalID, &s.PurityID, &s.GrossWeight, &s.NetWeight, &s.PureWeight, &s.AvgCostPerGram, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.OldGoldStock{
				MetalID: metalID, PurityID: purityID,
				GrossWeight: decimal.Zero, NetWeight: decimal.Zero, PureWeight: decimal.Zero, AvgCostPerGram: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza pesos y costo promedio (por metal y pureza).
func (r *StockRepo) Upsert(ctx context.Context, s *entity.OldGoldStock) error {
	query := `
		INSERT INTO old_gold_stock (metal_id, purity_id, gross_weight, net_weight, pure_weight, avg_cost_per_gram, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (metal_id, purity_id)
		DO UPDATE SET gross_weight = EXCLUDED.gross_weight, net_weight = EXCLUDED.net_weight,
		              pure_weight = EXCLUDED.pure_weight, avg_cost_per_gram = EXCLUDED.avg_cost_per_gram,
		              updated_at = now()`
	_, err := r.q.Exec(ctx, query, s.MetalID, s.PurityID, s.GrossWeight, s.NetWeight, s.PureWeight, s.AvgCostPerGram)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}
