package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de metal usado.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_movements
			(id, transaction_id, metal_id, purity_id, type, gross_weight, net_weight, pure_weight,
			 unit_cost, total_cost, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.TransactionID, movement.MetalID, movement.PurityID, movement.Type,
		movement.GrossWeight, movement.NetWeight, movement.PureWeight,
		movement.UnitCost, movement.TotalCost, movement.Date, movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert inventory movement: %w", err)
	}
	return nil
}

// ListByTransaction movimientos generados por un canje, en orden de creación.
func (r *InventoryMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, transaction_id, metal_id, purity_id, type, gross_weight, net_weight, pure_weight,
		       unit_cost, total_cost, date, created_at, COALESCE(created_by, '')
		FROM inventory_movements WHERE transaction_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(
			&m.ID, &m.TransactionID, &m.MetalID, &m.PurityID, &m.Type, &m.GrossWeight, &m.NetWeight, &m.PureWeight,
			&m.UnitCost, &m.TotalCost, &m.Date, &m.CreatedAt, &m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan inventory movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
