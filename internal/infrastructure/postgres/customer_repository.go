package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.PurityRepository   = (*PurityRepo)(nil)
)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, name, pan, pan_verified, gstin, is_registered_dealer, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.PAN, c.PANVerified, c.GSTIN, c.IsRegisteredDealer, c.Phone, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `
		SELECT id, name, pan, pan_verified, gstin, is_registered_dealer, phone, created_at, updated_at
		FROM customers WHERE id = $1`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.PAN, &c.PANVerified, &c.GSTIN, &c.IsRegisteredDealer, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// PurityRepo maestro de purezas.
type PurityRepo struct {
	q Querier
}

// NewPurityRepository construye el adaptador.
func NewPurityRepository(q Querier) *PurityRepo {
	return &PurityRepo{q: q}
}

// GetByID obtiene una pureza por ID.
func (r *PurityRepo) GetByID(ctx context.Context, id string) (*entity.Purity, error) {
	var p entity.Purity
	err := r.q.QueryRow(ctx, `SELECT id, metal_id, name, percentage FROM purities WHERE id = $1`, id).Scan(
		&p.ID, &p.MetalID, &p.Name, &p.Percentage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purity: %w", err)
	}
	return &p, nil
}

// Upsert crea o actualiza la pureza.
func (r *PurityRepo) Upsert(ctx context.Context, p *entity.Purity) error {
	query := `
		INSERT INTO purities (id, metal_id, name, percentage) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET metal_id = EXCLUDED.metal_id, name = EXCLUDED.name, percentage = EXCLUDED.percentage`
	if _, err := r.q.Exec(ctx, query, p.ID, p.MetalID, p.Name, p.Percentage); err != nil {
		return fmt.Errorf("upsert purity: %w", err)
	}
	return nil
}
