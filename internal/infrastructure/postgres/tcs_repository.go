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
	_ repository.TcsStateRepository       = (*TcsStateRepo)(nil)
	_ repository.TcsTransactionRepository = (*TcsTransactionRepo)(nil)
)

// TcsStateRepo acumulados TCS por cliente y año fiscal (usable con pool o tx).
type TcsStateRepo struct {
	q Querier
}

// NewTcsStateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTcsStateRepository(q Querier) *TcsStateRepo {
	return &TcsStateRepo{q: q}
}

const selectTcsState = `
	SELECT customer_id, financial_year, cumulative_sale_amount, has_valid_pan, pan_number, version, created_at, updated_at
	FROM tcs_customer_year_states WHERE customer_id = $1 AND financial_year = $2`

// Get lectura simple.
func (r *TcsStateRepo) Get(ctx context.Context, customerID, financialYear string) (*entity.TcsCustomerYearState, error) {
	return r.get(ctx, selectTcsState, customerID, financialYear)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *TcsStateRepo) GetForUpdate(ctx context.Context, customerID, financialYear string) (*entity.TcsCustomerYearState, error) {
	return r.get(ctx, selectTcsState+` FOR UPDATE`, customerID, financialYear)
}

func (r *TcsStateRepo) get(ctx context.Context, query, customerID, financialYear string) (*entity.TcsCustomerYearState, error) {
	var s entity.TcsCustomerYearState
	err := r.q.QueryRow(ctx, query, customerID, financialYear).Scan(
		&s.CustomerID, &s.FinancialYear, &s.CumulativeSaleAmount, &s.HasValidPAN, &s.PANNumber,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tcs state: %w", err)
	}
	return &s, nil
}

// Create inserta con version 1. Una inserción concurrente de la misma clave gana y esta
// retorna ErrVersionConflict para que el ledger reintente leyendo la fila creada.
func (r *TcsStateRepo) Create(ctx context.Context, s *entity.TcsCustomerYearState) error {
	query := `
		INSERT INTO tcs_customer_year_states
			(customer_id, financial_year, cumulative_sale_amount, has_valid_pan, pan_number, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
		ON CONFLICT (customer_id, financial_year) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		s.CustomerID, s.FinancialYear, s.CumulativeSaleAmount, s.HasValidPAN, s.PANNumber, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tcs state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: acumulado %s/%s ya existe", domain.ErrVersionConflict, s.CustomerID, s.FinancialYear)
	}
	s.Version = 1
	return nil
}

// Update compare-and-swap sobre version.
func (r *TcsStateRepo) Update(ctx context.Context, s *entity.TcsCustomerYearState, expectedVersion int64) error {
	query := `
		UPDATE tcs_customer_year_states
		SET cumulative_sale_amount = $3, has_valid_pan = $4, pan_number = $5, version = version + 1, updated_at = $6
		WHERE customer_id = $1 AND financial_year = $2 AND version = $7`
	tag, err := r.q.Exec(ctx, query,
		s.CustomerID, s.FinancialYear, s.CumulativeSaleAmount, s.HasValidPAN, s.PANNumber, s.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update tcs state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: acumulado %s/%s versión %d", domain.ErrVersionConflict, s.CustomerID, s.FinancialYear, expectedVersion)
	}
	s.Version = expectedVersion + 1
	return nil
}

// TcsTransactionRepo registros TCS inmutables.
type TcsTransactionRepo struct {
	q Querier
}

// NewTcsTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTcsTransactionRepository(q Querier) *TcsTransactionRepo {
	return &TcsTransactionRepo{q: q}
}

// Create inserta el registro.
func (r *TcsTransactionRepo) Create(ctx context.Context, t *entity.TcsTransaction) error {
	query := `
		INSERT INTO tcs_transactions
			(id, sale_id, customer_id, financial_year, quarter, transaction_date, sale_amount,
			 cumulative_sale_amount_before, tcs_rate, tcs_amount, tcs_type, is_exempted,
			 exemption_reason, pan_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.SaleID, t.CustomerID, t.FinancialYear, t.Quarter, t.TransactionDate, t.SaleAmount,
		t.CumulativeSaleAmountBefore, t.TcsRate, t.TcsAmount, t.TcsType, t.IsExempted,
		t.ExemptionReason, t.PANNumber, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: venta %s ya registrada en TCS", domain.ErrDuplicate, t.SaleID)
		}
		return fmt.Errorf("insert tcs transaction: %w", err)
	}
	return nil
}

const selectTcsTransaction = `
	SELECT id, sale_id, customer_id, financial_year, quarter, transaction_date, sale_amount,
	       cumulative_sale_amount_before, tcs_rate, tcs_amount, tcs_type, is_exempted,
	       exemption_reason, pan_number, created_at
	FROM tcs_transactions`

func scanTcsTransaction(row pgx.Row) (*entity.TcsTransaction, error) {
	var t entity.TcsTransaction
	err := row.Scan(
		&t.ID, &t.SaleID, &t.CustomerID, &t.FinancialYear, &t.Quarter, &t.TransactionDate, &t.SaleAmount,
		&t.CumulativeSaleAmountBefore, &t.TcsRate, &t.TcsAmount, &t.TcsType, &t.IsExempted,
		&t.ExemptionReason, &t.PANNumber, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBySaleID registro de la venta o (nil, nil).
func (r *TcsTransactionRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.TcsTransaction, error) {
	t, err := scanTcsTransaction(r.q.QueryRow(ctx, selectTcsTransaction+` WHERE sale_id = $1`, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tcs transaction by sale: %w", err)
	}
	return t, nil
}

// ListByQuarter registros del trimestre ordenados por fecha e ID.
func (r *TcsTransactionRepo) ListByQuarter(ctx context.Context, financialYear string, quarter int) ([]*entity.TcsTransaction, error) {
	rows, err := r.q.Query(ctx, selectTcsTransaction+`
		WHERE financial_year = $1 AND quarter = $2
		ORDER BY transaction_date, id`, financialYear, quarter)
	if err != nil {
		return nil, fmt.Errorf("list tcs transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.TcsTransaction
	for rows.Next() {
		t, err := scanTcsTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tcs transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
