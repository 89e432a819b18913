package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var _ repository.ExchangeRepository = (*ExchangeRepo)(nil)

// ExchangeRepo canjes y sus piezas (usable con pool o tx).
type ExchangeRepo struct {
	q Querier
}

// NewExchangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExchangeRepository(q Querier) *ExchangeRepo {
	return &ExchangeRepo{q: q}
}

// Create inserta cabecera y piezas. Llamar dentro de una transacción.
func (r *ExchangeRepo) Create(ctx context.Context, tx *entity.ExchangeTransaction) error {
	query := `
		INSERT INTO exchange_transactions
			(id, customer_id, type, status, total_gross_weight, total_net_weight, total_pure_weight,
			 total_market_value, total_deduction_amount, total_credit_amount, new_purchase_amount,
			 balance_refund, cash_payment, created_by, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.CustomerID, tx.Type, tx.Status, tx.TotalGrossWeight, tx.TotalNetWeight, tx.TotalPureWeight,
		tx.TotalMarketValue, tx.TotalDeductionAmount, tx.TotalCreditAmount, nullableDecimal(tx.NewPurchaseAmount),
		nullableDecimal(tx.BalanceRefund), nullableDecimal(tx.CashPayment), tx.CreatedBy, tx.CreatedAt, tx.UpdatedAt,
		tx.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert exchange: %w", err)
	}

	itemQuery := `
		INSERT INTO exchange_items
			(id, exchange_id, position, metal_id, purity_id, gross_weight, net_weight,
			 making_charge_deduction_percent, wastage_deduction_percent, purity_percentage, pure_weight,
			 current_rate_per_gram, market_value, total_deduction_percent, deduction_amount, credit_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	for i, it := range tx.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, tx.ID, i, it.MetalID, it.PurityID, it.GrossWeight, it.NetWeight,
			it.MakingChargeDeductionPercent, it.WastageDeductionPercent, it.PurityPercentage, it.PureWeight,
			it.CurrentRatePerGram, it.MarketValue, it.TotalDeductionPercent, it.DeductionAmount, it.CreditAmount,
		)
		if err != nil {
			return fmt.Errorf("insert exchange item: %w", err)
		}
	}
	return nil
}

const selectExchange = `
	SELECT id, customer_id, type, status, total_gross_weight, total_net_weight, total_pure_weight,
	       total_market_value, total_deduction_amount, total_credit_amount, new_purchase_amount,
	       balance_refund, cash_payment, created_by, created_at, updated_at, completed_at
	FROM exchange_transactions WHERE id = $1`

// GetByID obtiene el canje con sus piezas.
func (r *ExchangeRepo) GetByID(ctx context.Context, id string) (*entity.ExchangeTransaction, error) {
	return r.get(ctx, selectExchange, id)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE).
func (r *ExchangeRepo) GetForUpdate(ctx context.Context, id string) (*entity.ExchangeTransaction, error) {
	return r.get(ctx, selectExchange+` FOR UPDATE`, id)
}

func (r *ExchangeRepo) get(ctx context.Context, query, id string) (*entity.ExchangeTransaction, error) {
	var (
		tx                           entity.ExchangeTransaction
		newPurchase, refund, cashPay decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&tx.ID, &tx.CustomerID, &tx.Type, &tx.Status, &tx.TotalGrossWeight, &tx.TotalNetWeight, &tx.TotalPureWeight,
		&tx.TotalMarketValue, &tx.TotalDeductionAmount, &tx.TotalCreditAmount, &newPurchase,
		&refund, &cashPay, &tx.CreatedBy, &tx.CreatedAt, &tx.UpdatedAt, &tx.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exchange: %w", err)
	}
	tx.NewPurchaseAmount = fromNull(newPurchase)
	tx.BalanceRefund = fromNull(refund)
	tx.CashPayment = fromNull(cashPay)

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	tx.Items = items
	return &tx, nil
}

func (r *ExchangeRepo) items(ctx context.Context, exchangeID string) ([]*entity.ExchangeItem, error) {
	query := `
		SELECT id, exchange_id, metal_id, purity_id, gross_weight, net_weight,
		       making_charge_deduction_percent, wastage_deduction_percent, purity_percentage, pure_weight,
		       current_rate_per_gram, market_value, total_deduction_percent, deduction_amount, credit_amount
		FROM exchange_items WHERE exchange_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("list exchange items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ExchangeItem
	for rows.Next() {
		var it entity.ExchangeItem
		if err := rows.Scan(
			&it.ID, &it.ExchangeID, &it.MetalID, &it.PurityID, &it.GrossWeight, &it.NetWeight,
			&it.MakingChargeDeductionPercent, &it.WastageDeductionPercent, &it.PurityPercentage, &it.PureWeight,
			&it.CurrentRatePerGram, &it.MarketValue, &it.TotalDeductionPercent, &it.DeductionAmount, &it.CreditAmount,
		); err != nil {
			return nil, fmt.Errorf("scan exchange item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// UpdateStatus cambia estado solo si el canje sigue PENDING.
func (r *ExchangeRepo) UpdateStatus(ctx context.Context, tx *entity.ExchangeTransaction) error {
	query := `
		UPDATE exchange_transactions SET status = $2, updated_at = $3, completed_at = $4
		WHERE id = $1 AND status = 'PENDING'`
	tag, err := r.q.Exec(ctx, query, tx.ID, tx.Status, tx.UpdatedAt, tx.CompletedAt)
	if err != nil {
		return fmt.Errorf("update exchange status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: canje %s no está pendiente", domain.ErrConflict, tx.ID)
	}
	return nil
}

func fromNull(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

var _ repository.CreditLedgerRepository = (*CreditLedgerRepo)(nil)

// CreditLedgerRepo libro de crédito del cliente.
type CreditLedgerRepo struct {
	q Querier
}

// NewCreditLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditLedgerRepository(q Querier) *CreditLedgerRepo {
	return &CreditLedgerRepo{q: q}
}

// Create registra el asiento; un canje solo genera uno.
func (r *CreditLedgerRepo) Create(ctx context.Context, e *entity.CustomerCreditEntry) error {
	query := `
		INSERT INTO customer_credit_entries (id, customer_id, exchange_id, credit_amount, balance_refund, cash_payment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.CustomerID, e.ExchangeID, e.CreditAmount, e.BalanceRefund, e.CashPayment, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit entry: %w", err)
	}
	return nil
}

// ListByCustomer asientos del cliente, más antiguos primero.
func (r *CreditLedgerRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.CustomerCreditEntry, error) {
	query := `
		SELECT id, customer_id, exchange_id, credit_amount, balance_refund, cash_payment, created_at
		FROM customer_credit_entries WHERE customer_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list credit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.CustomerCreditEntry
	for rows.Next() {
		var e entity.CustomerCreditEntry
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.ExchangeID, &e.CreditAmount, &e.BalanceRefund, &e.CashPayment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
