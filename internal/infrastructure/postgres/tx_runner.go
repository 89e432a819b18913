package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/joyeria-api/internal/application/exchange"
	"github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

// Ensure TxRunner implements tcs.TxRunner and exchange.TxRunner.
var _ tcs.TxRunner = (*TxRunner)(nil)
var _ exchange.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunTcs inicia una transacción con los repos de acumulado y registros TCS.
func (r *TxRunner) RunTcs(ctx context.Context, fn func(
	states repository.TcsStateRepository,
	txns repository.TcsTransactionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewTcsStateRepository(tx), NewTcsTransactionRepository(tx))
	})
}

// RunExchange inicia una transacción con los repos de canje, stock, movimientos y crédito.
func (r *TxRunner) RunExchange(ctx context.Context, fn func(
	exchanges repository.ExchangeRepository,
	stock repository.StockRepository,
	movements repository.InventoryMovementRepository,
	credits repository.CreditLedgerRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(
			NewExchangeRepository(tx),
			NewStockRepository(tx),
			NewInventoryMovementRepository(tx),
			NewCreditLedgerRepository(tx),
		)
	})
}

// run hace Commit si fn termina sin error y Rollback en cualquier otro caso.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
