package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/application/exchange"
	"github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var (
	_ tcs.TxRunner      = (*TxRunner)(nil)
	_ exchange.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks con repositorios que registran cómo deshacer cada escritura.
// Si el callback falla se revierte todo lo escrito dentro de él.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunTcs no serializa entre claves: el CAS de versión detecta escritores concurrentes.
func (r *TxRunner) RunTcs(ctx context.Context, fn func(
	states repository.TcsStateRepository,
	txns repository.TcsTransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	undo := &undoLog{}
	if err := fn(&TcsStateRepo{s: r.s, undo: undo}, &TcsTransactionRepo{s: r.s, undo: undo}); err != nil {
		r.s.rollback(undo)
		return err
	}
	return nil
}

// RunExchange serializa las transacciones de canje entre sí.
func (r *TxRunner) RunExchange(ctx context.Context, fn func(
	exchanges repository.ExchangeRepository,
	stock repository.StockRepository,
	movements repository.InventoryMovementRepository,
	credits repository.CreditLedgerRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.exchangeMu.Lock()
	defer r.s.exchangeMu.Unlock()

	undo := &undoLog{}
	err := fn(
		&ExchangeRepo{s: r.s, undo: undo},
		&StockRepo{s: r.s, undo: undo},
		&MovementRepo{s: r.s, undo: undo},
		&CreditLedgerRepo{s: r.s, undo: undo},
	)
	if err != nil {
		r.s.rollback(undo)
		return err
	}
	return nil
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
