package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var (
	_ repository.ExchangeRepository     = (*ExchangeRepo)(nil)
	_ repository.CreditLedgerRepository = (*CreditLedgerRepo)(nil)
)

// ExchangeRepo canjes en memoria. Guarda copias profundas para que el caller no comparta punteros.
type ExchangeRepo struct {
	s    *Store
	undo *undoLog
}

// NewExchangeRepository construye el repositorio fuera de transacción.
func NewExchangeRepository(s *Store) *ExchangeRepo { return &ExchangeRepo{s: s} }

// Create guarda el canje con sus piezas.
func (r *ExchangeRepo) Create(_ context.Context, tx *entity.ExchangeTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.exchanges[tx.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.exchanges[tx.ID] = cloneExchange(tx)
	id := tx.ID
	r.undo.add(func() { delete(r.s.exchanges, id) })
	return nil
}

// GetByID retorna (nil, nil) si no existe.
func (r *ExchangeRepo) GetByID(_ context.Context, id string) (*entity.ExchangeTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.exchanges[id]
	if !ok {
		return nil, nil
	}
	out := cloneExchange(&tx)
	return &out, nil
}

// GetForUpdate igual que GetByID; el runner de canjes ya serializa.
func (r *ExchangeRepo) GetForUpdate(ctx context.Context, id string) (*entity.ExchangeTransaction, error) {
	return r.GetByID(ctx, id)
}

// UpdateStatus cambia estado y fechas solo si el canje sigue PENDING.
func (r *ExchangeRepo) UpdateStatus(_ context.Context, tx *entity.ExchangeTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.exchanges[tx.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if prev.Status != entity.ExchangeStatusPending {
		return fmt.Errorf("%w: canje %s ya está %s", domain.ErrConflict, tx.ID, prev.Status)
	}
	next := cloneExchange(&prev)
	next.Status = tx.Status
	next.UpdatedAt = tx.UpdatedAt
	if tx.CompletedAt != nil {
		at := *tx.CompletedAt
		next.CompletedAt = &at
	}
	r.s.exchanges[tx.ID] = next
	r.undo.add(func() { r.s.exchanges[prev.ID] = prev })
	return nil
}

func cloneExchange(tx *entity.ExchangeTransaction) entity.ExchangeTransaction {
	out := *tx
	out.Items = make([]*entity.ExchangeItem, len(tx.Items))
	for i, it := range tx.Items {
		c := *it
		out.Items[i] = &c
	}
	out.NewPurchaseAmount = cloneDecimal(tx.NewPurchaseAmount)
	out.BalanceRefund = cloneDecimal(tx.BalanceRefund)
	out.CashPayment = cloneDecimal(tx.CashPayment)
	if tx.CompletedAt != nil {
		at := *tx.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// CreditLedgerRepo libro de crédito de clientes en memoria.
type CreditLedgerRepo struct {
	s    *Store
	undo *undoLog
}

// NewCreditLedgerRepository construye el repositorio fuera de transacción.
func NewCreditLedgerRepository(s *Store) *CreditLedgerRepo { return &CreditLedgerRepo{s: s} }

// Create agrega un asiento.
func (r *CreditLedgerRepo) Create(_ context.Context, e *entity.CustomerCreditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.credits = append(r.s.credits, *e)
	n := len(r.s.credits)
	r.undo.add(func() { r.s.credits = r.s.credits[:n-1] })
	return nil
}

// ListByCustomer asientos del cliente en orden de registro.
func (r *CreditLedgerRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.CustomerCreditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.CustomerCreditEntry
	for i := range r.s.credits {
		if r.s.credits[i].CustomerID == customerID {
			e := r.s.credits[i]
			out = append(out, &e)
		}
	}
	return out, nil
}
