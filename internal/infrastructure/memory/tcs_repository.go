package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var (
	_ repository.TcsStateRepository       = (*TcsStateRepo)(nil)
	_ repository.TcsTransactionRepository = (*TcsTransactionRepo)(nil)
)

// TcsStateRepo acumulados TCS con compare-and-swap sobre Version.
type TcsStateRepo struct {
	s    *Store
	undo *undoLog
}

// NewTcsStateRepository construye el repositorio fuera de transacción.
func NewTcsStateRepository(s *Store) *TcsStateRepo { return &TcsStateRepo{s: s} }

// Get lectura simple.
func (r *TcsStateRepo) Get(_ context.Context, customerID, financialYear string) (*entity.TcsCustomerYearState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.tcsStates[stateKey{customerID, financialYear}]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// GetForUpdate en memoria no bloquea; la exclusión la da el CAS de Update.
func (r *TcsStateRepo) GetForUpdate(ctx context.Context, customerID, financialYear string) (*entity.TcsCustomerYearState, error) {
	return r.Get(ctx, customerID, financialYear)
}

// Create inserta con Version 1; si la clave ya existe otro escritor ganó la carrera.
func (r *TcsStateRepo) Create(_ context.Context, st *entity.TcsCustomerYearState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := stateKey{st.CustomerID, st.FinancialYear}
	if _, ok := r.s.tcsStates[key]; ok {
		return fmt.Errorf("%w: acumulado %s/%s ya existe", domain.ErrVersionConflict, st.CustomerID, st.FinancialYear)
	}
	st.Version = 1
	r.s.tcsStates[key] = *st
	r.undo.add(func() { delete(r.s.tcsStates, key) })
	return nil
}

// Update reemplaza el estado solo si la versión almacenada es expectedVersion.
func (r *TcsStateRepo) Update(_ context.Context, st *entity.TcsCustomerYearState, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := stateKey{st.CustomerID, st.FinancialYear}
	prev, ok := r.s.tcsStates[key]
	if !ok || prev.Version != expectedVersion {
		return fmt.Errorf("%w: acumulado %s/%s versión %d", domain.ErrVersionConflict, st.CustomerID, st.FinancialYear, expectedVersion)
	}
	st.Version = expectedVersion + 1
	r.s.tcsStates[key] = *st
	r.undo.add(func() { r.s.tcsStates[key] = prev })
	return nil
}

// TcsTransactionRepo registros TCS (solo inserción).
type TcsTransactionRepo struct {
	s    *Store
	undo *undoLog
}

// NewTcsTransactionRepository construye el repositorio fuera de transacción.
func NewTcsTransactionRepository(s *Store) *TcsTransactionRepo { return &TcsTransactionRepo{s: s} }

// Create agrega el registro; ErrDuplicate si el ID o la venta ya existen.
func (r *TcsTransactionRepo) Create(_ context.Context, txn *entity.TcsTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tcsTxnIDs[txn.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.s.tcsSales[txn.SaleID]; ok {
		return fmt.Errorf("%w: venta %s ya registrada en TCS", domain.ErrDuplicate, txn.SaleID)
	}
	r.s.tcsTxns = append(r.s.tcsTxns, *txn)
	r.s.tcsTxnIDs[txn.ID] = struct{}{}
	r.s.tcsSales[txn.SaleID] = struct{}{}
	id, saleID := txn.ID, txn.SaleID
	r.undo.add(func() {
		delete(r.s.tcsTxnIDs, id)
		delete(r.s.tcsSales, saleID)
		for i := len(r.s.tcsTxns) - 1; i >= 0; i-- {
			if r.s.tcsTxns[i].ID == id {
				r.s.tcsTxns = append(r.s.tcsTxns[:i], r.s.tcsTxns[i+1:]...)
				break
			}
		}
	})
	return nil
}

// GetBySaleID registro de la venta o (nil, nil).
func (r *TcsTransactionRepo) GetBySaleID(_ context.Context, saleID string) (*entity.TcsTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.tcsSales[saleID]; !ok {
		return nil, nil
	}
	for i := range r.s.tcsTxns {
		if r.s.tcsTxns[i].SaleID == saleID {
			t := r.s.tcsTxns[i]
			return &t, nil
		}
	}
	return nil, nil
}

// ListByQuarter registros del trimestre ordenados por fecha e ID.
func (r *TcsTransactionRepo) ListByQuarter(_ context.Context, financialYear string, quarter int) ([]*entity.TcsTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.TcsTransaction
	for i := range r.s.tcsTxns {
		t := r.s.tcsTxns[i]
		if t.FinancialYear == financialYear && t.Quarter == quarter {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
