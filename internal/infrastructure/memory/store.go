// Package memory implementa los repositorios sobre mapas en memoria. Se usa en tests y con
// STORAGE_DRIVER=memory; los datos se pierden al reiniciar.
package memory

import (
	"sync"

	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

type stateKey struct{ customerID, financialYear string }

type stockKey struct{ metalID, purityID string }

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	mu sync.RWMutex

	nextRateID int64
	metalRates []entity.MetalRate
	stoneRates []entity.StoneRate
	purities   map[string]entity.Purity
	customers  map[string]entity.Customer

	tcsStates map[stateKey]entity.TcsCustomerYearState
	tcsTxns   []entity.TcsTransaction
	tcsTxnIDs map[string]struct{}
	tcsSales  map[string]struct{}

	exchanges map[string]entity.ExchangeTransaction
	stock     map[stockKey]entity.OldGoldStock
	movements []entity.InventoryMovement
	credits   []entity.CustomerCreditEntry

	// exchangeMu serializa las transacciones de canje (equivalente a los FOR UPDATE de PostgreSQL).
	exchangeMu sync.Mutex
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		purities:  make(map[string]entity.Purity),
		customers: make(map[string]entity.Customer),
		tcsStates: make(map[stateKey]entity.TcsCustomerYearState),
		tcsTxnIDs: make(map[string]struct{}),
		tcsSales:  make(map[string]struct{}),
		exchanges: make(map[string]entity.ExchangeTransaction),
		stock:     make(map[stockKey]entity.OldGoldStock),
	}
}

// undoLog acumula acciones de reversa de una transacción; nil fuera de transacción.
type undoLog struct {
	steps []func()
}

func (u *undoLog) add(step func()) {
	if u != nil {
		u.steps = append(u.steps, step)
	}
}

// rollback deshace en orden inverso. Se llama con el lock del store tomado.
func (u *undoLog) rollback() {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
	u.steps = nil
}

func (s *Store) rollback(u *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.rollback()
}
