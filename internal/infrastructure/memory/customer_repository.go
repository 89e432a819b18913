package memory

import (
	"context"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.PurityRepository   = (*PurityRepo)(nil)
)

// CustomerRepo maestro de clientes en memoria.
type CustomerRepo struct{ s *Store }

// NewCustomerRepository construye el repositorio.
func NewCustomerRepository(s *Store) *CustomerRepo { return &CustomerRepo{s: s} }

// Create guarda un cliente nuevo; ErrDuplicate si el ID existe.
func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.customers[c.ID] = *c
	return nil
}

// GetByID retorna (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// PurityRepo maestro de purezas en memoria.
type PurityRepo struct{ s *Store }

// NewPurityRepository construye el repositorio.
func NewPurityRepository(s *Store) *PurityRepo { return &PurityRepo{s: s} }

// GetByID retorna (nil, nil) si no existe.
func (r *PurityRepo) GetByID(_ context.Context, id string) (*entity.Purity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.purities[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Upsert crea o reemplaza la pureza.
func (r *PurityRepo) Upsert(_ context.Context, p *entity.Purity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.purities[p.ID] = *p
	return nil
}
