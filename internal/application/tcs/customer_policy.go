package tcs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	domaintcs "github.com/jhoicas/joyeria-api/internal/domain/tcs"
)

var (
	_ ExemptionPolicy = (*CustomerExemptionPolicy)(nil)
	_ PANRegistry     = (*CustomerPANRegistry)(nil)
)

// CustomerExemptionPolicy exime a los comerciantes registrados con GSTIN en su ficha.
// Un cliente sin ficha (venta de mostrador) no está exento.
type CustomerExemptionPolicy struct {
	customers repository.CustomerRepository
}

// NewCustomerExemptionPolicy construye la política sobre el maestro de clientes.
func NewCustomerExemptionPolicy(customers repository.CustomerRepository) *CustomerExemptionPolicy {
	return &CustomerExemptionPolicy{customers: customers}
}

// Evaluate consulta la ficha del cliente.
func (p *CustomerExemptionPolicy) Evaluate(ctx context.Context, customerID string, _ time.Time) (Exemption, error) {
	c, err := p.customers.GetByID(ctx, customerID)
	if err != nil {
		return Exemption{}, err
	}
	if c == nil || !c.IsRegisteredDealer {
		return Exemption{}, nil
	}
	gstin := strings.TrimSpace(c.GSTIN)
	if gstin == "" {
		return Exemption{}, nil
	}
	return Exemption{Exempt: true, Reason: fmt.Sprintf("registered dealer GSTIN %s", gstin)}, nil
}

// CustomerPANRegistry toma el PAN de la ficha del cliente. Es válido si está verificado y
// tiene el formato oficial.
type CustomerPANRegistry struct {
	customers repository.CustomerRepository
}

// NewCustomerPANRegistry construye el registro sobre el maestro de clientes.
func NewCustomerPANRegistry(customers repository.CustomerRepository) *CustomerPANRegistry {
	return &CustomerPANRegistry{customers: customers}
}

// Lookup retorna el PAN normalizado; HasValidPAN false si falta, no está verificado o es inválido.
func (r *CustomerPANRegistry) Lookup(ctx context.Context, customerID string) (PANStatus, error) {
	c, err := r.customers.GetByID(ctx, customerID)
	if err != nil {
		return PANStatus{}, fmt.Errorf("registro PAN: %w", err)
	}
	if c == nil || strings.TrimSpace(c.PAN) == "" {
		return PANStatus{}, nil
	}
	pan := domaintcs.NormalizePAN(c.PAN)
	valid := c.PANVerified && domaintcs.ValidatePAN(pan) == nil
	return PANStatus{HasValidPAN: valid, PAN: pan}, nil
}
