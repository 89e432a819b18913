package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/joyeria-api/internal/application/catalog"
	"github.com/jhoicas/joyeria-api/internal/application/dto"
)

// CatalogHandler maestros de clientes y purezas.
type CatalogHandler struct {
	customers *catalog.CustomerUseCase
	purities  *catalog.PurityUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(customers *catalog.CustomerUseCase, purities *catalog.PurityUseCase) *CatalogHandler {
	return &CatalogHandler{customers: customers, purities: purities}
}

// CreateCustomer POST /api/customers
func (h *CatalogHandler) CreateCustomer(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.customers.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetCustomer GET /api/customers/:id
func (h *CatalogHandler) GetCustomer(c *fiber.Ctx) error {
	out, err := h.customers.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpsertPurity PUT /api/purities/:id
func (h *CatalogHandler) UpsertPurity(c *fiber.Ctx) error {
	var in dto.UpsertPurityRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.purities.Upsert(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetPurity GET /api/purities/:id
func (h *CatalogHandler) GetPurity(c *fiber.Ctx) error {
	out, err := h.purities.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
