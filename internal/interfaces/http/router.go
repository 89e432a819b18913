package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/joyeria-api/internal/application/catalog"
	"github.com/jhoicas/joyeria-api/internal/application/exchange"
	"github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/application/pricing"
	"github.com/jhoicas/joyeria-api/internal/application/rates"
	"github.com/jhoicas/joyeria-api/internal/application/sales"
	"github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CustomerUC  *catalog.CustomerUseCase
	PurityUC    *catalog.PurityUseCase
	RatesUC     *rates.LookupUseCase
	PricingUC   *pricing.UseCase
	CheckoutUC  *sales.CheckoutUseCase
	ExchangeUC  *exchange.UseCase
	Ledger      *tcs.Ledger
	Form26Q     *form26q.Aggregator
	Form26QXML  form26q.XMLExporter
	Form26QPDF  form26q.PDFExporter
	Form26QJobs Form26QEnqueuer // opcional
	Calendar    fiscal.Calendar
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(jwt.RoleAdmin, jwt.RoleCashier)
	adminOnly := RequireRole(jwt.RoleAdmin)
	reporting := RequireRole(jwt.RoleAdmin, jwt.RoleAccountant)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleCashier, jwt.RoleAccountant)

	// Maestros
	catalogHandler := NewCatalogHandler(deps.CustomerUC, deps.PurityUC)
	customers := protected.Group("/customers")
	customers.Post("/", staff, catalogHandler.CreateCustomer)
	customers.Get("/:id", anyRole, catalogHandler.GetCustomer)
	purities := protected.Group("/purities")
	purities.Put("/:id", adminOnly, catalogHandler.UpsertPurity)
	purities.Get("/:id", anyRole, catalogHandler.GetPurity)

	// Tarifas (alta solo admin)
	ratesHandler := NewRatesHandler(deps.RatesUC, deps.Calendar)
	ratesGroup := protected.Group("/rates")
	ratesGroup.Post("/metal", adminOnly, ratesHandler.CreateMetal)
	ratesGroup.Get("/metal/:purityID/current", anyRole, ratesHandler.CurrentMetal)
	ratesGroup.Post("/stone", adminOnly, ratesHandler.CreateStone)

	// Cotización y ventas
	salesHandler := NewSalesHandler(deps.PricingUC, deps.CheckoutUC, deps.Calendar)
	protected.Post("/pricing/quote", staff, salesHandler.Quote)
	protected.Post("/sales", staff, salesHandler.CreateSale)

	// Canjes
	exchangeHandler := NewExchangeHandler(deps.ExchangeUC, deps.Calendar)
	exchanges := protected.Group("/exchanges", staff)
	exchanges.Post("/calculate", exchangeHandler.Calculate)
	exchanges.Post("/", exchangeHandler.Create)
	exchanges.Get("/:id", exchangeHandler.GetByID)
	exchanges.Post("/:id/complete", exchangeHandler.Complete)
	exchanges.Post("/:id/cancel", exchangeHandler.Cancel)

	// TCS y Form 26Q
	tcsHandler := NewTcsHandler(deps.Ledger, deps.Form26Q, deps.Form26QXML, deps.Form26QPDF, deps.Form26QJobs, deps.Calendar)
	tcsGroup := protected.Group("/tcs")
	tcsGroup.Get("/customers/:customerID/years/:fy", anyRole, tcsHandler.State)
	tcsGroup.Post("/preview", anyRole, tcsHandler.Preview)
	tcsGroup.Get("/form26q", reporting, tcsHandler.Form26Q)
	tcsGroup.Post("/form26q/jobs", reporting, tcsHandler.EnqueueForm26Q)
}
