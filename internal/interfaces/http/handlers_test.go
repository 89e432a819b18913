package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/joyeria-api/internal/application/catalog"
	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/application/exchange"
	"github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/application/pricing"
	"github.com/jhoicas/joyeria-api/internal/application/rates"
	"github.com/jhoicas/joyeria-api/internal/application/sales"
	"github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	infraform26q "github.com/jhoicas/joyeria-api/internal/infrastructure/form26q"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/memory"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/joyeria-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/joyeria-api/pkg/jwt"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeEnqueuer struct {
	err error
}

func (f fakeEnqueuer) EnqueueForm26Q(_ context.Context, fy fiscal.FinancialYear, q fiscal.Quarter) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "form26q:" + fy.String() + ":" + q.String(), "default", nil
}

func newAPI(t *testing.T, jobs apphttp.Form26QEnqueuer) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	cal := fiscal.NewCalendar(fiscal.IST)
	log := logger.Nop()

	customers := memory.NewCustomerRepository(store)
	purities := memory.NewPurityRepository(store)
	require.NoError(t, purities.Upsert(ctx, &entity.Purity{ID: "22K", MetalID: "GOLD", Name: "22 quilates", Percentage: dec("91.6")}))
	require.NoError(t, purities.Upsert(ctx, &entity.Purity{ID: "18K", MetalID: "GOLD", Name: "18 quilates", Percentage: dec("75")}))
	require.NoError(t, customers.Create(ctx, &entity.Customer{ID: "C1", Name: "Asha", PAN: "ABCPE1234F", PANVerified: true}))

	lookup := rates.NewLookupUseCase(memory.NewRateRepository(store), nil, cal, log)
	for _, p := range []string{"22K", "18K"} {
		_, err := lookup.AddMetalRate(ctx, rates.AddMetalRateInput{MetalID: "GOLD", PurityID: p, RatePerGram: dec("6000"),
			EffectiveDate: time.Date(2024, time.April, 1, 0, 0, 0, 0, fiscal.IST)})
		require.NoError(t, err)
	}

	runner := memory.NewTxRunner(store)
	ledger, err := tcs.NewLedger(runner, memory.NewTcsStateRepository(store),
		tcs.NewCustomerExemptionPolicy(customers), tcs.NewCustomerPANRegistry(customers),
		cal, tcs.DefaultConfig(), log)
	require.NoError(t, err)
	pricer := pricing.NewUseCase(lookup, purities, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CustomerUC:  catalog.NewCustomerUseCase(customers),
		PurityUC:    catalog.NewPurityUseCase(purities),
		RatesUC:     lookup,
		PricingUC:   pricer,
		CheckoutUC:  sales.NewCheckoutUseCase(pricer, ledger, log),
		ExchangeUC:  exchange.NewUseCase(runner, memory.NewExchangeRepository(store), purities, lookup, log),
		Ledger:      ledger,
		Form26Q:     form26q.NewAggregator(memory.NewTcsTransactionRepository(store), cal),
		Form26QXML:  infraform26q.NewXMLBuilderService("MUMJ12345A"),
		Form26QPDF:  pdf.NewForm26QGenerator("Joyeria Lakshmi"),
		Form26QJobs: jobs,
		Calendar:    cal,
		JWTSecret:   testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func ringLine() dto.PriceLineRequest {
	return dto.PriceLineRequest{
		PurityID:          "22K",
		NetMetalWeight:    dec("10"),
		MakingChargeType:  "PER_GRAM",
		MakingChargeValue: dec("500"),
		WastagePercentage: dec("2"),
		Quantity:          1,
		GSTPercentage:     dec("3"),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cotización y venta
// ──────────────────────────────────────────────────────────────────────────────

func TestQuote_Desglose(t *testing.T) {
	app := newAPI(t, nil)
	resp := call(t, app, http.MethodPost, "/api/pricing/quote", pkgjwt.RoleCashier,
		dto.QuoteRequest{AsOf: "2024-07-15", Lines: []dto.PriceLineRequest{ringLine()}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.QuoteResponse
	decode(t, resp, &out)
	require.Len(t, out.Lines, 1)
	assert.True(t, dec("60000").Equal(out.Lines[0].MetalAmount))
	assert.True(t, dec("1986").Equal(out.Lines[0].GSTAmount))
	assert.True(t, dec("68186").Equal(out.TotalAmount))
}

func TestQuote_ValidacionDevuelve400(t *testing.T) {
	app := newAPI(t, nil)
	line := ringLine()
	line.MakingChargeType = "POR_PIEZA"
	resp := call(t, app, http.MethodPost, "/api/pricing/quote", pkgjwt.RoleCashier,
		dto.QuoteRequest{Lines: []dto.PriceLineRequest{line}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Message, "oneof")
}

func TestQuote_CantidadCeroEsValidacion(t *testing.T) {
	app := newAPI(t, nil)
	line := ringLine()
	line.Quantity = 0
	resp := call(t, app, http.MethodPost, "/api/pricing/quote", pkgjwt.RoleCashier,
		dto.QuoteRequest{Lines: []dto.PriceLineRequest{line}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Message, "Quantity: min")
}

func TestQuote_TarifaNoConfiguradaDevuelve422(t *testing.T) {
	app := newAPI(t, nil)
	resp := call(t, app, http.MethodPost, "/api/pricing/quote", pkgjwt.RoleCashier,
		dto.QuoteRequest{AsOf: "2024-03-31", Lines: []dto.PriceLineRequest{ringLine()}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var out dto.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "RATE_NOT_CONFIGURED", out.Code)
}

func TestQuote_ContadorNoCotiza(t *testing.T) {
	app := newAPI(t, nil)
	resp := call(t, app, http.MethodPost, "/api/pricing/quote", pkgjwt.RoleAccountant,
		dto.QuoteRequest{Lines: []dto.PriceLineRequest{ringLine()}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateSale_YEstadoTCS(t *testing.T) {
	app := newAPI(t, nil)
	big := ringLine()
	big.Quantity = 15 // 15 * 68186 = 1022790

	resp := call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier,
		dto.CreateSaleRequest{SaleID: "V-1", CustomerID: "C1", Date: "2024-07-15T12:00:00+05:30", Lines: []dto.PriceLineRequest{big}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sale dto.SaleResponse
	decode(t, resp, &sale)
	assert.Equal(t, "V-1", sale.SaleID)
	assert.True(t, dec("1022790").Equal(sale.SaleValue))
	assert.Equal(t, entity.TcsTypeWithPAN, sale.Tcs.TcsType)
	assert.True(t, dec("1022.79").Equal(sale.Tcs.TcsAmount))
	assert.True(t, dec("1023812.79").Equal(sale.AmountPayable))

	resp = call(t, app, http.MethodGet, "/api/tcs/customers/C1/years/2024-25", pkgjwt.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state dto.TcsStateResponse
	decode(t, resp, &state)
	assert.True(t, dec("1022790").Equal(state.CumulativeSaleAmount))
	assert.Equal(t, int64(1), state.Version)

	resp = call(t, app, http.MethodPost, "/api/tcs/preview", pkgjwt.RoleCashier,
		dto.TcsPreviewRequest{CustomerID: "C1", SaleAmount: dec("100000"), Date: "2024-07-16"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview dto.TcsPreviewResponse
	decode(t, resp, &preview)
	assert.Equal(t, entity.TcsTypeWithPAN, preview.TcsType)
	assert.True(t, dec("100").Equal(preview.TcsAmount))
}

func TestCreateSale_ReenvioConMismoSaleID(t *testing.T) {
	app := newAPI(t, nil)
	body := dto.CreateSaleRequest{SaleID: "V-9", CustomerID: "C1", Date: "2024-07-15", Lines: []dto.PriceLineRequest{ringLine()}}

	resp := call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var first dto.SaleResponse
	decode(t, resp, &first)

	resp = call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var again dto.SaleResponse
	decode(t, resp, &again)
	assert.Equal(t, first.Tcs.ID, again.Tcs.ID)

	resp = call(t, app, http.MethodGet, "/api/tcs/customers/C1/years/2024-25", pkgjwt.RoleAccountant, nil)
	var state dto.TcsStateResponse
	decode(t, resp, &state)
	assert.True(t, dec("68186").Equal(state.CumulativeSaleAmount), "acumulado %s", state.CumulativeSaleAmount)

	other := ringLine()
	other.Quantity = 2
	body.Lines = []dto.PriceLineRequest{other}
	resp = call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTcsState_AnoInvalido(t *testing.T) {
	app := newAPI(t, nil)
	resp := call(t, app, http.MethodGet, "/api/tcs/customers/C1/years/2024-2025", pkgjwt.RoleAccountant, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Canjes
// ──────────────────────────────────────────────────────────────────────────────

func TestExchange_FlujoCompleto(t *testing.T) {
	app := newAPI(t, nil)
	purchase := dec("50000")
	req := dto.ExchangeRequest{
		CustomerID: "C1",
		Type:       entity.ExchangeTypeExchange,
		Items: []dto.ExchangeItemRequest{{
			MetalID: "GOLD", PurityID: "18K", GrossWeight: dec("10.2"), NetWeight: dec("10"),
			MakingChargeDeductionPercent: dec("10"), WastageDeductionPercent: dec("2"),
		}},
		NewPurchaseAmount: &purchase,
		AsOf:              "2024-08-20",
	}

	resp := call(t, app, http.MethodPost, "/api/exchanges/calculate", pkgjwt.RoleCashier, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var calc dto.ExchangeCalculationResponse
	decode(t, resp, &calc)
	assert.True(t, dec("39600").Equal(calc.TotalCreditAmount))
	require.NotNil(t, calc.CashPayment)
	assert.True(t, dec("10400").Equal(*calc.CashPayment))
	assert.Nil(t, calc.BalanceRefund)

	resp = call(t, app, http.MethodPost, "/api/exchanges", pkgjwt.RoleCashier, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.ExchangeResponse
	decode(t, resp, &created)
	assert.Equal(t, entity.ExchangeStatusPending, created.Status)
	assert.Equal(t, testUserID, created.CreatedBy)

	resp = call(t, app, http.MethodPost, "/api/exchanges/"+created.ID+"/complete", pkgjwt.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var completed dto.ExchangeResponse
	decode(t, resp, &completed)
	assert.Equal(t, entity.ExchangeStatusCompleted, completed.Status)
	assert.NotEmpty(t, completed.CompletedAt)

	resp = call(t, app, http.MethodPost, "/api/exchanges/"+created.ID+"/cancel", pkgjwt.RoleCashier, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/exchanges/no-existe", pkgjwt.RoleCashier, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExchange_TipoInvalido(t *testing.T) {
	app := newAPI(t, nil)
	resp := call(t, app, http.MethodPost, "/api/exchanges/calculate", pkgjwt.RoleCashier, dto.ExchangeRequest{
		Type:  "TRUEQUE",
		Items: []dto.ExchangeItemRequest{{MetalID: "GOLD", PurityID: "18K", GrossWeight: dec("1"), NetWeight: dec("1")}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Form 26Q
// ──────────────────────────────────────────────────────────────────────────────

func seedSale(t *testing.T, app *fiber.App) {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/sales", pkgjwt.RoleCashier,
		dto.CreateSaleRequest{CustomerID: "C1", Date: "2024-05-10", Lines: []dto.PriceLineRequest{ringLine()}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestForm26Q_JSON(t *testing.T) {
	app := newAPI(t, nil)
	seedSale(t, app)

	resp := call(t, app, http.MethodGet, "/api/tcs/form26q?fy=2024-25&quarter=Q1", pkgjwt.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.Form26QResponse
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "2024-04-01", out.PeriodFrom)
	assert.Equal(t, "2024-06-30", out.PeriodTo)
	assert.True(t, dec("68186").Equal(out.TotalSaleAmount))
	assert.Equal(t, []string{"ABCPE1234F"}, out.DistinctPANs)
}

func TestForm26Q_XMLConDigest(t *testing.T) {
	app := newAPI(t, nil)
	seedSale(t, app)

	first := call(t, app, http.MethodGet, "/api/tcs/form26q?fy=2024-25&quarter=Q1&format=xml", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, first.StatusCode)
	digest := first.Header.Get("X-Content-Digest")
	assert.Contains(t, digest, "sha256=")
	body, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<Form26Q")

	second := call(t, app, http.MethodGet, "/api/tcs/form26q?fy=2024-25&quarter=Q1&format=xml", pkgjwt.RoleAdmin, nil)
	defer second.Body.Close()
	assert.Equal(t, digest, second.Header.Get("X-Content-Digest"), "regenerar no cambia el digest")
}

func TestForm26Q_PDF(t *testing.T) {
	app := newAPI(t, nil)
	seedSale(t, app)

	resp := call(t, app, http.MethodGet, "/api/tcs/form26q?fy=2024-25&quarter=1&format=pdf", pkgjwt.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestForm26Q_CajeroNoAccede(t *testing.T) {
	app := newAPI(t, nil)
	resp := call(t, app, http.MethodGet, "/api/tcs/form26q?fy=2024-25&quarter=Q1", pkgjwt.RoleCashier, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestForm26QJobs(t *testing.T) {
	resp := call(t, newAPI(t, nil), http.MethodPost, "/api/tcs/form26q/jobs", pkgjwt.RoleAccountant,
		dto.Form26QJobRequest{FinancialYear: "2024-25", Quarter: "Q1"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "sin cola configurada")

	resp = call(t, newAPI(t, fakeEnqueuer{}), http.MethodPost, "/api/tcs/form26q/jobs", pkgjwt.RoleAccountant,
		dto.Form26QJobRequest{FinancialYear: "2024-25", Quarter: "Q1"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var out dto.Form26QJobResponse
	decode(t, resp, &out)
	assert.Equal(t, "form26q:2024-25:Q1", out.TaskID)

	resp = call(t, newAPI(t, fakeEnqueuer{err: domain.ErrConflict}), http.MethodPost, "/api/tcs/form26q/jobs", pkgjwt.RoleAccountant,
		dto.Form26QJobRequest{FinancialYear: "2024-25", Quarter: "Q1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Maestros
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomers_CrearYConsultar(t *testing.T) {
	app := newAPI(t, nil)
	resp := call(t, app, http.MethodPost, "/api/customers", pkgjwt.RoleCashier,
		dto.CreateCustomerRequest{Name: "Ravi", PAN: "abcpe9999k", PANVerified: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.CustomerResponse
	decode(t, resp, &created)
	assert.Equal(t, "ABCPE9999K", created.PAN)

	resp = call(t, app, http.MethodGet, "/api/customers/"+created.ID, pkgjwt.RoleAccountant, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/customers", pkgjwt.RoleCashier, dto.CreateCustomerRequest{Name: "X", GSTIN: "corto"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRates_AltaSoloAdmin(t *testing.T) {
	app := newAPI(t, nil)
	body := dto.CreateMetalRateRequest{MetalID: "GOLD", PurityID: "22K", RatePerGram: dec("6400"), EffectiveDate: "2024-09-01"}

	resp := call(t, app, http.MethodPost, "/api/rates/metal", pkgjwt.RoleCashier, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/rates/metal", pkgjwt.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/rates/metal/22K/current?as_of=2024-09-02", pkgjwt.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rate dto.MetalRateResponse
	decode(t, resp, &rate)
	assert.True(t, dec("6400").Equal(rate.RatePerGram))
}

func TestSinToken_Devuelve401(t *testing.T) {
	resp := call(t, newAPI(t, nil), http.MethodGet, "/api/purities/22K", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
