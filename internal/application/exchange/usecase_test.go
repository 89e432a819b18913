package exchange_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/joyeria-api/internal/application/exchange"
	"github.com/jhoicas/joyeria-api/internal/application/rates"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	domainexchange "github.com/jhoicas/joyeria-api/internal/domain/exchange"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/memory"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

var asOf = time.Date(2024, time.August, 20, 16, 0, 0, 0, fiscal.IST)

type exchangeEnv struct {
	store     *memory.Store
	uc        *exchange.UseCase
	stock     *memory.StockRepo
	movements *memory.MovementRepo
	credits   *memory.CreditLedgerRepo
}

func newExchangeEnv(t *testing.T, runner exchange.TxRunner) *exchangeEnv {
	t.Helper()
	return newExchangeEnvOn(t, memory.NewStore(), runner)
}

// newExchangeEnvOn arma el caso de uso sobre un store dado; runner nil usa el de memoria.
func newExchangeEnvOn(t *testing.T, store *memory.Store, runner exchange.TxRunner) *exchangeEnv {
	t.Helper()
	ctx := context.Background()
	cal := fiscal.NewCalendar(fiscal.IST)

	purities := memory.NewPurityRepository(store)
	require.NoError(t, purities.Upsert(ctx, &entity.Purity{ID: "18K", MetalID: "GOLD", Name: "18 quilates", Percentage: d("75")}))

	lookup := rates.NewLookupUseCase(memory.NewRateRepository(store), nil, cal, logger.Nop())
	_, err := lookup.AddMetalRate(ctx, rates.AddMetalRateInput{MetalID: "GOLD", PurityID: "18K", RatePerGram: d("6000"),
		EffectiveDate: time.Date(2024, time.August, 1, 0, 0, 0, 0, fiscal.IST)})
	require.NoError(t, err)

	if runner == nil {
		runner = memory.NewTxRunner(store)
	}
	return &exchangeEnv{
		store:     store,
		uc:        exchange.NewUseCase(runner, memory.NewExchangeRepository(store), purities, lookup, logger.Nop()),
		stock:     memory.NewStockRepository(store),
		movements: memory.NewMovementRepository(store),
		credits:   memory.NewCreditLedgerRepository(store),
	}
}

func oldChain() domainexchange.ItemInput {
	return domainexchange.ItemInput{
		MetalID:                      "GOLD",
		PurityID:                     "18K",
		GrossWeight:                  d("10.4"),
		NetWeight:                    d("10"),
		MakingChargeDeductionPercent: d("10"),
		WastageDeductionPercent:      d("2"),
	}
}

func exchangeInput() exchange.Input {
	return exchange.Input{
		CustomerID:        "C1",
		Type:              entity.ExchangeTypeExchange,
		Items:             []domainexchange.ItemInput{oldChain()},
		NewPurchaseAmount: ptr("50000"),
		AsOf:              asOf,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cálculo
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculate_CanjeConPagoEnEfectivo(t *testing.T) {
	env := newExchangeEnv(t, nil)
	val, err := env.uc.Calculate(context.Background(), exchangeInput())
	require.NoError(t, err)

	require.Len(t, val.Items, 1)
	assert.True(t, d("39600").Equal(val.Totals.CreditAmount))
	assert.True(t, d("10400").Equal(val.Settlement.Cash()))
	assert.True(t, val.Settlement.Refund().IsZero())
}

func TestCalculate_Errores(t *testing.T) {
	env := newExchangeEnv(t, nil)
	ctx := context.Background()

	in := exchangeInput()
	in.Items = nil
	_, err := env.uc.Calculate(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = exchangeInput()
	in.Items[0].MetalID = "SILVER"
	_, err = env.uc.Calculate(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "pureza de otro metal")

	in = exchangeInput()
	in.Items[0].PurityID = "14K"
	_, err = env.uc.Calculate(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in = exchangeInput()
	in.AsOf = time.Date(2024, time.July, 31, 12, 0, 0, 0, fiscal.IST)
	_, err = env.uc.Calculate(ctx, in)
	assert.ErrorIs(t, err, domain.ErrRateNotConfigured)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestComplete_IngresaStockMovimientoYCredito(t *testing.T) {
	env := newExchangeEnv(t, nil)
	ctx := context.Background()

	tx, err := env.uc.Create(ctx, "cajero-1", exchangeInput())
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusPending, tx.Status)
	require.Len(t, tx.Items, 1)

	done, err := env.uc.Complete(ctx, tx.ID, "cajero-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	st, err := env.stock.Get(ctx, "GOLD", "18K")
	require.NoError(t, err)
	assert.True(t, d("7.5").Equal(st.PureWeight))
	assert.True(t, d("10.4").Equal(st.GrossWeight))
	assert.True(t, d("5280").Equal(st.AvgCostPerGram), "costo %s", st.AvgCostPerGram)

	movs, err := env.movements.ListByTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeExchangeIN, movs[0].Type)
	assert.True(t, d("39600").Equal(movs[0].TotalCost))
	assert.Equal(t, "cajero-1", movs[0].CreatedBy)

	entries, err := env.credits.ListByCustomer(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, d("39600").Equal(entries[0].CreditAmount))
	assert.True(t, d("10400").Equal(entries[0].CashPayment))

	got, err := env.uc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusCompleted, got.Status)
}

func TestComplete_RecompraRegistraBuybackIN(t *testing.T) {
	env := newExchangeEnv(t, nil)
	ctx := context.Background()

	in := exchangeInput()
	in.Type = entity.ExchangeTypeBuyback
	in.NewPurchaseAmount = nil
	tx, err := env.uc.Create(ctx, "cajero-1", in)
	require.NoError(t, err)
	require.NotNil(t, tx.CashPayment)
	assert.True(t, d("39600").Equal(*tx.CashPayment))

	_, err = env.uc.Complete(ctx, tx.ID, "cajero-1")
	require.NoError(t, err)
	movs, err := env.movements.ListByTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeBuybackIN, movs[0].Type)
}

func TestCancel_SinEfectosYTerminal(t *testing.T) {
	env := newExchangeEnv(t, nil)
	ctx := context.Background()

	tx, err := env.uc.Create(ctx, "cajero-1", exchangeInput())
	require.NoError(t, err)

	cancelled, err := env.uc.Cancel(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusCancelled, cancelled.Status)

	_, err = env.uc.Complete(ctx, tx.ID, "cajero-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	st, err := env.stock.Get(ctx, "GOLD", "18K")
	require.NoError(t, err)
	assert.True(t, st.PureWeight.IsZero())

	entries, err := env.credits.ListByCustomer(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestComplete_DosVecesEsTransicionInvalida(t *testing.T) {
	env := newExchangeEnv(t, nil)
	ctx := context.Background()

	tx, err := env.uc.Create(ctx, "cajero-1", exchangeInput())
	require.NoError(t, err)
	_, err = env.uc.Complete(ctx, tx.ID, "cajero-1")
	require.NoError(t, err)

	_, err = env.uc.Complete(ctx, tx.ID, "cajero-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = env.uc.Cancel(ctx, tx.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGet_NoExiste(t *testing.T) {
	env := newExchangeEnv(t, nil)
	_, err := env.uc.Get(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.uc.Complete(context.Background(), "nada", "u")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// failingCredits hace fallar el asiento de crédito para verificar el rollback.
type failingCredits struct {
	repository.CreditLedgerRepository
}

func (failingCredits) Create(context.Context, *entity.CustomerCreditEntry) error {
	return errors.New("libro de crédito no disponible")
}

type failingCreditsRunner struct{ inner *memory.TxRunner }

func (r failingCreditsRunner) RunExchange(ctx context.Context, fn func(
	repository.ExchangeRepository,
	repository.StockRepository,
	repository.InventoryMovementRepository,
	repository.CreditLedgerRepository,
) error) error {
	return r.inner.RunExchange(ctx, func(
		ex repository.ExchangeRepository,
		st repository.StockRepository,
		mv repository.InventoryMovementRepository,
		cr repository.CreditLedgerRepository,
	) error {
		return fn(ex, st, mv, failingCredits{cr})
	})
}

func TestComplete_FallaRevierteTodo(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	// El canje se crea con el runner normal y se completa con uno que falla al final.
	okEnv := newExchangeEnvOn(t, store, nil)
	tx, err := okEnv.uc.Create(ctx, "cajero-1", exchangeInput())
	require.NoError(t, err)

	badEnv := newExchangeEnvOn(t, store, failingCreditsRunner{inner: memory.NewTxRunner(store)})
	_, err = badEnv.uc.Complete(ctx, tx.ID, "cajero-1")
	require.Error(t, err)

	got, err := okEnv.uc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeStatusPending, got.Status)

	st, err := okEnv.stock.Get(ctx, "GOLD", "18K")
	require.NoError(t, err)
	assert.True(t, st.PureWeight.IsZero(), "el stock no debe cambiar")

	movs, err := okEnv.movements.ListByTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}
