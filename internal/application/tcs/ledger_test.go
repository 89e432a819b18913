package tcs_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/memory"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type ledgerEnv struct {
	store     *memory.Store
	customers *memory.CustomerRepo
	states    *memory.TcsStateRepo
	txns      *memory.TcsTransactionRepo
	ledger    *tcs.Ledger
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()
	store := memory.NewStore()
	env := &ledgerEnv{
		store:     store,
		customers: memory.NewCustomerRepository(store),
		states:    memory.NewTcsStateRepository(store),
		txns:      memory.NewTcsTransactionRepository(store),
	}
	ledger, err := tcs.NewLedger(
		memory.NewTxRunner(store),
		env.states,
		tcs.NewCustomerExemptionPolicy(env.customers),
		tcs.NewCustomerPANRegistry(env.customers),
		fiscal.NewCalendar(fiscal.IST),
		tcs.DefaultConfig(),
		logger.Nop(),
	)
	require.NoError(t, err)
	env.ledger = ledger
	return env
}

func (e *ledgerEnv) addCustomer(t *testing.T, c entity.Customer) {
	t.Helper()
	require.NoError(t, e.customers.Create(context.Background(), &c))
}

func saleAt(customerID, saleID, amount string, at time.Time) tcs.SaleRecord {
	return tcs.SaleRecord{CustomerID: customerID, SaleID: saleID, SaleAmount: d(amount), TransactionDate: at}
}

var june = time.Date(2024, time.June, 10, 11, 0, 0, 0, fiscal.IST)

// ──────────────────────────────────────────────────────────────────────────────
// Acumulado y clasificación
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_CruceDeUmbralConPAN(t *testing.T) {
	env := newLedgerEnv(t)
	env.addCustomer(t, entity.Customer{ID: "C1", Name: "Asha", PAN: "ABCPE1234F", PANVerified: true})
	ctx := context.Background()

	first, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "999999", june))
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeBelowThreshold, first.TcsType)
	assert.Equal(t, "2024-25", first.FinancialYear)
	assert.Equal(t, 1, first.Quarter)

	second, err := env.ledger.RecordSale(ctx, saleAt("C1", "S2", "2", june.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeWithPAN, second.TcsType)
	assert.True(t, d("999999").Equal(second.CumulativeSaleAmountBefore))
	assert.Equal(t, "ABCPE1234F", second.PANNumber)

	state, err := env.ledger.State(ctx, "C1", fiscal.FinancialYear{StartYear: 2024})
	require.NoError(t, err)
	assert.True(t, d("1000001").Equal(state.CumulativeSaleAmount))
	assert.Equal(t, int64(2), state.Version)
	assert.True(t, state.HasValidPAN)
}

func TestRecordSale_AcumuladoMonotono(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	prev := decimal.Zero
	for i, amount := range []string{"300000", "450000", "125000.50", "900000"} {
		txn, err := env.ledger.RecordSale(ctx, saleAt("MOSTRADOR", fmt.Sprintf("S%d", i), amount, june.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		assert.True(t, txn.CumulativeSaleAmountBefore.Equal(prev), "venta %d", i)
		prev = prev.Add(d(amount))
	}
	// Sin ficha ni PAN: la última venta cruza el umbral al 1 %.
	list, err := env.txns.ListByQuarter(ctx, "2024-25", 1)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, entity.TcsTypeWithoutPAN, list[3].TcsType)
	assert.True(t, d("9000").Equal(list[3].TcsAmount))
	assert.Empty(t, list[3].PANNumber)
}

func TestRecordSale_NuevoAnoFiscalReiniciaAcumulado(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	_, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "1500000",
		time.Date(2025, time.March, 31, 23, 59, 0, 0, fiscal.IST)))
	require.NoError(t, err)

	txn, err := env.ledger.RecordSale(ctx, saleAt("C1", "S2", "100000",
		time.Date(2025, time.April, 1, 0, 0, 0, 0, fiscal.IST)))
	require.NoError(t, err)
	assert.Equal(t, "2025-26", txn.FinancialYear)
	assert.True(t, txn.CumulativeSaleAmountBefore.IsZero())
	assert.Equal(t, entity.TcsTypeBelowThreshold, txn.TcsType)
}

func TestRecordSale_ComercianteRegistradoExento(t *testing.T) {
	env := newLedgerEnv(t)
	env.addCustomer(t, entity.Customer{ID: "D1", Name: "Mayorista", IsRegisteredDealer: true, GSTIN: "27ABCPE1234F1Z5"})
	ctx := context.Background()

	txn, err := env.ledger.RecordSale(ctx, saleAt("D1", "S1", "2000000", june))
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeExempted, txn.TcsType)
	assert.True(t, txn.IsExempted)
	assert.Contains(t, txn.ExemptionReason, "27ABCPE1234F1Z5")

	state, err := env.ledger.State(ctx, "D1", fiscal.FinancialYear{StartYear: 2024})
	require.NoError(t, err)
	assert.True(t, d("2000000").Equal(state.CumulativeSaleAmount))
}

func TestRecordSale_PANNoVerificadoCuentaComoSinPAN(t *testing.T) {
	env := newLedgerEnv(t)
	env.addCustomer(t, entity.Customer{ID: "C2", Name: "Ravi", PAN: "ABCPE1234F"})

	txn, err := env.ledger.RecordSale(context.Background(), saleAt("C2", "S1", "1100000", june))
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeWithoutPAN, txn.TcsType)
	assert.True(t, d("11000").Equal(txn.TcsAmount))
	assert.Empty(t, txn.PANNumber)
}

func TestRecordSale_EntradaInvalida(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	_, err := env.ledger.RecordSale(ctx, saleAt("", "S1", "10", june))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = env.ledger.RecordSale(ctx, saleAt("C1", "S1", "0", june))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordSale_MontoConMasDeDosDecimales(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	_, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "1000.005", june))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	txn, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "1000.50", june))
	require.NoError(t, err)
	assert.True(t, d("1000.5").Equal(txn.SaleAmount))
}

func TestRecordSale_ReintentoDeLaMismaVentaNoSumaDosVeces(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	first, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "600000", june))
	require.NoError(t, err)
	again, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "600000", june.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "devuelve el registro original")
	assert.Equal(t, entity.TcsTypeBelowThreshold, again.TcsType)

	state, err := env.ledger.State(ctx, "C1", fiscal.FinancialYear{StartYear: 2024})
	require.NoError(t, err)
	assert.True(t, d("600000").Equal(state.CumulativeSaleAmount), "acumulado %s", state.CumulativeSaleAmount)
	assert.Equal(t, int64(1), state.Version)

	list, err := env.txns.ListByQuarter(ctx, "2024-25", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordSale_MismoSaleIDConOtrosDatosEsDuplicado(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	_, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "600000", june))
	require.NoError(t, err)

	_, err = env.ledger.RecordSale(ctx, saleAt("C1", "S1", "700000", june))
	assert.ErrorIs(t, err, domain.ErrDuplicate, "otro monto")
	_, err = env.ledger.RecordSale(ctx, saleAt("C2", "S1", "600000", june))
	assert.ErrorIs(t, err, domain.ErrDuplicate, "otro cliente")

	state, err := env.ledger.State(ctx, "C1", fiscal.FinancialYear{StartYear: 2024})
	require.NoError(t, err)
	assert.True(t, d("600000").Equal(state.CumulativeSaleAmount))
	other, err := env.ledger.State(ctx, "C2", fiscal.FinancialYear{StartYear: 2024})
	require.NoError(t, err)
	assert.True(t, other.CumulativeSaleAmount.IsZero(), "el acumulado de C2 no se crea")
}

func TestTcsTransactionRepo_SaleIDUnico(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	require.NoError(t, env.txns.Create(ctx, &entity.TcsTransaction{ID: "t-1", SaleID: "S1", CustomerID: "C1"}))
	err := env.txns.Create(ctx, &entity.TcsTransaction{ID: "t-2", SaleID: "S1", CustomerID: "C1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := env.txns.GetBySaleID(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.ID)

	missing, err := env.txns.GetBySaleID(ctx, "S9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: 15 ventas simultáneas de 100000 para el mismo cliente con PAN.
// Las primeras 10 quedan dentro del umbral; las 5 restantes pagan 100 cada una.
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_VentasConcurrentesNoPierdenIncrementos(t *testing.T) {
	env := newLedgerEnv(t)
	env.addCustomer(t, entity.Customer{ID: "C1", Name: "Asha", PAN: "ABCPE1234F", PANVerified: true})
	ctx := context.Background()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 15; i++ {
		saleID := fmt.Sprintf("S%02d", i)
		g.Go(func() error {
			_, err := env.ledger.RecordSale(gctx, saleAt("C1", saleID, "100000", june))
			return err
		})
	}
	require.NoError(t, g.Wait())

	state, err := env.ledger.State(ctx, "C1", fiscal.FinancialYear{StartYear: 2024})
	require.NoError(t, err)
	assert.True(t, d("1500000").Equal(state.CumulativeSaleAmount), "acumulado %s", state.CumulativeSaleAmount)
	assert.Equal(t, int64(15), state.Version)

	list, err := env.txns.ListByQuarter(ctx, "2024-25", 1)
	require.NoError(t, err)
	require.Len(t, list, 15)

	total := decimal.Zero
	withPAN := 0
	for _, txn := range list {
		total = total.Add(txn.TcsAmount)
		if txn.TcsType == entity.TcsTypeWithPAN {
			withPAN++
		}
	}
	assert.Equal(t, 5, withPAN)
	assert.True(t, d("500").Equal(total), "TCS total %s", total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallas
// ──────────────────────────────────────────────────────────────────────────────

// conflictRunner simula un store donde otro escritor siempre gana el CAS.
type conflictRunner struct{ calls atomic.Int32 }

func (r *conflictRunner) RunTcs(_ context.Context, _ func(repository.TcsStateRepository, repository.TcsTransactionRepository) error) error {
	r.calls.Add(1)
	return fmt.Errorf("%w: simulado", domain.ErrVersionConflict)
}

func TestRecordSale_ReintentosAgotados(t *testing.T) {
	store := memory.NewStore()
	customers := memory.NewCustomerRepository(store)
	runner := &conflictRunner{}
	cfg := tcs.DefaultConfig()
	cfg.MaxRetries = 3

	ledger, err := tcs.NewLedger(runner, memory.NewTcsStateRepository(store),
		tcs.NewCustomerExemptionPolicy(customers), tcs.NewCustomerPANRegistry(customers),
		fiscal.NewCalendar(fiscal.IST), cfg, logger.Nop())
	require.NoError(t, err)

	_, err = ledger.RecordSale(context.Background(), saleAt("C1", "S1", "100", june))
	assert.ErrorIs(t, err, domain.ErrThresholdRaceDetected)
	assert.Equal(t, int32(4), runner.calls.Load(), "primer intento más 3 reintentos")
}

type failingPolicy struct{}

func (failingPolicy) Evaluate(context.Context, string, time.Time) (tcs.Exemption, error) {
	return tcs.Exemption{}, errors.New("servicio de exenciones caído")
}

func TestRecordSale_FallaDeExencionNoTocaElAcumulado(t *testing.T) {
	store := memory.NewStore()
	customers := memory.NewCustomerRepository(store)
	states := memory.NewTcsStateRepository(store)

	ledger, err := tcs.NewLedger(memory.NewTxRunner(store), states, failingPolicy{},
		tcs.NewCustomerPANRegistry(customers), fiscal.NewCalendar(fiscal.IST), tcs.DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	_, err = ledger.RecordSale(context.Background(), saleAt("C1", "S1", "100", june))
	assert.ErrorIs(t, err, domain.ErrExemptionLookupFailed)

	st, err := states.Get(context.Background(), "C1", "2024-25")
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = ledger.Preview(context.Background(), "C1", d("100"), june)
	assert.ErrorIs(t, err, domain.ErrExemptionLookupFailed)
}

func TestNewLedger_ConfigInvalida(t *testing.T) {
	store := memory.NewStore()
	customers := memory.NewCustomerRepository(store)
	cfg := tcs.DefaultConfig()
	cfg.MaxRetries = -1
	_, err := tcs.NewLedger(memory.NewTxRunner(store), memory.NewTcsStateRepository(store),
		tcs.NewCustomerExemptionPolicy(customers), tcs.NewCustomerPANRegistry(customers),
		fiscal.NewCalendar(fiscal.IST), cfg, logger.Nop())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Preview
// ──────────────────────────────────────────────────────────────────────────────

func TestPreview_NoModificaElAcumulado(t *testing.T) {
	env := newLedgerEnv(t)
	env.addCustomer(t, entity.Customer{ID: "C1", Name: "Asha", PAN: "abcpe1234f", PANVerified: true})
	ctx := context.Background()

	_, err := env.ledger.RecordSale(ctx, saleAt("C1", "S1", "950000", june))
	require.NoError(t, err)

	p, err := env.ledger.Preview(ctx, "C1", d("100000"), june)
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeWithPAN, p.Decision.Type)
	assert.True(t, d("100").Equal(p.Decision.Amount))
	assert.Equal(t, "ABCPE1234F", p.PANNumber)
	assert.Equal(t, "2024-25", p.FinancialYear)

	state, err := env.ledger.State(ctx, "C1", fiscal.FinancialYear{StartYear: 2024})
	require.NoError(t, err)
	assert.True(t, d("950000").Equal(state.CumulativeSaleAmount))
	assert.Equal(t, int64(1), state.Version)
}
