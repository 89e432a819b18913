package tcs_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/tcs"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// El umbral es un disparador: al cruzarlo, el TCS se cobra sobre la venta
// completa, no solo sobre el excedente.
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_CruceDeUmbralCobraSobreVentaCompleta(t *testing.T) {
	dec, err := tcs.Classify(tcs.Input{
		CumulativeBefore: d("999999"),
		SaleAmount:       d("2"),
		HasValidPAN:      true,
	}, tcs.DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, entity.TcsTypeWithPAN, dec.Type)
	assert.True(t, d("1000001").Equal(dec.CumulativeAfter))
	// 2 * 0.001 = 0.002 -> 0.00
	assert.True(t, dec.Amount.IsZero(), "monto %s", dec.Amount)
	assert.True(t, d("0.001").Equal(dec.Rate))
}

func TestClassify_ExactamenteEnElUmbralNoCobra(t *testing.T) {
	dec, err := tcs.Classify(tcs.Input{
		CumulativeBefore: d("400000"),
		SaleAmount:       d("600000"),
	}, tcs.DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeBelowThreshold, dec.Type)
	assert.True(t, dec.Amount.IsZero())
	assert.True(t, dec.Rate.IsZero())
}

func TestClassify_SinPANUnoPorCiento(t *testing.T) {
	dec, err := tcs.Classify(tcs.Input{
		CumulativeBefore: d("1000000"),
		SaleAmount:       d("250000"),
	}, tcs.DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeWithoutPAN, dec.Type)
	assert.True(t, d("2500").Equal(dec.Amount), "monto %s", dec.Amount)
}

func TestClassify_ConPAN(t *testing.T) {
	dec, err := tcs.Classify(tcs.Input{
		CumulativeBefore: d("1200000"),
		SaleAmount:       d("100000"),
		HasValidPAN:      true,
	}, tcs.DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeWithPAN, dec.Type)
	assert.True(t, d("100").Equal(dec.Amount))
}

func TestClassify_ExentaSumaAlAcumulado(t *testing.T) {
	dec, err := tcs.Classify(tcs.Input{
		CumulativeBefore: d("5000000"),
		SaleAmount:       d("100000"),
		Exempt:           true,
		ExemptionReason:  "gobierno",
	}, tcs.DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, entity.TcsTypeExempted, dec.Type)
	assert.True(t, dec.IsExempted)
	assert.Equal(t, "gobierno", dec.ExemptionReason)
	assert.True(t, dec.Amount.IsZero())
	assert.True(t, d("5100000").Equal(dec.CumulativeAfter))
}

func TestClassify_EntradaInvalida(t *testing.T) {
	_, err := tcs.Classify(tcs.Input{SaleAmount: decimal.Zero}, tcs.DefaultRates())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = tcs.Classify(tcs.Input{CumulativeBefore: d("-1"), SaleAmount: d("1")}, tcs.DefaultRates())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRates_Validate(t *testing.T) {
	require.NoError(t, tcs.DefaultRates().Validate())

	r := tcs.DefaultRates()
	r.RateWithoutPAN = d("1.5")
	assert.ErrorIs(t, r.Validate(), domain.ErrInvalidInput)
}

func TestValidatePAN(t *testing.T) {
	assert.NoError(t, tcs.ValidatePAN("ABCPE1234F"))
	assert.NoError(t, tcs.ValidatePAN(" abcpe 1234f "))
	assert.Equal(t, "ABCPE1234F", tcs.NormalizePAN(" abcpe 1234f "))

	for _, bad := range []string{"", "ABCPE1234", "ABCP12345F", "1BCPE1234F", "ABCPE1234FF"} {
		assert.ErrorIs(t, tcs.ValidatePAN(bad), domain.ErrInvalidInput, bad)
	}
}
