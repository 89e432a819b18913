package fiscal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
)

var cal = fiscal.NewCalendar(fiscal.IST)

// ──────────────────────────────────────────────────────────────────────────────
// Frontera de año fiscal: el 31 de marzo a las 23:59 IST pertenece al año que
// termina; el 1 de abril a las 00:00 IST ya es el año siguiente, aunque en UTC
// ambos instantes caigan el 31 de marzo.
// ──────────────────────────────────────────────────────────────────────────────

func TestYearOf_FronteraEnIST(t *testing.T) {
	lastMinute := time.Date(2025, time.March, 31, 23, 59, 0, 0, fiscal.IST)
	firstMinute := time.Date(2025, time.April, 1, 0, 0, 0, 0, fiscal.IST)

	assert.Equal(t, "2024-25", cal.YearOf(lastMinute).String())
	assert.Equal(t, "2025-26", cal.YearOf(firstMinute).String())

	// El mismo instante expresado en UTC se clasifica igual.
	assert.Equal(t, time.March, firstMinute.UTC().Month())
	assert.Equal(t, "2025-26", cal.YearOf(firstMinute.UTC()).String())
}

func TestQuarterOf(t *testing.T) {
	cases := []struct {
		month time.Month
		want  fiscal.Quarter
	}{
		{time.April, fiscal.Q1}, {time.June, fiscal.Q1},
		{time.July, fiscal.Q2}, {time.September, fiscal.Q2},
		{time.October, fiscal.Q3}, {time.December, fiscal.Q3},
		{time.January, fiscal.Q4}, {time.March, fiscal.Q4},
	}
	for _, c := range cases {
		got := cal.QuarterOf(time.Date(2024, c.month, 15, 12, 0, 0, 0, fiscal.IST))
		assert.Equal(t, c.want, got, c.month.String())
	}
}

func TestQuarterRange_Q4CruzaElAnoCalendario(t *testing.T) {
	fy := fiscal.FinancialYear{StartYear: 2024}
	from, to := cal.QuarterRange(fy, fiscal.Q4)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, fiscal.IST), from)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, fiscal.IST), to)

	yFrom, yTo := cal.YearRange(fy)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, fiscal.IST), yFrom)
	assert.Equal(t, yTo, to)
}

func TestPreviousQuarter(t *testing.T) {
	fy, q := cal.PreviousQuarter(time.Date(2025, time.April, 1, 6, 0, 0, 0, fiscal.IST))
	assert.Equal(t, "2024-25", fy.String())
	assert.Equal(t, fiscal.Q4, q)

	fy, q = cal.PreviousQuarter(time.Date(2025, time.January, 1, 6, 0, 0, 0, fiscal.IST))
	assert.Equal(t, "2024-25", fy.String())
	assert.Equal(t, fiscal.Q3, q)
}

func TestParseFinancialYear(t *testing.T) {
	fy, err := fiscal.ParseFinancialYear("2024-25")
	require.NoError(t, err)
	assert.Equal(t, 2024, fy.StartYear)
	assert.Equal(t, "2025-26", fy.Next().String())

	fy, err = fiscal.ParseFinancialYear("2099-00")
	require.NoError(t, err)
	assert.Equal(t, 2099, fy.StartYear)

	for _, bad := range []string{"2024", "2024-26", "24-25", "abcd-ef", ""} {
		_, err := fiscal.ParseFinancialYear(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, bad)
	}
}

func TestParseQuarter(t *testing.T) {
	q, err := fiscal.ParseQuarter("q3")
	require.NoError(t, err)
	assert.Equal(t, fiscal.Q3, q)

	q, err = fiscal.ParseQuarter("2")
	require.NoError(t, err)
	assert.Equal(t, "Q2", q.String())

	for _, bad := range []string{"Q0", "Q5", "", "X"} {
		_, err := fiscal.ParseQuarter(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, bad)
	}
}
