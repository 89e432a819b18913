// Package fiscal clasifica fechas en año fiscal indio (1 de abril - 31 de marzo) y trimestre.
package fiscal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/joyeria-api/internal/domain"
)

// IST zona horaria de India (UTC+05:30, sin horario de verano).
var IST = time.FixedZone("IST", 5*3600+30*60)

// FinancialYear año fiscal identificado por el año calendario en que empieza (abril).
type FinancialYear struct {
	StartYear int
}

// String formato "2024-25".
func (fy FinancialYear) String() string {
	return fmt.Sprintf("%d-%02d", fy.StartYear, (fy.StartYear+1)%100)
}

// Next año fiscal siguiente.
func (fy FinancialYear) Next() FinancialYear { return FinancialYear{StartYear: fy.StartYear + 1} }

// Quarter trimestre fiscal: Q1 abr-jun, Q2 jul-sep, Q3 oct-dic, Q4 ene-mar.
type Quarter int

const (
	Q1 Quarter = iota + 1
	Q2
	Q3
	Q4
)

// String formato "Q1".."Q4".
func (q Quarter) String() string { return "Q" + strconv.Itoa(int(q)) }

// Valid indica si el trimestre está entre Q1 y Q4.
func (q Quarter) Valid() bool { return q >= Q1 && q <= Q4 }

// Calendar clasifica instantes en la zona horaria del negocio.
type Calendar struct {
	loc *time.Location
}

// NewCalendar construye el calendario; loc nil usa IST.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = IST
	}
	return Calendar{loc: loc}
}

// Location zona horaria del calendario.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return IST
	}
	return c.loc
}

// YearOf año fiscal al que pertenece t. Una venta del 31 de marzo pertenece al año que empezó el abril anterior.
func (c Calendar) YearOf(t time.Time) FinancialYear {
	local := t.In(c.Location())
	if local.Month() >= time.April {
		return FinancialYear{StartYear: local.Year()}
	}
	return FinancialYear{StartYear: local.Year() - 1}
}

// QuarterOf trimestre fiscal de t. Q4 cruza el cambio de año calendario.
func (c Calendar) QuarterOf(t time.Time) Quarter {
	m := t.In(c.Location()).Month()
	switch {
	case m >= time.April && m <= time.June:
		return Q1
	case m >= time.July && m <= time.September:
		return Q2
	case m >= time.October && m <= time.December:
		return Q3
	default:
		return Q4
	}
}

// Period año fiscal y trimestre de t.
func (c Calendar) Period(t time.Time) (FinancialYear, Quarter) {
	return c.YearOf(t), c.QuarterOf(t)
}

// YearRange primer instante del año fiscal y primer instante del siguiente [from, to).
func (c Calendar) YearRange(fy FinancialYear) (time.Time, time.Time) {
	from := time.Date(fy.StartYear, time.April, 1, 0, 0, 0, 0, c.Location())
	return from, from.AddDate(1, 0, 0)
}

// QuarterRange rango [from, to) del trimestre dentro del año fiscal.
func (c Calendar) QuarterRange(fy FinancialYear, q Quarter) (time.Time, time.Time) {
	start, _ := c.YearRange(fy)
	from := start.AddDate(0, 3*(int(q)-1), 0)
	return from, from.AddDate(0, 3, 0)
}

// PreviousQuarter trimestre anterior al que contiene t (para el reporte trimestral automático).
func (c Calendar) PreviousQuarter(t time.Time) (FinancialYear, Quarter) {
	fy, q := c.Period(t)
	if q == Q1 {
		return FinancialYear{StartYear: fy.StartYear - 1}, Q4
	}
	return fy, q - 1
}

// ParseFinancialYear interpreta "2024-25". El sufijo debe ser el año siguiente.
func ParseFinancialYear(s string) (FinancialYear, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return FinancialYear{}, fmt.Errorf("%w: año fiscal %q (formato YYYY-YY)", domain.ErrInvalidInput, s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return FinancialYear{}, fmt.Errorf("%w: año fiscal %q", domain.ErrInvalidInput, s)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil || end != (start+1)%100 {
		return FinancialYear{}, fmt.Errorf("%w: año fiscal %q no es consecutivo", domain.ErrInvalidInput, s)
	}
	return FinancialYear{StartYear: start}, nil
}

// ParseQuarter interpreta "Q1".."Q4" o "1".."4".
func ParseQuarter(s string) (Quarter, error) {
	raw := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "Q")
	n, err := strconv.Atoi(raw)
	q := Quarter(n)
	if err != nil || !q.Valid() {
		return 0, fmt.Errorf("%w: trimestre %q", domain.ErrInvalidInput, s)
	}
	return q, nil
}
