// Package rates contiene la regla de vigencia de tarifas (metal y piedras).
package rates

import "time"

// Effective fila con fecha de vigencia e ID incremental.
type Effective interface {
	EffectiveOn() time.Time
	RowID() int64
}

// SelectEffective elige, entre las filas con vigencia <= asOf, la de vigencia máxima.
// Si dos filas comparten fecha gana el ID mayor (la insertada más recientemente).
// Las fechas se comparan como días calendario.
func SelectEffective[T Effective](rows []T, asOf time.Time) (T, bool) {
	var (
		best  T
		found bool
	)
	limit := DateOnly(asOf)
	for _, r := range rows {
		eff := DateOnly(r.EffectiveOn())
		if eff.After(limit) {
			continue
		}
		if !found {
			best, found = r, true
			continue
		}
		bestEff := DateOnly(best.EffectiveOn())
		if eff.After(bestEff) || (eff.Equal(bestEff) && r.RowID() > best.RowID()) {
			best = r
		}
	}
	return best, found
}

// DateOnly trunca t a su día calendario (en su propia zona) expresado en UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
