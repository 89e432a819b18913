package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// dateParam día calendario de t en su propia zona, como texto para castear a DATE.
func dateParam(t time.Time) string {
	return t.Format("2006-01-02")
}

// nullableDecimal puntero nil -> NULL.
func nullableDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
