// Package ratesheet lee planillas CSV de tarifas de metal exportadas desde hojas de cálculo.
//
// Columnas: metal_id, purity_id, rate_per_gram, effective_date (YYYY-MM-DD). La primera fila
// se ignora si es encabezado. Separador "," o ";".
package ratesheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/joyeria-api/internal/domain"
)

// Codificaciones soportadas.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
)

// Row fila de la planilla.
type Row struct {
	Line          int
	MetalID       string
	PurityID      string
	RatePerGram   decimal.Decimal
	EffectiveDate time.Time // medianoche en loc
}

// Decoder envuelve r con el decodificador de la codificación indicada.
func Decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		return r, nil
	case EncodingWindows1252, "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case EncodingLatin1, "latin1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: codificación %q no soportada", domain.ErrInvalidInput, encoding)
	}
}

// Parse lee todas las filas. Junta los errores de todas las filas inválidas.
func Parse(r io.Reader, encoding string, loc *time.Location) ([]Row, error) {
	dec, err := Decoder(r, encoding)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("leer planilla: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectComma(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", domain.ErrInvalidInput, err)
	}

	var rows []Row
	var errs []error
	for i, rec := range records {
		line := i + 1
		if i == 0 && isHeader(rec) {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row, err := parseRecord(line, rec, loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	if len(errs) > 0 {
		return nil, errors.Join(append([]error{domain.ErrInvalidInput}, errs...)...)
	}
	return rows, nil
}

func parseRecord(line int, rec []string, loc *time.Location) (Row, error) {
	if len(rec) < 4 {
		return Row{}, fmt.Errorf("línea %d: se esperaban 4 columnas, hay %d", line, len(rec))
	}
	metal := strings.TrimSpace(rec[0])
	purity := strings.TrimSpace(rec[1])
	if metal == "" || purity == "" {
		return Row{}, fmt.Errorf("línea %d: metal y pureza requeridos", line)
	}
	rate, err := decimal.NewFromString(normalizeNumber(rec[2]))
	if err != nil || rate.IsNegative() {
		return Row{}, fmt.Errorf("línea %d: tarifa %q inválida", line, rec[2])
	}
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(rec[3]), loc)
	if err != nil {
		return Row{}, fmt.Errorf("línea %d: fecha %q inválida", line, rec[3])
	}
	return Row{Line: line, MetalID: metal, PurityID: purity, RatePerGram: rate, EffectiveDate: date}, nil
}

// normalizeNumber quita separadores de miles ("6,250.50" o "6 250.50").
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, " ", "")
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "metal_id")
}

func detectComma(raw []byte) rune {
	first := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		first = raw[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}
