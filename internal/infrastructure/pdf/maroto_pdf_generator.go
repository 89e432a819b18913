// Package pdf genera la representación impresa del resumen trimestral Form 26Q.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Form 26Q + año fiscal │ trimestre + período         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: N° | Fecha | Cliente | PAN | Venta | Tasa | TCS      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SUBTOTALES por tipo TCS                                     │
//	│  TOTALES: ventas / TCS / registros / PAN distintos           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el resumen + leyenda                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/application/form26q"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 120, Green: 80, Blue: 0}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ form26q.PDFExporter = (*Form26QGenerator)(nil)

// Form26QGenerator implementa form26q.PDFExporter usando Maroto v2.
type Form26QGenerator struct {
	storeName string
}

// NewForm26QGenerator construye el generador. storeName aparece en el encabezado.
func NewForm26QGenerator(storeName string) *Form26QGenerator {
	return &Form26QGenerator{storeName: storeName}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *Form26QGenerator) Generate(r *form26q.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Form 26Q "+r.FinancialYear+" "+r.Quarter, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName, r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(r.Lines)...)
	if len(r.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin registros TCS en el trimestre.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(subtotalRows(r.ByType)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(storeName string, r *form26q.Report) core.Row {
	period := r.PeriodFrom.Format("02/01/2006") + " - " + r.PeriodTo.AddDate(0, 0, -1).Format("02/01/2006")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(storeName, "Joyería"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Resumen TCS sección 206C(1H)", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FORM 26Q", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("AF "+r.FinancialYear+" · "+r.Quarter, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Período: "+period, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("N°", 1, align.Center),
		h("Fecha", 2, align.Left),
		h("Cliente", 2, align.Left),
		h("PAN", 2, align.Left),
		h("Venta", 2, align.Right),
		h("Tasa", 1, align.Center),
		h("TCS", 2, align.Right),
	)
}

func tableDetailRows(lines []form26q.Line) []core.Row {
	result := make([]core.Row, 0, len(lines))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, l := range lines {
		result = append(result, row.New(6).Add(
			cell(strconv.Itoa(l.Serial), 1, align.Center),
			cell(l.TransactionDate.Format("02/01/2006"), 2, align.Left),
			cell(l.CustomerID, 2, align.Left),
			cell(nonEmpty(l.PANNumber, "PANNOTAVBL"), 2, align.Left),
			cell(formatINR(l.SaleAmount), 2, align.Right),
			cell(formatRate(l.TcsRate), 1, align.Center),
			cell(formatINR(l.TcsAmount), 2, align.Right),
		))
	}
	return result
}

func subtotalRows(subs []form26q.TypeSubtotal) []core.Row {
	rows := make([]core.Row, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(s.TcsType, props.Text{Size: 8, Style: fontstyle.Bold, Left: 1})),
			col.New(2).Add(text.New(strconv.Itoa(s.Count)+" reg.", props.Text{Size: 8, Align: align.Right})),
			col.New(3).Add(text.New(formatINR(s.SaleAmount), props.Text{Size: 8, Align: align.Right})),
			col.New(3).Add(text.New(formatINR(s.TcsAmount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

func totalsRow(r *form26q.Report) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Registros:"),
			label("PAN distintos:"),
			label("Total ventas:"),
			label("TOTAL TCS:"),
		),
		col.New(3).Add(
			value(strconv.Itoa(r.Count)),
			value(strconv.Itoa(len(r.DistinctPANs))),
			value(formatINR(r.TotalSaleAmount)),
			text.New(formatINR(r.TotalTcsAmount), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

func footerRow(r *form26q.Report) core.Row {
	summary := strings.Join([]string{
		"26Q", r.FinancialYear, r.Quarter,
		strconv.Itoa(r.Count), r.TotalSaleAmount.StringFixed(2), r.TotalTcsAmount.StringFixed(2),
	}, "|")
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(summary, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Resumen generado desde los registros inmutables del ledger TCS.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Regenerar el mismo trimestre produce el mismo documento.", props.Text{
				Size: 8, Top: 10, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatINR agrupa al estilo indio con 2 decimales.
// Ej: 1000000 → "Rs. 10,00,000.00", 12345.5 → "Rs. 12,345.50"
func formatINR(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "Rs. " + groupIndian(intPart) + "." + frac
}

// groupIndian inserta comas: últimos 3 dígitos y luego grupos de 2.
func groupIndian(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	head, tail := s[:n-3], s[n-3:]
	buf := make([]byte, 0, n+n/2)
	for i, c := range []byte(head) {
		if i > 0 && (len(head)-i)%2 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf) + "," + tail
}

// formatRate muestra la tasa como porcentaje (0.001 → "0.1%").
func formatRate(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "-"
	}
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}
