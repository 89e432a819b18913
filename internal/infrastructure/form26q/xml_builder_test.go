package form26q_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appform26q "github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/form26q"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleReport() *appform26q.Report {
	return &appform26q.Report{
		FinancialYear: "2024-25",
		Quarter:       "Q1",
		PeriodFrom:    time.Date(2024, time.April, 1, 0, 0, 0, 0, fiscal.IST),
		PeriodTo:      time.Date(2024, time.July, 1, 0, 0, 0, 0, fiscal.IST),
		Lines: []appform26q.Line{
			{Serial: 1, TransactionID: "t1", SaleID: "V1", CustomerID: "C1", PANNumber: "ABCPE1234F",
				TransactionDate: time.Date(2024, time.May, 2, 11, 30, 0, 0, fiscal.IST),
				SaleAmount:      d("100000"), TcsRate: d("0.001"), TcsAmount: d("100"), TcsType: entity.TcsTypeWithPAN},
			{Serial: 2, TransactionID: "t2", SaleID: "V2", CustomerID: "C2",
				TransactionDate: time.Date(2024, time.June, 3, 17, 0, 0, 0, fiscal.IST),
				SaleAmount:      d("50000.5"), TcsRate: d("0.01"), TcsAmount: d("500.01"), TcsType: entity.TcsTypeWithoutPAN},
		},
		TotalSaleAmount: d("150000.5"),
		TotalTcsAmount:  d("600.01"),
		Count:           2,
		ByType: []appform26q.TypeSubtotal{
			{TcsType: entity.TcsTypeWithPAN, Count: 1, SaleAmount: d("100000"), TcsAmount: d("100")},
			{TcsType: entity.TcsTypeWithoutPAN, Count: 1, SaleAmount: d("50000.5"), TcsAmount: d("500.01")},
		},
		DistinctPANs: []string{"ABCPE1234F"},
	}
}

func TestBuild_DigestEstable(t *testing.T) {
	svc := form26q.NewXMLBuilderService("MUMJ12345A")

	a, digestA, err := svc.Build(sampleReport())
	require.NoError(t, err)
	b, digestB, err := svc.Build(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, a, b, "mismo reporte, mismos bytes")
	assert.Equal(t, digestA, digestB)
	assert.Len(t, digestA, 64)

	recomputed, err := form26q.Digest(a)
	require.NoError(t, err)
	assert.Equal(t, digestA, recomputed)
}

func TestBuild_DigestCambiaConLosDatos(t *testing.T) {
	svc := form26q.NewXMLBuilderService("")
	_, before, err := svc.Build(sampleReport())
	require.NoError(t, err)

	r := sampleReport()
	r.Lines[0].TcsAmount = d("101")
	_, after, err := svc.Build(r)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestBuild_Contenido(t *testing.T) {
	out, _, err := form26q.NewXMLBuilderService("MUMJ12345A").Build(sampleReport())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.SelectElement("Form26Q")
	require.NotNil(t, root)
	assert.Equal(t, form26q.NsForm26Q, root.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "MUMJ12345A", root.SelectAttrValue("deductorTAN", ""))

	period := root.SelectElement("Period")
	assert.Equal(t, "2024-04-01", period.SelectAttrValue("from", ""))
	assert.Equal(t, "2024-06-30", period.SelectAttrValue("to", ""), "fin inclusivo")

	deductees := root.FindElements("Deductees/Deductee")
	require.Len(t, deductees, 2)
	assert.Equal(t, "PANNOTAVBL", deductees[1].SelectElement("PAN").Text())
	assert.Equal(t, "50000.50", deductees[1].SelectElement("SaleAmount").Text())
	assert.Equal(t, "2024-05-02T11:30:00+05:30", deductees[0].SelectElement("TransactionDate").Text())

	totals := root.SelectElement("Totals")
	assert.Equal(t, "600.01", totals.SelectAttrValue("tcsAmount", ""))
	assert.True(t, strings.HasPrefix(string(out), "<?xml"))
}

func TestBuild_ReporteNil(t *testing.T) {
	_, _, err := form26q.NewXMLBuilderService("").Build(nil)
	assert.Error(t, err)
}
