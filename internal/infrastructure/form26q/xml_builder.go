// Package form26q serializa el resumen trimestral de TCS a XML.
package form26q

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	appform26q "github.com/jhoicas/joyeria-api/internal/application/form26q"
)

// Namespace del documento.
const NsForm26Q = "urn:joyeria:tcs:form26q:v1"

var _ appform26q.XMLExporter = (*XMLBuilderService)(nil)

// XMLBuilderService construye el XML del Form 26Q.
type XMLBuilderService struct {
	deductorTAN string
}

// NewXMLBuilderService crea el servicio. deductorTAN identifica al recaudador (puede ir vacío).
func NewXMLBuilderService(deductorTAN string) *XMLBuilderService {
	return &XMLBuilderService{deductorTAN: deductorTAN}
}

// Build genera el XML y el digest SHA-256 (hex) de su forma canónica C14N.
// El mismo reporte produce siempre los mismos bytes y el mismo digest.
func (s *XMLBuilderService) Build(r *appform26q.Report) ([]byte, string, error) {
	if r == nil {
		return nil, "", fmt.Errorf("form26q: reporte vacío")
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Form26Q")
	root.CreateAttr("xmlns", NsForm26Q)
	root.CreateAttr("financialYear", r.FinancialYear)
	root.CreateAttr("quarter", r.Quarter)
	if s.deductorTAN != "" {
		root.CreateAttr("deductorTAN", s.deductorTAN)
	}

	period := root.CreateElement("Period")
	period.CreateAttr("from", r.PeriodFrom.Format("2006-01-02"))
	period.CreateAttr("to", r.PeriodTo.AddDate(0, 0, -1).Format("2006-01-02"))

	deductees := root.CreateElement("Deductees")
	for _, l := range r.Lines {
		d := deductees.CreateElement("Deductee")
		d.CreateAttr("serial", strconv.Itoa(l.Serial))
		d.CreateAttr("transactionId", l.TransactionID)
		d.CreateAttr("saleId", l.SaleID)
		d.CreateAttr("customerId", l.CustomerID)
		d.CreateAttr("type", l.TcsType)
		writeText(d, "PAN", panOrNotAvailable(l.PANNumber))
		writeText(d, "TransactionDate", l.TransactionDate.Format("2006-01-02T15:04:05-07:00"))
		writeText(d, "SaleAmount", l.SaleAmount.StringFixed(2))
		writeText(d, "TcsRate", l.TcsRate.String())
		writeText(d, "TcsAmount", l.TcsAmount.StringFixed(2))
		if l.ExemptionReason != "" {
			writeText(d, "ExemptionReason", l.ExemptionReason)
		}
	}

	subtotals := root.CreateElement("Subtotals")
	for _, st := range r.ByType {
		e := subtotals.CreateElement("Subtotal")
		e.CreateAttr("type", st.TcsType)
		e.CreateAttr("count", strconv.Itoa(st.Count))
		e.CreateAttr("saleAmount", st.SaleAmount.StringFixed(2))
		e.CreateAttr("tcsAmount", st.TcsAmount.StringFixed(2))
	}

	pans := root.CreateElement("DistinctPANs")
	pans.CreateAttr("count", strconv.Itoa(len(r.DistinctPANs)))
	for _, p := range r.DistinctPANs {
		writeText(pans, "PAN", p)
	}

	totals := root.CreateElement("Totals")
	totals.CreateAttr("count", strconv.Itoa(r.Count))
	totals.CreateAttr("saleAmount", r.TotalSaleAmount.StringFixed(2))
	totals.CreateAttr("tcsAmount", r.TotalTcsAmount.StringFixed(2))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("form26q: serializar XML: %w", err)
	}
	digest, err := Digest(out)
	if err != nil {
		return nil, "", err
	}
	return out, digest, nil
}

// Digest SHA-256 (hex) de la forma canónica C14N del XML.
func Digest(xmlBytes []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("form26q: canonicalizar XML: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func writeText(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

func panOrNotAvailable(pan string) string {
	if pan == "" {
		return "PANNOTAVBL"
	}
	return pan
}
