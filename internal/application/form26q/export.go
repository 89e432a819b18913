package form26q

import (
	"context"
	"fmt"

	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// ExportResult archivos generados para un trimestre.
type ExportResult struct {
	Report    *Report
	XMLPath   string
	XMLDigest string
	PDFPath   string
}

// ExportService genera el reporte y guarda sus versiones XML y PDF (lo usa el worker).
type ExportService struct {
	agg     *Aggregator
	xml     XMLExporter
	pdf     PDFExporter
	storage FileStorage
	log     *logger.Logger
}

// NewExportService construye el servicio.
func NewExportService(agg *Aggregator, xml XMLExporter, pdf PDFExporter, storage FileStorage, log *logger.Logger) *ExportService {
	return &ExportService{agg: agg, xml: xml, pdf: pdf, storage: storage, log: log.Component("form26q_export")}
}

// Export genera y guarda ambos archivos en un solo lote: se guardan los dos o ninguno.
// Los nombres dependen solo del período, así que reexportar un trimestre reemplaza
// los archivos anteriores.
func (s *ExportService) Export(ctx context.Context, fy fiscal.FinancialYear, q fiscal.Quarter) (*ExportResult, error) {
	report, err := s.agg.Generate(ctx, fy, q)
	if err != nil {
		return nil, err
	}
	xmlBytes, digest, err := s.xml.Build(report)
	if err != nil {
		return nil, err
	}
	pdfBytes, err := s.pdf.Generate(report)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("form26q_%s_%s", fy, q)
	paths, err := s.storage.SaveAll(
		File{Name: base + ".xml", Data: xmlBytes},
		File{Name: base + ".pdf", Data: pdfBytes},
	)
	if err != nil {
		return nil, fmt.Errorf("guardar Form 26Q: %w", err)
	}
	xmlPath, pdfPath := paths[0], paths[1]

	s.log.Info().Str("financial_year", fy.String()).Str("quarter", q.String()).
		Int("count", report.Count).Str("total_tcs", report.TotalTcsAmount.String()).
		Str("digest", digest).Msg("Form 26Q exportado")
	return &ExportResult{Report: report, XMLPath: xmlPath, XMLDigest: digest, PDFPath: pdfPath}, nil
}
