package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
)

// Form26QEnqueuer encola la generación del Form 26Q en segundo plano.
type Form26QEnqueuer interface {
	EnqueueForm26Q(ctx context.Context, fy fiscal.FinancialYear, q fiscal.Quarter) (taskID, queue string, err error)
}

// TcsHandler consultas del acumulado TCS y reporte Form 26Q.
type TcsHandler struct {
	ledger   *tcs.Ledger
	agg      *form26q.Aggregator
	xml      form26q.XMLExporter
	pdf      form26q.PDFExporter
	enqueuer Form26QEnqueuer // nil = sin cola
	cal      fiscal.Calendar
}

// NewTcsHandler construye el handler. enqueuer puede ser nil.
func NewTcsHandler(
	ledger *tcs.Ledger,
	agg *form26q.Aggregator,
	xml form26q.XMLExporter,
	pdf form26q.PDFExporter,
	enqueuer Form26QEnqueuer,
	cal fiscal.Calendar,
) *TcsHandler {
	return &TcsHandler{ledger: ledger, agg: agg, xml: xml, pdf: pdf, enqueuer: enqueuer, cal: cal}
}

// State GET /api/tcs/customers/:customerID/years/:fy
func (h *TcsHandler) State(c *fiber.Ctx) error {
	fy, err := fiscal.ParseFinancialYear(c.Params("fy"))
	if err != nil {
		return respondError(c, err)
	}
	st, err := h.ledger.State(c.UserContext(), c.Params("customerID"), fy)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TcsStateResponse{
		CustomerID:           st.CustomerID,
		FinancialYear:        st.FinancialYear,
		CumulativeSaleAmount: st.CumulativeSaleAmount,
		HasValidPAN:          st.HasValidPAN,
		PANNumber:            st.PANNumber,
		Version:              st.Version,
	})
}

// Preview POST /api/tcs/preview
func (h *TcsHandler) Preview(c *fiber.Ctx) error {
	var in dto.TcsPreviewRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	at, err := parseDate(in.Date, h.cal.Location())
	if err != nil {
		return badRequest(c, "VALIDATION", "date inválida")
	}
	p, err := h.ledger.Preview(c.UserContext(), in.CustomerID, in.SaleAmount, at)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TcsPreviewResponse{
		CustomerID:                 p.CustomerID,
		FinancialYear:              p.FinancialYear,
		Quarter:                    p.Quarter,
		HasValidPAN:                p.HasValidPAN,
		PANNumber:                  p.PANNumber,
		CumulativeSaleAmountBefore: p.Decision.CumulativeBefore,
		TcsRate:                    p.Decision.Rate,
		TcsAmount:                  p.Decision.Amount,
		TcsType:                    p.Decision.Type,
		IsExempted:                 p.Decision.IsExempted,
		ExemptionReason:            p.Decision.ExemptionReason,
	})
}

// Form26Q GET /api/tcs/form26q?fy=2024-25&quarter=Q1&format=json|xml|pdf
func (h *TcsHandler) Form26Q(c *fiber.Ctx) error {
	fy, q, err := parsePeriod(c.Query("fy"), c.Query("quarter"))
	if err != nil {
		return respondError(c, err)
	}
	report, err := h.agg.Generate(c.UserContext(), fy, q)
	if err != nil {
		return respondError(c, err)
	}
	name := "form26q_" + fy.String() + "_" + q.String()
	switch strings.ToLower(c.Query("format", "json")) {
	case "json":
		return c.JSON(toForm26QResponse(report))
	case "xml":
		body, digest, err := h.xml.Build(report)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`.xml"`)
		c.Set("X-Content-Digest", "sha256="+digest)
		return c.Send(body)
	case "pdf":
		body, err := h.pdf.Generate(report)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`.pdf"`)
		return c.Send(body)
	default:
		return badRequest(c, "VALIDATION", "format debe ser json, xml o pdf")
	}
}

// EnqueueForm26Q POST /api/tcs/form26q/jobs
func (h *TcsHandler) EnqueueForm26Q(c *fiber.Ctx) error {
	if h.enqueuer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "QUEUE_DISABLED", Message: "cola de tareas no configurada"})
	}
	var in dto.Form26QJobRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	fy, q, err := parsePeriod(in.FinancialYear, in.Quarter)
	if err != nil {
		return respondError(c, err)
	}
	taskID, queue, err := h.enqueuer.EnqueueForm26Q(c.UserContext(), fy, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.Form26QJobResponse{TaskID: taskID, Queue: queue})
}

func parsePeriod(fyRaw, qRaw string) (fiscal.FinancialYear, fiscal.Quarter, error) {
	fy, err := fiscal.ParseFinancialYear(fyRaw)
	if err != nil {
		return fiscal.FinancialYear{}, 0, err
	}
	q, err := fiscal.ParseQuarter(qRaw)
	if err != nil {
		return fiscal.FinancialYear{}, 0, err
	}
	return fy, q, nil
}

func toForm26QResponse(r *form26q.Report) dto.Form26QResponse {
	out := dto.Form26QResponse{
		FinancialYear:   r.FinancialYear,
		Quarter:         r.Quarter,
		PeriodFrom:      r.PeriodFrom.Format(time.DateOnly),
		PeriodTo:        r.PeriodTo.AddDate(0, 0, -1).Format(time.DateOnly),
		Count:           r.Count,
		TotalSaleAmount: r.TotalSaleAmount,
		TotalTcsAmount:  r.TotalTcsAmount,
		ByType:          make([]dto.Form26QSubtotalResponse, 0, len(r.ByType)),
		DistinctPANs:    append([]string{}, r.DistinctPANs...),
		Lines:           make([]dto.Form26QLineResponse, 0, len(r.Lines)),
	}
	for _, s := range r.ByType {
		out.ByType = append(out.ByType, dto.Form26QSubtotalResponse{
			TcsType: s.TcsType, Count: s.Count, SaleAmount: s.SaleAmount, TcsAmount: s.TcsAmount,
		})
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, dto.Form26QLineResponse{
			Serial:          l.Serial,
			TransactionID:   l.TransactionID,
			SaleID:          l.SaleID,
			CustomerID:      l.CustomerID,
			PANNumber:       l.PANNumber,
			TransactionDate: l.TransactionDate.Format(time.RFC3339),
			SaleAmount:      l.SaleAmount,
			TcsRate:         l.TcsRate,
			TcsAmount:       l.TcsAmount,
			TcsType:         l.TcsType,
			ExemptionReason: l.ExemptionReason,
		})
	}
	return out
}
