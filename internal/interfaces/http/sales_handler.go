package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/application/pricing"
	"github.com/jhoicas/joyeria-api/internal/application/sales"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
)

// SalesHandler cotización de líneas y cierre de ventas.
type SalesHandler struct {
	pricing  *pricing.UseCase
	checkout *sales.CheckoutUseCase
	cal      fiscal.Calendar
}

// NewSalesHandler construye el handler.
func NewSalesHandler(p *pricing.UseCase, checkout *sales.CheckoutUseCase, cal fiscal.Calendar) *SalesHandler {
	return &SalesHandler{pricing: p, checkout: checkout, cal: cal}
}

// Quote POST /api/pricing/quote. No registra nada en el ledger TCS.
func (h *SalesHandler) Quote(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	asOf, err := parseDate(in.AsOf, h.cal.Location())
	if err != nil {
		return badRequest(c, "VALIDATION", "as_of inválido")
	}
	out := dto.QuoteResponse{Lines: make([]dto.PriceLineResponse, 0, len(in.Lines)), TotalAmount: decimal.Zero}
	for _, l := range in.Lines {
		res, err := h.pricing.PriceItem(c.UserContext(), toLineInput(l), asOf)
		if err != nil {
			return respondError(c, err)
		}
		out.Lines = append(out.Lines, toLineResponse(res))
		out.TotalAmount = out.TotalAmount.Add(res.TotalAmount)
	}
	return c.JSON(out)
}

// CreateSale POST /api/sales
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.Date, h.cal.Location())
	if err != nil {
		return badRequest(c, "VALIDATION", "date inválida")
	}
	lines := make([]pricing.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, toLineInput(l))
	}
	res, err := h.checkout.CreateSale(c.UserContext(), sales.Input{
		SaleID:     in.SaleID,
		CustomerID: in.CustomerID,
		Date:       date,
		Lines:      lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := dto.SaleResponse{
		SaleID:        res.SaleID,
		CustomerID:    res.CustomerID,
		Date:          res.Date.Format(time.RFC3339),
		Lines:         make([]dto.PriceLineResponse, 0, len(res.Lines)),
		SaleValue:     res.SaleValue,
		Tcs:           toTcsTransactionResponse(res.TcsTransaction),
		AmountPayable: res.AmountPayable,
	}
	for _, l := range res.Lines {
		out.Lines = append(out.Lines, toLineResponse(l))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func toLineInput(l dto.PriceLineRequest) pricing.LineInput {
	in := pricing.LineInput{
		PurityID:          l.PurityID,
		NetMetalWeight:    l.NetMetalWeight,
		MakingChargeType:  l.MakingChargeType,
		MakingChargeValue: l.MakingChargeValue,
		WastagePercentage: l.WastagePercentage,
		StoneAmount:       l.StoneAmount,
		StoneQuantity:     l.StoneQuantity,
		Quantity:          l.Quantity,
		DiscountAmount:    l.DiscountAmount,
		GSTPercentage:     l.GSTPercentage,
	}
	if l.Stone != nil {
		sc := toStoneCriteria(*l.Stone)
		in.Stone = &sc
	}
	return in
}

func toLineResponse(r *pricing.LineResult) dto.PriceLineResponse {
	return dto.PriceLineResponse{
		PurityID:         r.PurityID,
		PurityPercentage: r.PurityPercentage,
		RatePerGram:      r.RatePerGram,
		StoneRatePerUnit: r.StoneRatePerUnit,
		MetalAmount:      r.MetalAmount,
		MakingCharges:    r.MakingCharges,
		WastageAmount:    r.WastageAmount,
		StoneAmount:      r.StoneAmount,
		Subtotal:         r.Subtotal,
		TaxableAmount:    r.TaxableAmount,
		GSTAmount:        r.GSTAmount,
		TotalAmount:      r.TotalAmount,
	}
}

func toTcsTransactionResponse(t *entity.TcsTransaction) dto.TcsTransactionResponse {
	return dto.TcsTransactionResponse{
		ID:                         t.ID,
		SaleID:                     t.SaleID,
		CustomerID:                 t.CustomerID,
		FinancialYear:              t.FinancialYear,
		Quarter:                    t.Quarter,
		TransactionDate:            t.TransactionDate.Format(time.RFC3339),
		SaleAmount:                 t.SaleAmount,
		CumulativeSaleAmountBefore: t.CumulativeSaleAmountBefore,
		TcsRate:                    t.TcsRate,
		TcsAmount:                  t.TcsAmount,
		TcsType:                    t.TcsType,
		IsExempted:                 t.IsExempted,
		ExemptionReason:            t.ExemptionReason,
		PANNumber:                  t.PANNumber,
	}
}
