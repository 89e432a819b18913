package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/application/exchange"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	domainexchange "github.com/jhoicas/joyeria-api/internal/domain/exchange"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
)

// ExchangeHandler canjes y recompras de metal usado.
type ExchangeHandler struct {
	uc  *exchange.UseCase
	cal fiscal.Calendar
}

// NewExchangeHandler construye el handler.
func NewExchangeHandler(uc *exchange.UseCase, cal fiscal.Calendar) *ExchangeHandler {
	return &ExchangeHandler{uc: uc, cal: cal}
}

// Calculate POST /api/exchanges/calculate
func (h *ExchangeHandler) Calculate(c *fiber.Ctx) error {
	in, ok, err := h.parseInput(c)
	if !ok {
		return err
	}
	val, err := h.uc.Calculate(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ExchangeCalculationResponse{
		Type:  in.Type,
		Items: make([]dto.ExchangeItemResponse, 0, len(val.Items)),
		ExchangeTotalsResponse: dto.ExchangeTotalsResponse{
			TotalGrossWeight:     val.Totals.GrossWeight,
			TotalNetWeight:       val.Totals.NetWeight,
			TotalPureWeight:      val.Totals.PureWeight,
			TotalMarketValue:     val.Totals.MarketValue,
			TotalDeductionAmount: val.Totals.DeductionAmount,
			TotalCreditAmount:    val.Totals.CreditAmount,
			NewPurchaseAmount:    val.Settlement.NewPurchaseAmount,
			BalanceRefund:        val.Settlement.BalanceRefund,
			CashPayment:          val.Settlement.CashPayment,
		},
	}
	for _, it := range val.Items {
		out.Items = append(out.Items, dto.ExchangeItemResponse{
			MetalID:                      it.MetalID,
			PurityID:                     it.PurityID,
			GrossWeight:                  it.GrossWeight,
			NetWeight:                    it.NetWeight,
			MakingChargeDeductionPercent: it.MakingChargeDeductionPercent,
			WastageDeductionPercent:      it.WastageDeductionPercent,
			PurityPercentage:             it.PurityPercentage,
			PureWeight:                   it.PureWeight,
			CurrentRatePerGram:           it.CurrentRatePerGram,
			MarketValue:                  it.MarketValue,
			TotalDeductionPercent:        it.TotalDeductionPercent,
			DeductionAmount:              it.DeductionAmount,
			CreditAmount:                 it.CreditAmount,
		})
	}
	return c.JSON(out)
}

// Create POST /api/exchanges
func (h *ExchangeHandler) Create(c *fiber.Ctx) error {
	in, ok, err := h.parseInput(c)
	if !ok {
		return err
	}
	tx, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toExchangeResponse(tx))
}

// GetByID GET /api/exchanges/:id
func (h *ExchangeHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toExchangeResponse(tx))
}

// Complete POST /api/exchanges/:id/complete
func (h *ExchangeHandler) Complete(c *fiber.Ctx) error {
	tx, err := h.uc.Complete(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toExchangeResponse(tx))
}

// Cancel POST /api/exchanges/:id/cancel
func (h *ExchangeHandler) Cancel(c *fiber.Ctx) error {
	tx, err := h.uc.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toExchangeResponse(tx))
}

func (h *ExchangeHandler) parseInput(c *fiber.Ctx) (exchange.Input, bool, error) {
	var req dto.ExchangeRequest
	if ok, err := parseBody(c, &req); !ok {
		return exchange.Input{}, false, err
	}
	asOf, err := parseDate(req.AsOf, h.cal.Location())
	if err != nil {
		return exchange.Input{}, false, badRequest(c, "VALIDATION", "as_of inválido")
	}
	in := exchange.Input{
		CustomerID:        req.CustomerID,
		Type:              req.Type,
		Items:             make([]domainexchange.ItemInput, 0, len(req.Items)),
		NewPurchaseAmount: req.NewPurchaseAmount,
		AsOf:              asOf,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, domainexchange.ItemInput{
			MetalID:                      it.MetalID,
			PurityID:                     it.PurityID,
			GrossWeight:                  it.GrossWeight,
			NetWeight:                    it.NetWeight,
			MakingChargeDeductionPercent: it.MakingChargeDeductionPercent,
			WastageDeductionPercent:      it.WastageDeductionPercent,
		})
	}
	return in, true, nil
}

func toExchangeResponse(tx *entity.ExchangeTransaction) dto.ExchangeResponse {
	out := dto.ExchangeResponse{
		ID:         tx.ID,
		CustomerID: tx.CustomerID,
		Type:       tx.Type,
		Status:     tx.Status,
		Items:      make([]dto.ExchangeItemResponse, 0, len(tx.Items)),
		CreatedBy:  tx.CreatedBy,
		CreatedAt:  tx.CreatedAt.Format(time.RFC3339),
		ExchangeTotalsResponse: dto.ExchangeTotalsResponse{
			TotalGrossWeight:     tx.TotalGrossWeight,
			TotalNetWeight:       tx.TotalNetWeight,
			TotalPureWeight:      tx.TotalPureWeight,
			TotalMarketValue:     tx.TotalMarketValue,
			TotalDeductionAmount: tx.TotalDeductionAmount,
			TotalCreditAmount:    tx.TotalCreditAmount,
			NewPurchaseAmount:    tx.NewPurchaseAmount,
			BalanceRefund:        tx.BalanceRefund,
			CashPayment:          tx.CashPayment,
		},
	}
	if tx.CompletedAt != nil {
		out.CompletedAt = tx.CompletedAt.Format(time.RFC3339)
	}
	for _, it := range tx.Items {
		out.Items = append(out.Items, dto.ExchangeItemResponse{
			ID:                           it.ID,
			MetalID:                      it.MetalID,
			PurityID:                     it.PurityID,
			GrossWeight:                  it.GrossWeight,
			NetWeight:                    it.NetWeight,
			MakingChargeDeductionPercent: it.MakingChargeDeductionPercent,
			WastageDeductionPercent:      it.WastageDeductionPercent,
			PurityPercentage:             it.PurityPercentage,
			PureWeight:                   it.PureWeight,
			CurrentRatePerGram:           it.CurrentRatePerGram,
			MarketValue:                  it.MarketValue,
			TotalDeductionPercent:        it.TotalDeductionPercent,
			DeductionAmount:              it.DeductionAmount,
			CreditAmount:                 it.CreditAmount,
		})
	}
	return out
}
