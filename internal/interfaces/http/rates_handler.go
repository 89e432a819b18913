package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/application/rates"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
)

// RatesHandler alta y consulta de tarifas.
type RatesHandler struct {
	uc  *rates.LookupUseCase
	cal fiscal.Calendar
}

// NewRatesHandler construye el handler.
func NewRatesHandler(uc *rates.LookupUseCase, cal fiscal.Calendar) *RatesHandler {
	return &RatesHandler{uc: uc, cal: cal}
}

// CreateMetal POST /api/rates/metal
func (h *RatesHandler) CreateMetal(c *fiber.Ctx) error {
	var in dto.CreateMetalRateRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	eff, err := parseDate(in.EffectiveDate, h.cal.Location())
	if err != nil {
		return badRequest(c, "VALIDATION", "effective_date inválida")
	}
	rate, err := h.uc.AddMetalRate(c.UserContext(), rates.AddMetalRateInput{
		MetalID:       in.MetalID,
		PurityID:      in.PurityID,
		RatePerGram:   in.RatePerGram,
		EffectiveDate: eff,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMetalRateResponse(rate))
}

// CurrentMetal GET /api/rates/metal/:purityID/current?as_of=2024-06-01
func (h *RatesHandler) CurrentMetal(c *fiber.Ctx) error {
	asOf, err := parseDate(c.Query("as_of"), h.cal.Location())
	if err != nil {
		return badRequest(c, "VALIDATION", "as_of inválido")
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	rate, err := h.uc.CurrentMetalRate(c.UserContext(), c.Params("purityID"), asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMetalRateResponse(rate))
}

// CreateStone POST /api/rates/stone
func (h *RatesHandler) CreateStone(c *fiber.Ctx) error {
	var in dto.CreateStoneRateRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	eff, err := parseDate(in.EffectiveDate, h.cal.Location())
	if err != nil {
		return badRequest(c, "VALIDATION", "effective_date inválida")
	}
	rate, err := h.uc.AddStoneRate(c.UserContext(), rates.AddStoneRateInput{
		Criteria:      toStoneCriteria(in.StoneCriteriaRequest),
		RatePerUnit:   in.RatePerUnit,
		EffectiveDate: eff,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StoneRateResponse{
		ID:            rate.ID,
		StoneID:       rate.StoneID,
		Carat:         rate.Carat,
		Cut:           rate.Cut,
		Color:         rate.Color,
		Clarity:       rate.Clarity,
		Grade:         rate.Grade,
		RatePerUnit:   rate.RatePerUnit,
		EffectiveDate: rate.EffectiveDate.Format(time.DateOnly),
	})
}

func toMetalRateResponse(r *entity.MetalRate) dto.MetalRateResponse {
	return dto.MetalRateResponse{
		ID:            r.ID,
		MetalID:       r.MetalID,
		PurityID:      r.PurityID,
		RatePerGram:   r.RatePerGram,
		EffectiveDate: r.EffectiveDate.Format(time.DateOnly),
	}
}

func toStoneCriteria(in dto.StoneCriteriaRequest) entity.StoneCriteria {
	return entity.StoneCriteria{
		StoneID: in.StoneID,
		Carat:   in.Carat,
		Cut:     in.Cut,
		Color:   in.Color,
		Clarity: in.Clarity,
		Grade:   in.Grade,
	}
}
