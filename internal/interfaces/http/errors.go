package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/joyeria-api/internal/application/dto"
	"github.com/jhoicas/joyeria-api/internal/domain"
)

// errorStatus código HTTP y código de error de cada error de dominio.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrRateNotConfigured, fiber.StatusUnprocessableEntity, "RATE_NOT_CONFIGURED"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrThresholdRaceDetected, fiber.StatusConflict, "THRESHOLD_RACE"},
	{domain.ErrVersionConflict, fiber.StatusConflict, "VERSION_CONFLICT"},
	{domain.ErrExemptionLookupFailed, fiber.StatusServiceUnavailable, "EXEMPTION_LOOKUP_FAILED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// respondError traduce el error a dto.ErrorResponse. Errores sin mapear: 500 INTERNAL.
func respondError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
