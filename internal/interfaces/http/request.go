package http

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// parseBody decodifica y valida el cuerpo. Si falla ya escribió la respuesta 400 y ok es false.
func parseBody(c *fiber.Ctx, out interface{}) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Namespace()+": "+fe.Tag())
			}
			return false, badRequest(c, "VALIDATION", strings.Join(msgs, "; "))
		}
		return false, badRequest(c, "VALIDATION", err.Error())
	}
	return true, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD (medianoche en loc). Vacío = tiempo cero.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}
