package tcs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/joyeria-api/internal/domain"
)

// panPattern formato PAN: 5 letras, 4 dígitos, 1 letra (ej. ABCPE1234F).
var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// NormalizePAN quita espacios y pasa a mayúsculas.
func NormalizePAN(pan string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(pan), " ", ""))
}

// ValidatePAN valida el formato del PAN normalizado.
func ValidatePAN(pan string) error {
	if !panPattern.MatchString(NormalizePAN(pan)) {
		return fmt.Errorf("%w: PAN %q con formato inválido", domain.ErrInvalidInput, pan)
	}
	return nil
}
