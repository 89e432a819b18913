package exchange

import (
	"fmt"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/entity"
)

// ValidateTransition solo PENDING puede pasar a COMPLETED o CANCELLED; ambos son terminales.
func ValidateTransition(current, target string) error {
	if current == entity.ExchangeStatusPending &&
		(target == entity.ExchangeStatusCompleted || target == entity.ExchangeStatusCancelled) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, target)
}
