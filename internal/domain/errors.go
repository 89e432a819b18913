package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// ErrRateNotConfigured no existe tarifa vigente para la fecha; nunca se asume cero.
	ErrRateNotConfigured = errors.New("tarifa no configurada")
	// ErrThresholdRaceDetected se agotaron los reintentos optimistas sobre el acumulado TCS.
	ErrThresholdRaceDetected = errors.New("carrera detectada en el acumulado TCS")
	// ErrExemptionLookupFailed la política de exención no respondió; no se decide por defecto.
	ErrExemptionLookupFailed = errors.New("no se pudo consultar la exención TCS")
	// ErrInvalidTransition cambio de estado no permitido (ej. completar un canje cancelado).
	ErrInvalidTransition = errors.New("transición de estado inválida")
	// ErrVersionConflict otra escritura actualizó la fila primero (control optimista).
	ErrVersionConflict = errors.New("versión desactualizada")
)
