package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidState      = errors.New("transición de estado inválida")
	ErrConcurrency       = errors.New("conflicto de concurrencia, reintente la operación")
	ErrAccountLocked     = errors.New("cuenta bloqueada temporalmente")
)

// Error error de dominio con mensaje legible y detalles; Kind es uno de los sentinels de arriba.
type Error struct {
	Kind    error
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

// Unwrap permite errors.Is(err, domain.ErrNotFound) etc.
func (e *Error) Unwrap() error { return e.Kind }

// Validation crea un error de validación (400).
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound crea un error de recurso inexistente.
func NotFound(entity, id string) error {
	return &Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s no encontrado: %s", entity, id),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// InvalidState crea un error de transición no permitida desde el estado actual.
func InvalidState(entity, status, action string) error {
	return &Error{
		Kind:    ErrInvalidState,
		Message: fmt.Sprintf("%s en estado %q no admite %s", entity, status, action),
		Details: map[string]any{"entity": entity, "status": status, "action": action},
	}
}

// Forbidden crea un error de permisos insuficientes.
func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// Conflict crea un error de conflicto (código duplicado, referencia en uso, etc.).
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// InsufficientStockError indica qué producto no tiene disponible suficiente.
type InsufficientStockError struct {
	ProductID   string
	ProductCode string
	LocationID  string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductCode
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", name, e.Requested, e.Available)
}

// Is hace que errors.Is(err, ErrInsufficientStock) sea verdadero.
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// IsRetryable indica si la operación puede reintentarse (bloqueo, deadlock, serialización).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrency)
}

// Details extrae los detalles de un *Error o de un *InsufficientStockError.
func Details(err error) map[string]any {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return map[string]any{
			"product_id":   ise.ProductID,
			"product_code": ise.ProductCode,
			"location_id":  ise.LocationID,
			"requested":    ise.Requested,
			"available":    ise.Available,
		}
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
