package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Cada uno identifica un tipo de fallo;
// el contexto (ítem, operación, umbral violado) viaja en *Error.
var (
	ErrValidation              = errors.New("entrada inválida")
	ErrDuplicateSKU            = errors.New("el SKU ya existe")
	ErrItemNotFound            = errors.New("ítem no encontrado")
	ErrLotNotFound             = errors.New("lote no encontrado")
	ErrLotInsufficientQuantity = errors.New("cantidad insuficiente en el lote")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrConcurrentModification  = errors.New("modificación concurrente, reintente")
	ErrLedgerInconsistency     = errors.New("inconsistencia en el kardex")
	ErrInvalidStateTransition  = errors.New("transición de estado inválida")
)

// Error envuelve un error de dominio con el contexto necesario para que el llamador
// construya un mensaje preciso. errors.Is(err, ErrX) funciona sobre Kind.
type Error struct {
	Kind   error
	Op     string
	ItemID string
	Detail string
}

// NewError construye un *Error con detalle formateado.
func NewError(kind error, op, itemID, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, ItemID: itemID, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.ItemID != "" {
		msg += " (item " + e.ItemID + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Validation atajo para errores de entrada.
func Validation(op, itemID, format string, args ...any) *Error {
	return NewError(ErrValidation, op, itemID, format, args...)
}

// IsRetryable indica si el llamador puede reintentar automáticamente (con backoff).
// Solo la espera de bloqueo agotada lo es: el movimiento no se aplicó.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsFatal indica una violación interna de invariantes que requiere conciliación manual.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLedgerInconsistency)
}

// Code identificador estable del tipo de error para respuestas y métricas.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrDuplicateSKU):
		return "DUPLICATE_SKU"
	case errors.Is(err, ErrItemNotFound):
		return "ITEM_NOT_FOUND"
	case errors.Is(err, ErrLotNotFound):
		return "LOT_NOT_FOUND"
	case errors.Is(err, ErrLotInsufficientQuantity):
		return "LOT_INSUFFICIENT_QUANTITY"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrConcurrentModification):
		return "CONCURRENT_MODIFICATION"
	case errors.Is(err, ErrLedgerInconsistency):
		return "LEDGER_INCONSISTENCY"
	case errors.Is(err, ErrInvalidStateTransition):
		return "INVALID_STATE_TRANSITION"
	}
	return "INTERNAL_ERROR"
}
