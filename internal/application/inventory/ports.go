package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ningún cambio aplicado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.ItemRepository,
		movements repository.StockMovementRepository,
	) error) error
}

// Locker serializa las operaciones de escritura de un mismo ítem. Acquire espera un tiempo acotado
// y devuelve domain.ErrConcurrentModification si no obtiene el bloqueo. Ítems distintos no se bloquean.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// EventPublisher entrega eventos del kardex a integraciones externas (p. ej. contabilidad).
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Metrics contadores del motor de inventario.
type Metrics interface {
	MovementRecorded(movementType string)
	MovementRejected(movementType, reason string)
	LockWaited(d time.Duration)
}
