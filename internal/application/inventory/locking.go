package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain"
)

// withItemLock toma el bloqueo exclusivo del ítem (espera acotada), ejecuta fn y lo libera.
func withItemLock(ctx context.Context, locker Locker, metrics Metrics, op, itemID string, fn func() error) error {
	start := time.Now()
	release, err := locker.Acquire(ctx, itemID)
	metrics.LockWaited(time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return domain.NewError(domain.ErrConcurrentModification, op, itemID, "espera de bloqueo agotada tras %s", time.Since(start).Round(time.Millisecond))
		}
		return err
	}
	defer release()
	return fn()
}
