package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

var _ inventory.Locker = (*KeyedLocker)(nil)

// DefaultLockTimeout espera máxima por el bloqueo de un ítem.
const DefaultLockTimeout = 2 * time.Second

// KeyedLocker exclusión mutua por clave con espera acotada. Claves distintas no compiten.
type KeyedLocker struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker timeout <= 0 usa DefaultLockTimeout.
func NewKeyedLocker(timeout time.Duration) *KeyedLocker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &KeyedLocker{slots: make(map[string]*slot), timeout: timeout}
}

// Acquire espera hasta timeout; si no obtiene el bloqueo devuelve domain.ErrConcurrentModification.
func (l *KeyedLocker) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.ref(key)
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
	case <-timer.C:
		l.unref(key)
		return nil, domain.ErrConcurrentModification
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key)
		})
	}, nil
}

func (l *KeyedLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *KeyedLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
