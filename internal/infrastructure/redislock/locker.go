// Package redislock bloqueo distribuido por ítem sobre Redis (SET NX PX), para varias instancias del servicio.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

var _ inventory.Locker = (*Locker)(nil)

// releaseScript borra la clave solo si el token coincide (no libera el bloqueo de otro dueño).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Options parámetros del bloqueo.
type Options struct {
	Timeout time.Duration // espera máxima por el bloqueo
	TTL     time.Duration // vida de la clave; cubre la caída del dueño
	Retry   time.Duration // intervalo entre intentos
	Prefix  string
}

// Locker implementa inventory.Locker.
type Locker struct {
	rdb  *redis.Client
	opts Options
	log  zerolog.Logger
}

// NewClient crea el cliente y verifica la conexión (PING con 5s de espera).
func NewClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// New construye el locker. Valores en cero toman defaults (2s, 10s, 20ms, "stockledger:lock:").
func New(rdb *redis.Client, opts Options, log zerolog.Logger) *Locker {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Retry <= 0 {
		opts.Retry = 20 * time.Millisecond
	}
	if opts.Prefix == "" {
		opts.Prefix = "stockledger:lock:"
	}
	return &Locker{rdb: rdb, opts: opts, log: log}
}

// Acquire reintenta SET NX hasta Timeout; al agotarse devuelve domain.ErrConcurrentModification.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := l.opts.Prefix + key
	token := uuid.New().String()
	deadline := time.Now().Add(l.opts.Timeout)

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.opts.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redislock: set %s: %w", redisKey, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}
		if time.Now().Add(l.opts.Retry).After(deadline) {
			return nil, domain.ErrConcurrentModification
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.opts.Retry):
		}
	}
}

func (l *Locker) releaser(redisKey, token string) func() {
	return func() {
		// contexto propio: la liberación debe ocurrir aunque el request se haya cancelado
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := releaseScript.Run(ctx, l.rdb, []string{redisKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.log.Error().Err(err).Str("key", redisKey).Msg("liberar bloqueo")
		}
	}
}
