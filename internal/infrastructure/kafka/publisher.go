// Package kafka publica los eventos del kardex en un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// ErrUnavailable el circuito está abierto; el evento no se intentó enviar.
var ErrUnavailable = errors.New("kafka: publicación no disponible (circuito abierto)")

// MessageWriter lo cumple *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter writer síncrono con acks de todas las réplicas. Los mensajes de un mismo ítem
// comparten clave y por lo tanto partición, así se conserva su orden.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
}

// BreakerSettings umbrales del circuit breaker del productor.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

// DefaultBreakerSettings 5 fallos seguidos abren el circuito por 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second, HalfOpenRequests: 1}
}

// Publisher implementa inventory.EventPublisher sobre Kafka con circuit breaker.
type Publisher struct {
	writer  MessageWriter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewPublisher construye el publicador.
func NewPublisher(writer MessageWriter, settings BreakerSettings, log zerolog.Logger) *Publisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-ledger-events",
		MaxRequests: settings.HalfOpenRequests,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	})
	return &Publisher{writer: writer, breaker: cb, log: log}
}

// Publish serializa los eventos a JSON y los envía en un solo lote.
func (p *Publisher) Publish(ctx context.Context, events ...inventory.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(events))
	now := time.Now()
	for _, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("kafka: serializar %s: %w", ev.EventType(), err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:     []byte(ev.PartitionKey()),
			Value:   body,
			Time:    now,
			Headers: []kafkago.Header{{Key: "event_type", Value: []byte(ev.EventType())}},
		})
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("kafka: escribir mensajes: %w", err)
	}
	p.log.Debug().Int("events", len(events)).Msg("eventos publicados")
	return nil
}

// State estado actual del circuito.
func (p *Publisher) State() gobreaker.State {
	return p.breaker.State()
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
