package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/kafka"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafkago.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func movementEvent(itemID string) *inventory.StockMovementRecordedEvent {
	return &inventory.StockMovementRecordedEvent{
		BaseEvent: inventory.BaseEvent{
			EventID:   "ev-1",
			Type:      inventory.EventTypeStockMovementRecorded,
			ItemID:    itemID,
			SKU:       "SKU-1",
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		MovementID: "mv-1",
		Sequence:   1,
	}
}

func TestPublish_ClaveYHeaderPorItem(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewPublisher(w, kafka.DefaultBreakerSettings(), zerolog.Nop())

	require.NoError(t, p.Publish(context.Background(), movementEvent("item-1")))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "item-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, inventory.EventTypeStockMovementRecorded, string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "mv-1", body["movement_id"])
	assert.Equal(t, "item-1", body["item_id"])
}

func TestPublish_SinEventosNoEscribe(t *testing.T) {
	w := &fakeWriter{err: errors.New("no debería llamarse")}
	p := kafka.NewPublisher(w, kafka.DefaultBreakerSettings(), zerolog.Nop())
	assert.NoError(t, p.Publish(context.Background()))
}

func TestPublish_CircuitoSeAbreTrasFallos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := kafka.NewPublisher(w, kafka.BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute, HalfOpenRequests: 1}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		err := p.Publish(context.Background(), movementEvent("item-1"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, kafka.ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, p.State())

	err := p.Publish(context.Background(), movementEvent("item-1"))
	assert.ErrorIs(t, err, kafka.ErrUnavailable, "con el circuito abierto no se intenta escribir")
}
