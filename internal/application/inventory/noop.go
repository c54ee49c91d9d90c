package inventory

import (
	"context"
	"time"
)

// NoopPublisher descarta los eventos (sin broker configurado).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }

// NoopMetrics no registra nada.
type NoopMetrics struct{}

func (NoopMetrics) MovementRecorded(string)         {}
func (NoopMetrics) MovementRejected(string, string) {}
func (NoopMetrics) LockWaited(time.Duration)        {}
