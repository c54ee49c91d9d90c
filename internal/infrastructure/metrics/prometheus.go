// Package metrics colectores Prometheus del servicio.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
)

var _ inventory.Metrics = (*Collector)(nil)

// Collector métricas del kardex y del HTTP, registradas en un Registerer propio.
type Collector struct {
	movementsRecorded *prometheus.CounterVec
	movementsRejected *prometheus.CounterVec
	lockWait          prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registra los colectores en reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		movementsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_recorded_total",
			Help: "Movimientos aceptados por tipo",
		}, []string{"type"}),
		movementsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_rejected_total",
			Help: "Movimientos rechazados por tipo y motivo",
		}, []string{"type", "reason"}),
		lockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "item_lock_wait_seconds",
			Help:    "Espera por el bloqueo de un ítem",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de requests HTTP",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (c *Collector) MovementRecorded(movementType string) {
	c.movementsRecorded.WithLabelValues(movementType).Inc()
}

func (c *Collector) MovementRejected(movementType, reason string) {
	c.movementsRejected.WithLabelValues(movementType, reason).Inc()
}

func (c *Collector) LockWaited(d time.Duration) {
	c.lockWait.Observe(d.Seconds())
}

// Middleware mide cada request usando la ruta registrada (no la URL) para acotar cardinalidad.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := ctx.Route().Path
		labels := []string{ctx.Method(), path, strconv.Itoa(status)}
		c.httpRequests.WithLabelValues(labels...).Inc()
		c.httpDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
