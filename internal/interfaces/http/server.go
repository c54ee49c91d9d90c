package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stockledger-api/internal/infrastructure/metrics"
)

// ServerConfig opciones de la app Fiber.
type ServerConfig struct {
	AppName  string
	Metrics  *metrics.Collector // nil = sin métricas HTTP
	Gatherer prometheus.Gatherer
	// Ready verifica dependencias para /health (nil = siempre listo).
	Ready func() error
}

// NewServer arma la app Fiber: recover, métricas, /health, /metrics y las rutas de la API.
func NewServer(cfg ServerConfig, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.Middleware())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if cfg.Ready != nil {
			if err := cfg.Ready(); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.AppName, "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.AppName})
	})
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	Router(app, deps)
	return app
}
