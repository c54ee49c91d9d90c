package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/kafka"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/stockledger-api/internal/interfaces/http"
	"github.com/jhoicas/stockledger-api/pkg/config"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.DB.Driver).
		Str("lock", cfg.Lock.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL o memoria del proceso.
	var (
		itemRepo repository.ItemRepository
		txRunner inventory.TxRunner
		ready    func() error
	)
	switch cfg.DB.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migrar esquema")
			}
		}
		itemRepo = postgres.NewItemRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
	default:
		store := memory.NewStore()
		itemRepo = memory.NewItemRepository(store)
		txRunner = memory.NewTxRunner(store)
	}

	// Bloqueo por ítem: local o distribuido.
	var locker inventory.Locker
	switch cfg.Lock.Backend {
	case "redis":
		rdb, err := redislock.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = redislock.New(rdb, redislock.Options{Timeout: cfg.Lock.Timeout, TTL: cfg.Lock.TTL}, log.Component("redislock"))
	default:
		locker = memory.NewKeyedLocker(cfg.Lock.Timeout)
	}

	// Eventos del kardex hacia integraciones (contabilidad).
	var publisher inventory.EventPublisher = inventory.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		p := kafka.NewPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), kafka.DefaultBreakerSettings(), log.Component("kafka"))
		defer p.Close()
		publisher = p
	}

	var (
		collector  *metrics.Collector
		gatherer   prometheus.Gatherer
		invMetrics inventory.Metrics = inventory.NoopMetrics{}
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = metrics.New(reg)
		gatherer = reg
		invMetrics = collector
	}

	ledgerLog := log.Component("ledger")
	catalogUC := inventory.NewCatalogUseCase(itemRepo, txRunner, locker, publisher, invMetrics, log.Component("catalog"))
	movementUC := inventory.NewRegisterMovementUseCase(txRunner, locker, publisher, invMetrics, ledgerLog, cfg.Ledger.MoneyScale)
	valuationUC := inventory.NewValuationUseCase(txRunner, ledgerLog, cfg.Ledger.MoneyScale)
	alertsUC := inventory.NewAlertsUseCase(itemRepo)

	app := httpRouter.NewServer(httpRouter.ServerConfig{
		AppName:  cfg.App.Name,
		Metrics:  collector,
		Gatherer: gatherer,
		Ready:    ready,
	}, httpRouter.RouterDeps{
		Catalog:   catalogUC,
		Movements: movementUC,
		Valuation: valuationUC,
		Alerts:    alertsUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Component("http"),
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "StockLedger API",
		}))
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
