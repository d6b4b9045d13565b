package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"productverification/internal/platform/config"
	"productverification/internal/platform/kafka"
	"productverification/internal/platform/mongo"
	"productverification/internal/platform/postgres"
	"productverification/internal/platform/redis"
	"productverification/internal/product/events"
	"productverification/internal/product/lock"
	"productverification/internal/product/metrics"
	"productverification/internal/product/service"
	productstore "productverification/internal/product/store/product"
	"productverification/internal/product/store/uow"
	verificationstore "productverification/internal/product/store/verification"
	"productverification/internal/product/usecase"
	"productverification/pkg/platform/circuit"
)

// app holds the wired use cases plus whatever backends were configured.
// Any backend left unconfigured falls back to its in-memory implementation.
type app struct {
	products *usecase.Products
	registry *prometheus.Registry
	checks   map[string]func(context.Context) error
	closers  []func(context.Context) error
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{
		registry: prometheus.NewRegistry(),
		checks:   map[string]func(context.Context) error{},
	}
	if err := a.wire(ctx, cfg, log); err != nil {
		a.close(log)
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.registry)

	var verifications service.VerificationStore = verificationstore.NewInMemory()
	mc, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	if mc != nil {
		a.onClose(mc.Close)
		a.checks["mongo"] = mc.Health
		store := verificationstore.NewMongo(mc.Database)
		if err := store.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure verification indexes: %w", err)
		}
		verifications = store
	}

	var factory uow.Factory
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		a.onClose(closeDB(db))
		a.checks["postgres"] = db.PingContext
		if err := productstore.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure product schema: %w", err)
		}
		factory = uow.NewPostgres(db, verifications, uow.WithTimeout(cfg.TxTimeout), uow.WithLogger(log))
	} else {
		factory = uow.NewMemory(productstore.NewInMemory(), verifications)
	}

	var locker lock.Locker = lock.NewSharded()
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		a.onClose(func(context.Context) error { return rc.Close() })
		a.checks["redis"] = rc.Health
		locker = lock.NewRedis(rc.Client, cfg.VerifyLockTTL, lock.WithLogger(log))
	}

	bus := events.NewBus(events.NewLogListener(log))
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		a.onClose(func(context.Context) error { producer.Close(); return nil })
		a.checks["kafka"] = producer.Health
		if err := producer.EnsureTopic(ctx, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return err
		}
		breaker := circuit.New("kafka-events", circuit.WithCooldown(cfg.Kafka.BreakerCooldown))
		bus.Subscribe(events.NewBreakerListener(events.NewKafkaListener(producer, cfg.Kafka.Topic), breaker, log))
	}

	a.products = usecase.New(factory, bus,
		usecase.WithLogger(log),
		usecase.WithMetrics(m),
		usecase.WithLocker(locker),
		usecase.WithBoundaryValidation(cfg.StrictCreateValidation),
	)
	return nil
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close releases backends in reverse order of acquisition.
func (a *app) close(log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Warn("failed to close backend", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) backendNames() []string {
	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func closeDB(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}
