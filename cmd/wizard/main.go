package main

import (
	"context"
	"time"

	"agenda/internal/availability"
	"agenda/internal/bookings"
	"agenda/internal/bookings/repository"
	"agenda/internal/catalog"
	"agenda/internal/customers"
	mongoMigration "agenda/internal/migrations/mongo"
	"agenda/internal/sessions"
	"agenda/internal/wizard"
	"agenda/internal/wizard/handler"
	"agenda/pkg/app"
	"agenda/pkg/client"
	"agenda/pkg/config"
	"agenda/pkg/kafka"
	kafka_config "agenda/pkg/kafka/config"
	kafka_middleware "agenda/pkg/kafka/middleware"
	"agenda/pkg/retry"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ServiceName = "booking-wizard"

	sessionSweepInterval = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting booking wizard service")

	clients := client.NewClient()
	clients.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	clients.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
	db := clients.Mongo.Database(cfg.MongoDatabaseName)

	migrate(cfg, db)

	executor := retry.NewExecutor(retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}, cfg.Log)

	localStore := bookings.NewStore(
		repository.NewMongoBookingRepository(cfg, clients.Mongo),
		repository.NewSlotLockRepository(db),
		cfg.SlotLockTTL,
		cfg.Log,
	)
	var store availability.Store = localStore
	if cfg.AvailabilityStoreURL != "" {
		store = client.NewAvailabilityClient(cfg.AvailabilityStoreURL, cfg.AvailabilityRPS)
		cfg.Log.Info("Using remote availability store", "url", cfg.AvailabilityStoreURL)
	}

	cat := catalog.NewMongoCatalog(cfg, db)
	registry := sessions.NewRegistry(cfg.SessionTTL, cfg.Log)

	deps := wizard.Dependencies{
		Catalog:   cat,
		Gateway:   availability.NewGateway(store, executor, cfg.Log, availability.WithMaxConcurrentChecks(cfg.MaxConcurrentChecks)),
		Customers: customers.NewResolver(customers.NewMongoStore(cfg, db), cfg.Log),
		Store:     store,
		Retry:     executor,
		Guard:     submissionGuard(cfg, clients),
		Log:       cfg.Log,
	}

	producer, metrics := newProducer(cfg)
	if producer != nil {
		deps.Publisher = kafka.NewBookingPublisher(producer, ServiceName, cfg.PhoneRegion)
	}

	svc := wizard.NewService(deps, wizard.Config{
		WorkStart:       cfg.WorkStart,
		WorkEnd:         cfg.WorkEnd,
		StepMin:         cfg.SlotStepMin,
		MaxAlternatives: cfg.MaxAlternatives,
		Location:        cfg.Location(),
	})

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(healthChecks(clients), cfg.Log),
		handler.NewSessionHandler(svc, registry, cat, cfg.Log),
		handler.NewStoreHandler(localStore, cfg.Log),
	)
	serverApp.AddWorker(func(ctx context.Context) { registry.Run(ctx, sessionSweepInterval) })

	runErr := serverApp.Run(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if producer != nil {
		snap := metrics.Snapshot()
		cfg.Log.Info("Booking events published",
			"published", snap.Published,
			"failed", snap.Failed,
			"avg_publish_ms", snap.AvgPublishTime.Milliseconds(),
		)
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
	if err := clients.Close(ctx); err != nil {
		cfg.Log.Error("Failed to close clients", "error", err)
	}
	if runErr != nil {
		cfg.Log.Fatal("Booking wizard service failed", "error", runErr)
	}
}

// migrate applies the schema before serving; the standalone migrate job
// runs the same steps.
func migrate(cfg *config.Config, db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Failed to migrate database", "error", err)
	}
}

func submissionGuard(cfg *config.Config, clients *client.Client) wizard.SubmissionGuard {
	if clients.Redis == nil {
		cfg.Log.Warn("Redis not configured, duplicate submissions are only detected within this instance")
		return sessions.NewMemoryGuard(cfg.SubmissionTTL)
	}
	return sessions.NewRedisGuard(clients.Redis, cfg.SubmissionTTL)
}

// newProducer returns nil when no brokers are configured; bookings are then
// confirmed without emitting events.
func newProducer(cfg *config.Config) (*kafka.Producer, *kafka_middleware.Metrics) {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka not configured, booking events disabled")
		return nil, nil
	}

	kcfg, err := kafka_config.Load(cfg.KafkaBrokers, cfg.BookingEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	producer, err := kafka.NewProducer(kcfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	if kcfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	cfg.Log.Info("Kafka producer configured", "topic", kcfg.Topic, "dlq_topic", kcfg.DLQTopic)
	return producer, metrics
}

func healthChecks(clients *client.Client) map[string]handler.Check {
	checks := map[string]handler.Check{
		"mongo": func(ctx context.Context) error { return clients.Mongo.Ping(ctx, nil) },
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	return checks
}
