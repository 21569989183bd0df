package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fitryne/internal/app/commands"
	"fitryne/internal/app/dto"
	estimatesapp "fitryne/internal/app/handlers/estimates"
	"fitryne/internal/app/middleware"
	appoutbox "fitryne/internal/app/outbox"
	"fitryne/internal/app/policies"
	"fitryne/internal/app/queries"
	"fitryne/internal/domain/nutrition"
	"fitryne/internal/infra/ai"
	"fitryne/internal/infra/broker/kafka"
	rediscache "fitryne/internal/infra/cache/redis"
	"fitryne/internal/infra/config"
	mongostore "fitryne/internal/infra/db/mongo"
	ginserver "fitryne/internal/infra/http/gin"
	"fitryne/internal/infra/obs"
	relay "fitryne/internal/infra/outbox"
	"fitryne/internal/infra/storage/memory"
	"fitryne/internal/infra/validation"
)

const idempotencyTTL = 24 * time.Hour

type application struct {
	handlers ginserver.Handlers
	checks   []obs.Check
	relay    *relay.Worker
	closers  []func(context.Context) error
}

type storage struct {
	estimates   nutrition.EstimateRepository
	outbox      appoutbox.Outbox
	relayStore  appoutbox.RelayStore
	idempotency middleware.IdempotencyStore
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *obs.Metrics) (*application, error) {
	app := &application{}

	store, err := app.openStorage(ctx, cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}
	if err := app.openRelay(cfg, store, logger); err != nil {
		app.close(logger)
		return nil, err
	}
	port, err := app.openAI(ctx, cfg, logger, metrics)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	commandBus := commands.NewInMemoryBus()
	commands.MustRegister[estimatesapp.ComputeEstimateCommand, dto.Estimate](commandBus, estimatesapp.ComputeEstimateKey,
		estimatesapp.NewComputeEstimateHandler(store.estimates, store.outbox))
	commands.MustRegister[estimatesapp.AIEstimateCommand, dto.Estimate](commandBus, estimatesapp.AIEstimateKey,
		estimatesapp.NewAIEstimateHandler(port, store.estimates, store.outbox))

	queryBus := queries.NewInMemoryBus()
	queries.MustRegister[estimatesapp.ListHistoryQuery, dto.EstimateHistory](queryBus, estimatesapp.ListHistoryKey,
		&estimatesapp.ListHistoryHandler{Estimates: store.estimates, DefaultLimit: cfg.HistoryLimit})

	validator := validation.New()
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.ObserveCommands(logger, metrics),
		middleware.Validation(validator),
		middleware.Idempotency(store.idempotency),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.ObserveQueries(logger, metrics),
		middleware.QueryValidation(validator),
	)

	app.handlers = ginserver.Handlers{
		Estimates: ginserver.EstimateHandler{Commands: commandBusWithMiddleware},
		History:   ginserver.HistoryHandler{Queries: queryBusWithMiddleware},
		Options:   ginserver.OptionsHandler{},
	}
	return app, nil
}

func (a *application) openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	if cfg.StorageMode != config.StorageMongo {
		box := memory.NewOutbox()
		s := storage{
			estimates:   memory.NewEstimateRepository(),
			idempotency: memory.NewIdempotencyStore(idempotencyTTL),
		}
		// Without a relay nothing would ever drain the in-memory outbox.
		if cfg.RelayEnabled() {
			s.outbox, s.relayStore = box, box
		}
		logger.Info("using in-memory storage")
		return s, nil
	}

	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo connect: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.checks = append(a.checks, obs.Check{Name: "mongo", Probe: client.Ping})

	estimates, err := mongostore.NewEstimateRepository(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	box, err := relay.NewStore(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	idempotency, err := mongostore.NewIdempotencyStore(ctx, client.DB, idempotencyTTL)
	if err != nil {
		return storage{}, err
	}
	logger.Info("using mongo storage", "database", cfg.MongoDB)
	return storage{estimates: estimates, outbox: box, relayStore: box, idempotency: idempotency}, nil
}

func (a *application) openRelay(cfg config.Config, store storage, logger *slog.Logger) error {
	if !cfg.RelayEnabled() {
		logger.Info("kafka not configured, outbox relay disabled")
		return nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
	a.relay = &relay.Worker{
		Store:       store.relayStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger.With("component", "outbox"),
	}
	return nil
}

// openAI returns a nil port when no key is configured; the AI endpoint then
// answers 503 while the formula endpoint keeps working.
func (a *application) openAI(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *obs.Metrics) (policies.AICaloriePort, error) {
	if !cfg.AIEnabled() {
		logger.Warn("GEMINI_API_KEY not set, AI calorie estimates disabled")
		return nil, nil
	}
	gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return gemini.Close() })

	var port policies.AICaloriePort = &ai.Estimator{
		Generator: gemini,
		Timeout:   cfg.AITimeout,
		Logger:    logger.With("component", "ai"),
		Metrics:   metrics,
	}
	if cfg.RedisAddr == "" {
		return port, nil
	}
	client, err := rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, AI cache disabled", "error", err)
		return port, nil
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.checks = append(a.checks, obs.Check{Name: "redis", Probe: func(ctx context.Context) error { return client.Ping(ctx).Err() }})
	return &rediscache.AICache{
		Next:    port,
		Client:  client,
		TTL:     cfg.AICacheTTL,
		Logger:  logger.With("component", "ai-cache"),
		Metrics: metrics,
	}, nil
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
