package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	logger_adapter "github.com/mzton/vantage/internal/adapters/logger"
	"github.com/mzton/vantage/internal/adapters/memory"
	postgres_adapter "github.com/mzton/vantage/internal/adapters/postgres"
	rabbitmq_adapter "github.com/mzton/vantage/internal/adapters/rabbitmq"
	redis_adapter "github.com/mzton/vantage/internal/adapters/redis"
	"github.com/mzton/vantage/internal/adapters/renderer"
	"github.com/mzton/vantage/internal/adapters/rest"
	"github.com/mzton/vantage/internal/adapters/textgen"
	"github.com/mzton/vantage/internal/configs"
	"github.com/mzton/vantage/internal/constants"
	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
	"github.com/mzton/vantage/internal/core/usecase"
	fluentlogger "github.com/mzton/vantage/pkg/fluent_logger"
	"github.com/mzton/vantage/pkg/postgres"
	"github.com/mzton/vantage/pkg/rabbitmq/rabbitmq_common"
	"github.com/mzton/vantage/pkg/rabbitmq/rabbitmq_producer"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config       *configs.AppConfig
	apiServer    *rest.Server
	renderer     *renderer.SSERenderer
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	// optional backends, nil when not configured
	dbPool         *pgxpool.Pool
	redisClient    *goredis.Client
	connManager    *rabbitmq_common.ConnectionManager
	eventsProducer *rabbitmq_producer.Publisher
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	app := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       appLogger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = contextkeys.ContextWithLogger(ctx, appLogger)

	if err := app.build(ctx, baseLogger); err != nil {
		app.closeBackends()
		app.closeFluent()
		return nil, err
	}
	return app, nil
}

// build wires adapters, use cases and the REST server. Backends opened before
// a failure stay on the App so NewApp can close them.
func (a *App) build(ctx context.Context, baseLogger port.LoggerPort) error {
	cfg := a.config

	seed, err := loadSeed(cfg.Listings.SeedPath)
	if err != nil {
		a.logger.Error("Failed to load listings seed", err, port.Fields{"path": cfg.Listings.SeedPath})
		return err
	}

	repo, err := a.listingRepository(ctx, seed, baseLogger)
	if err != nil {
		return err
	}
	listingsUC := usecase.NewListingQueryUseCase(repo)

	all, err := listingsUC.FindAll(ctx)
	if err != nil {
		a.logger.Error("Failed to read listings for the cluster index", err, nil)
		return fmt.Errorf("failed to read listings: %w", err)
	}
	clusterIndex := renderer.NewClusterIndex(constants.ClusterConfig)
	clusterIndex.Load(all)
	clustersUC := usecase.NewClusterQueryUseCase(clusterIndex, listingsUC, constants.ClusterConfig)
	a.logger.Info("Cluster index built", port.Fields{"listings": len(all)})

	tokenStore, err := a.tokenStore(ctx)
	if err != nil {
		return err
	}
	credentialsUC := usecase.NewMapCredentialsUseCase(tokenStore, cfg.Map.EnvToken, cfg.Map.DemoToken)

	events, err := a.sessionEvents(baseLogger)
	if err != nil {
		return err
	}

	metrics := rest.NewMetrics("vantage")
	generator := a.textGenerator(metrics)
	// /api/ai always answers from the built-in assistant.
	builtin := textgen.NewFallbackGenerator()

	a.renderer = renderer.NewSSERenderer(baseLogger)

	view := usecase.DefaultViewSettings()
	registry := usecase.NewSessionRegistry(usecase.SessionDeps{
		Listings:  listingsUC,
		Generator: generator,
		Clusters:  clusterIndex,
		Renderer:  a.renderer,
		Events:    events,
		Metrics:   metrics,
		View:      view,
	})
	a.logger.Info("All use cases initialized.", nil)

	handlers := rest.Handlers{
		Listings: rest.NewListingsHandler(listingsUC, clustersUC),
		Map:      rest.NewMapHandler(view, constants.ClusterConfig, constants.Building3DConfig, constants.PriceMarkerMinZoom, credentialsUC),
		Sessions: rest.NewSessionHandler(registry, a.renderer, credentialsUC),
		Camera:   rest.NewCameraStreamHandler(a.renderer),
		AI:       rest.NewAIHandler(usecase.NewAnalyzeListingUseCase(builtin), usecase.NewChatReplyUseCase(builtin)),
	}
	router := rest.NewRouter(handlers, metrics, cfg.Rest.AllowedOrigins, baseLogger)
	a.apiServer = rest.NewServer(cfg.Rest.Port, router, baseLogger)
	a.logger.Info("REST API server configured.", nil)

	return nil
}

func loadSeed(path string) ([]domain.Listing, error) {
	if path == "" {
		return constants.MockListings, nil
	}
	return memory.LoadSeedFile(path)
}

func (a *App) listingRepository(ctx context.Context, seed []domain.Listing, baseLogger port.LoggerPort) (port.ListingRepositoryPort, error) {
	cfg := a.config

	if cfg.Listings.Source == configs.ListingsFromMemory {
		repo := memory.NewListingRepository(seed, cfg.Listings.Latency, baseLogger.WithFields(port.Fields{"component": "memory_listings"}))
		a.logger.Info("In-memory listing repository initialized.", port.Fields{"latency_ms": cfg.Listings.Latency.Milliseconds()})
		return repo, nil
	}

	dbPool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL: cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConns,
	})
	if err != nil {
		a.logger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

	repo, err := postgres_adapter.NewListingRepository(dbPool)
	if err != nil {
		a.logger.Error("Failed to create postgres listing repository", err, nil)
		return nil, fmt.Errorf("failed to create postgres listing repository: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		a.logger.Error("Failed to ensure listings schema", err, nil)
		return nil, err
	}

	placeable, dropped := domain.FilterPlaceable(seed)
	for _, l := range dropped {
		a.logger.Warn("Listing has invalid coordinates, skipping", port.Fields{"listing_id": l.ID})
	}
	inserted, err := repo.SeedIfEmpty(ctx, placeable)
	if err != nil {
		a.logger.Error("Failed to seed listings table", err, nil)
		return nil, err
	}
	a.logger.Info("Postgres listing repository initialized.", port.Fields{"seeded": inserted})
	return repo, nil
}

func (a *App) tokenStore(ctx context.Context) (port.TokenStorePort, error) {
	cfg := a.config

	if cfg.TokenStore == configs.TokenStoreMemory {
		return memory.NewTokenStore(), nil
	}

	client, err := redis_adapter.NewClient(ctx, redis_adapter.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		a.logger.Error("Failed to connect to Redis", err, port.Fields{"addr": cfg.Redis.Addr})
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.redisClient = client
	a.logger.Info("Redis token store initialized.", port.Fields{"addr": cfg.Redis.Addr})
	return redis_adapter.NewTokenStore(client), nil
}

// sessionEvents returns nil when RabbitMQ is disabled; coordinators then drop events.
func (a *App) sessionEvents(baseLogger port.LoggerPort) (port.SessionEventPublisherPort, error) {
	cfg := a.config
	if !cfg.RabbitMQ.Enabled {
		a.logger.Info("RabbitMQ disabled, session events are not published.", nil)
		return nil, nil
	}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewManager(rabbitmq_common.Config{URL: cfg.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		ExchangeName:             constants.SessionEventsExchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		a.logger.Error("Failed to create event producer", err, nil)
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventsProducer = producer

	adapter, err := rabbitmq_adapter.NewSessionEventsAdapter(producer)
	if err != nil {
		return nil, err
	}
	a.logger.Info("RabbitMQ session events producer initialized.", port.Fields{"exchange": constants.SessionEventsExchange})
	return adapter, nil
}

func (a *App) textGenerator(metrics port.MetricsPort) port.TextGeneratorPort {
	fallback := textgen.NewFallbackGenerator()
	if a.config.AI.ServiceURL == "" {
		a.logger.Info("No AI service configured, using the built-in assistant.", nil)
		return fallback
	}

	remote := textgen.NewRemoteClient(a.config.AI.ServiceURL, a.config.AI.APIKey, a.config.AI.Timeout)
	a.logger.Info("Remote text generator configured.", port.Fields{
		"target_url": a.config.AI.ServiceURL,
		"timeout_ms": a.config.AI.Timeout.Milliseconds(),
	})
	return textgen.NewResilientGenerator(remote, fallback, metrics)
}

func (a *App) Run() error {
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// open camera streams would otherwise hold Shutdown until the timeout
		if a.renderer != nil {
			a.renderer.Close()
		}
		if a.apiServer != nil {
			if err := a.apiServer.Stop(ctx); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		a.closeBackends()
		a.logger.Info("Application shut down gracefully.", nil)
		a.closeFluent()
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
		return nil
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		return err
	}
}

func (a *App) closeBackends() {
	if a.eventsProducer != nil {
		if err := a.eventsProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing Redis client", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}
}

func (a *App) closeFluent() {
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
