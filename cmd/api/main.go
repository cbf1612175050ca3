package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"restaurant-menu/internal/adapters/eventbroker/nats"
	"restaurant-menu/internal/adapters/handlers/http/chi"
	"restaurant-menu/internal/adapters/handlers/http/chi/v1/entity"
	"restaurant-menu/internal/adapters/handlers/http/chi/v1/file"
	metrics "restaurant-menu/internal/adapters/metrics/prometheus"
	mongorepo "restaurant-menu/internal/adapters/repository/mongo"
	"restaurant-menu/internal/adapters/repository/postgres"
	counter "restaurant-menu/internal/adapters/sequence/redis"
	"restaurant-menu/internal/adapters/storage/gcs"
	"restaurant-menu/internal/adapters/storage/local"
	"restaurant-menu/internal/adapters/storage/minio"
	"restaurant-menu/internal/config"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"restaurant-menu/internal/core/service/allocator"
	entityservice "restaurant-menu/internal/core/service/entity"
	"restaurant-menu/internal/core/service/upload"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	//metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	coreMetrics := metrics.New(registry)

	//persistence
	entityRepo, closeRepo, err := initRepository(ctx, cfg)
	if err != nil {
		logger.Error("failed to init persistence", "driver", cfg.Persistence.Driver, "error", err)
		os.Exit(1)
	}
	defer closeRepo()
	logger.Info("persistence ready", "driver", cfg.Persistence.Driver)

	//storage
	providers, disk, err := initProviders(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init storage providers", "error", err)
		os.Exit(1)
	}
	defer func() {
		for provider, backend := range providers {
			if closer, ok := backend.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					logger.Error("failed to close storage provider", "provider", provider, "error", err)
				}
			}
		}
	}()
	defaultProvider, err := domain.ParseProvider(cfg.Storage.DefaultProvider)
	if err != nil {
		logger.Error("invalid default storage provider", "error", err)
		os.Exit(1)
	}
	uploadRouter, err := upload.NewUploadRouter(providers, defaultProvider, logger, upload.WithMetrics(coreMetrics))
	if err != nil {
		logger.Error("failed to init upload router", "error", err)
		os.Exit(1)
	}

	//sequence
	codeAllocator, closeAllocator, err := initAllocator(ctx, cfg, entityRepo)
	if err != nil {
		logger.Error("failed to init code allocator", "strategy", cfg.Sequence.Strategy, "error", err)
		os.Exit(1)
	}
	defer closeAllocator()

	opts := []entityservice.Option{
		entityservice.WithMetrics(coreMetrics),
		entityservice.WithCreateRetry(cfg.Sequence.CreateAttempts, cfg.Sequence.RetryInterval),
	}

	//events
	if cfg.NATS.URL != "" {
		publisher, err := nats.NewNATSPublisher(ctx, cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to init nats publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, entityservice.WithPublisher(publisher))
		logger.Info("publishing entity events", "stream", cfg.NATS.StreamName)
	}

	entityService := entityservice.NewEntityService(entityRepo, uploadRouter, codeAllocator, logger, opts...)

	//http
	entityHandler := entity.NewEntityHandlerV1(entityService, logger)
	fileHandler := file.NewFileHandlerV1(uploadRouter, disk, logger)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	router := chi.NewRouter(logger, entityHandler, fileHandler, metricsHandler, cfg.Env.Env)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initRepository(ctx context.Context, cfg *config.Config) (port.EntityRepository, func(), error) {
	switch cfg.Persistence.Driver {
	case "postgres":
		db, err := initDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewSqlEntityRepository(db), func() { db.Close() }, nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		closeClient := func() { client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			closeClient()
			return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		repo, err := mongorepo.NewMongoEntityRepository(ctx, client.Database(cfg.Mongo.Database))
		if err != nil {
			closeClient()
			return nil, nil, err
		}
		return repo, closeClient, nil
	default:
		return nil, nil, fmt.Errorf("unknown persistence driver %q", cfg.Persistence.Driver)
	}
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

// initProviders registers every configured storage backend. The local disk is
// always available.
func initProviders(ctx context.Context, cfg *config.Config, logger *slog.Logger) (map[domain.Provider]port.StorageProvider, *local.Adapter, error) {
	disk, err := local.NewAdapter(cfg.Storage, logger)
	if err != nil {
		return nil, nil, err
	}
	providers := map[domain.Provider]port.StorageProvider{
		domain.ProviderLocal: disk,
	}

	if cfg.S3.Enabled() {
		s3, err := minio.NewAdapter(ctx, cfg.S3, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("aws s3: %w", err)
		}
		providers[domain.ProviderAWSS3] = s3
	}
	if cfg.Spaces.Enabled() {
		spaces, err := minio.NewAdapter(ctx, cfg.Spaces, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("do spaces: %w", err)
		}
		providers[domain.ProviderDOSpace] = spaces
	}
	if cfg.GCS.Enabled() {
		bucket, err := gcs.NewAdapter(ctx, cfg.GCS, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("google cloud storage: %w", err)
		}
		providers[domain.ProviderGoogleCloud] = bucket
	}

	for provider := range providers {
		logger.Info("storage provider registered", "provider", provider)
	}
	return providers, disk, nil
}

func initAllocator(ctx context.Context, cfg *config.Config, repo port.EntityRepository) (port.CodeAllocator, func(), error) {
	switch cfg.Sequence.Strategy {
	case "latest":
		return allocator.NewLatestCodeAllocator(repo), func() {}, nil
	case "redis":
		client, err := counter.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return counter.NewCounterAllocator(client, repo, cfg.Redis.KeyPrefix), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown sequence strategy %q", cfg.Sequence.Strategy)
	}
}
