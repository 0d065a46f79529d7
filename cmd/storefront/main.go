package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/config"
	"github.com/fjod/go_storefront/internal/events"
	"github.com/fjod/go_storefront/internal/health"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Production: cfg.Env().IsProduction(),
		FilePath:   cfg.LogFile,
	}).With().Str("service", "storefront").Logger()
	zlog.Logger = log

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("storefront stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up MongoDB connection
	db, err := repository.ConnectMongoDB(ctx, cfg.DatabaseURI, cfg.MongoConnectTimeout)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	log.Info().Str("database", db.Name()).Msg("database connected")

	if err := repository.RunMigrations(cfg.DatabaseURI, cfg.MigrationsPath); err != nil {
		return err
	}

	var catalogCache cache.CatalogCache = cache.NopCache{}
	if cfg.CacheEnabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		catalogCache = cache.NewRedisCache(redisClient, cfg.CacheTTL)
		log.Info().Dur("ttl", cfg.CacheTTL).Msg("redis cache enabled")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()

		outbox := repository.NewMongoOutboxRepository(db)
		publisher = events.NewOutboxPublisher(outbox)
		go events.NewOutboxRelay(outbox, kafkaPublisher, cfg.OutboxInterval, log).Run(ctx)

		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("catalog events enabled")
	}

	catalog := service.NewCatalogService(service.Deps{
		Categories: repository.NewMongoCategoryRepository(db),
		Products:   repository.NewMongoProductRepository(db),
		Slides:     repository.NewMongoSlideRepository(db),
		Cache:      catalogCache,
		Publisher:  publisher,
		Logger:     log,
	})

	if cfg.EventsEnabled() && cfg.CacheEnabled() {
		group := events.ConsumerGroup(cfg.InstanceID)
		invalidator := events.NewInvalidator(catalog, log, group, cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer invalidator.Close()
		go invalidator.Run(ctx)
		log.Info().Str("group", group).Msg("cache invalidation consumer started")
	}

	monitor := health.NewMonitor(health.PingFunc(func(ctx context.Context) error {
		return db.Client().Ping(ctx, readpref.Primary())
	}), cfg.HealthInterval, log)
	go monitor.Run(ctx)

	router := h.NewRouter(h.RouterConfig{
		Catalog:            catalog,
		Health:             monitor,
		Logger:             log,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		UploadsDir:         cfg.UploadsDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	grpcServer := health.NewGRPCServer(monitor)

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("grpc health server starting")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-errCh:
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server forced to shutdown")
	}

	log.Info().Msg("storefront exited")
	return runErr
}
