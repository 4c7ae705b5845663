package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/aggregator"
	"github.com/blockful/anticapture-sub000/internal/config"
	"github.com/blockful/anticapture-sub000/internal/consumer"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/providers/jetstream"
	"github.com/blockful/anticapture-sub000/internal/registry"
	"github.com/blockful/anticapture-sub000/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAggregatorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "aggregator",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Governance Aggregator")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()

	// Load address classification
	classification, err := registry.NewClassificationLoader(fs, jsonAdapter).Load(cfg.ClassificationPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load classification registry",
			zap.Error(err),
			zap.String("path", cfg.ClassificationPath))
	}
	logger.InfoCtx(ctx, "Loaded classification registry", zap.String("path", cfg.ClassificationPath))

	tokens := make(map[domain.DaoID]string, len(cfg.DAOs))
	daos := make([]domain.DaoID, 0, len(cfg.DAOs))
	for _, dao := range cfg.DAOs {
		tokens[dao.ID] = dao.TokenAddress
		daos = append(daos, dao.ID)
	}
	engine := aggregator.NewEngine(dataStore, classification, tokens)

	// Create consumer
	eventConsumer, err := consumer.NewConsumer(ctx,
		consumer.Config{
			JetStream: jetstream.Config{
				URL:             cfg.NATS.URL,
				StreamName:      cfg.NATS.StreamName,
				MaxReconnects:   cfg.NATS.MaxReconnects,
				ReconnectWait:   cfg.NATS.ReconnectWait,
				ConnectionName:  cfg.NATS.ConnectionName,
				DuplicateWindow: cfg.NATS.DuplicateWindow,
			},
			ConsumerPrefix: cfg.NATS.ConsumerName,
			AckWaitTimeout: cfg.NATS.AckWait,
			MaxDeliver:     cfg.NATS.MaxDeliver,
			DAOs:           daos,
		},
		natsJS,
		engine,
		jsonAdapter,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create event consumer", zap.Error(err))
	}
	defer eventConsumer.Close()
	logger.InfoCtx(ctx, "Event consumer created", zap.String("stream", cfg.NATS.StreamName), zap.String("consumer", cfg.NATS.ConsumerName))

	// Expose prometheus metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for component errors
	errCh := make(chan error, 2)

	go func() {
		logger.InfoCtx(ctx, "Serving metrics", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server failed: %w", err)
		}
	}()

	// Start the consumer
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := eventConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "aggregator"))
		cancel()
	}

	// Let the in-flight event settle
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", "metrics"))
	}

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Governance Aggregator stopped")
}
