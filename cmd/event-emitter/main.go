package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/config"
	"github.com/blockful/anticapture-sub000/internal/emitter"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/providers/ethereum"
	"github.com/blockful/anticapture-sub000/internal/providers/jetstream"
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
	cfg, err := config.LoadEmitterConfig(*configFile, *envPath)
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
			"service": "event-emitter",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Governance Event Emitter", zap.Int("daos", len(cfg.DAOs)))

	if len(cfg.DAOs) == 0 {
		logger.FatalCtx(ctx, "No DAO configured")
	}

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
	cursorStore := store.NewCursorStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()
	ethDialer := adapter.NewEthClientDialer()

	retry := ethereum.RetryConfig{
		InitialInterval: cfg.RPCRetry.InitialInterval,
		MaxInterval:     cfg.RPCRetry.MaxInterval,
		MaxElapsedTime:  cfg.RPCRetry.MaxElapsedTime,
	}
	natsConfig := jetstream.Config{
		URL:             cfg.NATS.URL,
		StreamName:      cfg.NATS.StreamName,
		MaxReconnects:   cfg.NATS.MaxReconnects,
		ReconnectWait:   cfg.NATS.ReconnectWait,
		ConnectionName:  cfg.NATS.ConnectionName,
		DuplicateWindow: cfg.NATS.DuplicateWindow,
	}

	// One emitter per DAO, each with its own chain subscription and cursor
	emitters := make([]emitter.Emitter, 0, len(cfg.DAOs))
	for _, dao := range cfg.DAOs {
		url := dao.WebSocketURL
		if url == "" {
			url = dao.RPCURL
		}
		ethClient, err := ethDialer.Dial(ctx, url)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to dial chain RPC", zap.Error(err), logger.DAO(dao.ID), zap.String("url", url))
		}
		client := ethereum.NewClient(dao.Chain, ethClient, retry)

		subscriber, err := ethereum.NewSubscriber(ethereum.Config{
			DAO:             dao.ID,
			TokenAddress:    dao.TokenAddress,
			GovernorAddress: dao.GovernorAddress,
			BackfillWindow:  cfg.BackfillWindow,
		}, client)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create subscriber", zap.Error(err), logger.DAO(dao.ID))
		}

		publisher, err := jetstream.NewPublisher(ctx, natsConfig, natsJS, jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}

		e := emitter.NewEmitter(subscriber, publisher, cursorStore, emitter.Config{
			DAO:             dao.ID,
			StartBlock:      dao.StartBlock,
			CursorSaveFreq:  cfg.Cursor.SaveFrequency,
			CursorSaveDelay: cfg.Cursor.SaveDelay,
		}, clockAdapter)
		defer e.Close()
		emitters = append(emitters, e)

		logger.InfoCtx(ctx, "Emitter created", logger.DAO(dao.ID), zap.String("chain", string(dao.Chain)))
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for emitter errors
	errCh := make(chan error, len(emitters))

	pool := pond.NewPool(len(emitters), pond.WithContext(ctx))
	for _, e := range emitters {
		pool.Submit(func() {
			if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		})
	}

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "emitter"))
		cancel()
	}

	pool.StopAndWait()

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Governance Event Emitter stopped")
}
