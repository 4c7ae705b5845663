package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/api/rest"
	"github.com/blockful/anticapture-sub000/internal/api/server"
	"github.com/blockful/anticapture-sub000/internal/block"
	"github.com/blockful/anticapture-sub000/internal/config"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/governor"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/proposals"
	"github.com/blockful/anticapture-sub000/internal/providers/ethereum"
	"github.com/blockful/anticapture-sub000/internal/store"
	"github.com/blockful/anticapture-sub000/internal/timeseries"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	policy, err := governor.ParsePolicy(cfg.StatusPolicy)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create shutdown context with timeout
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Anticapture API", zap.String("status_policy", policy.String()))

	// Connect to database, reads go to the replica when one is configured
	db, err := gorm.Open(postgres.Open(cfg.Database.ReadDSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	ethDialer := adapter.NewEthClientDialer()
	retry := ethereum.RetryConfig{
		InitialInterval: cfg.RPCRetry.InitialInterval,
		MaxInterval:     cfg.RPCRetry.MaxInterval,
		MaxElapsedTime:  cfg.RPCRetry.MaxElapsedTime,
	}

	// One governor per DAO, reading its chain over RPC
	governors := make([]governor.Governor, 0, len(cfg.DAOs))
	daos := make([]domain.DaoID, 0, len(cfg.DAOs))
	for _, dao := range cfg.DAOs {
		ethClient, err := ethDialer.Dial(ctx, dao.RPCURL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to dial chain RPC", zap.Error(err), logger.DAO(dao.ID), zap.String("rpc_url", dao.RPCURL))
		}
		client := ethereum.NewClient(dao.Chain, ethClient, retry)
		defer client.Close()

		gov, err := governor.New(dao.ID, dao.GovernorAddress, client)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create governor", zap.Error(err), logger.DAO(dao.ID))
		}
		governors = append(governors, gov)
		daos = append(daos, dao.ID)
	}
	resolver := governor.NewStaticResolver(governors...)
	blocks := block.NewRegistry(resolver, block.Config{
		TTL:          cfg.ChainHead.TTL,
		StaleWindow:  cfg.ChainHead.StaleWindow,
		BlockTimeTTL: cfg.ChainHead.BlockTimeTTL,
	}, clockAdapter)

	// Initialize services
	seriesService := timeseries.NewService(dataStore, clockAdapter)
	proposalService := proposals.NewService(dataStore, resolver, blocks, policy)
	handler := rest.NewHandler(daos, seriesService, proposalService)

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	// Create and start server
	srv := server.New(serverConfig, handler)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
