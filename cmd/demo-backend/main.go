package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/demo-backend/internal/application/catalog"
	"github.com/aescanero/demo-backend/internal/application/monitor"
	"github.com/aescanero/demo-backend/internal/config"
	"github.com/aescanero/demo-backend/pkg/adapters/downstream"
	eventsmemory "github.com/aescanero/demo-backend/pkg/adapters/events/memory"
	eventsredis "github.com/aescanero/demo-backend/pkg/adapters/events/redis"
	"github.com/aescanero/demo-backend/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/demo-backend/pkg/adapters/storage/memory"
	"github.com/aescanero/demo-backend/pkg/api/grpc"
	"github.com/aescanero/demo-backend/pkg/api/http"
	"github.com/aescanero/demo-backend/pkg/api/websocket"
	"github.com/aescanero/demo-backend/pkg/ports"

	promclient "github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting demo backend",
		zap.String("app_name", cfg.AppName),
		zap.String("environment", cfg.Environment),
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	ctx := context.Background()
	metricsCollector := prometheus.NewCollector(promclient.DefaultRegisterer)

	// Event bus
	var (
		eventBus    ports.EventBus
		redisClient *goredis.Client
	)
	switch cfg.Events.Backend {
	case config.EventsBackendRedis:
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
		eventBus = eventsredis.NewPubSubEventBus(redisClient, cfg.Events.Prefix, logger)
	default:
		eventBus = eventsmemory.NewEventBus(logger)
	}

	// Application components
	store := memory.NewStore()
	catalogSvc := catalog.NewService(store, eventBus, metricsCollector, logger)
	if cfg.SeedData {
		if err := catalogSvc.Seed(ctx); err != nil {
			logger.Fatal("failed to seed catalog", zap.Error(err))
		}
	}

	dbClient := downstream.NewClient(&downstream.Config{
		BaseURL: cfg.Database.URL,
		Metrics: metricsCollector,
		Logger:  logger,
	})

	dbMonitor := monitor.NewDownstreamMonitor(
		dbClient,
		cfg.Database.MonitorInterval,
		cfg.Database.StatusTimeout,
		metricsCollector,
		logger,
	)

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Addr:               cfg.GetHTTPAddr(),
		Environment:        cfg.Environment,
		Catalog:            catalogSvc,
		Database:           dbClient,
		StatusTimeout:      cfg.Database.StatusTimeout,
		QueryTimeout:       cfg.Database.QueryTimeout,
		QueryRateLimit:     cfg.Database.QueryRateLimit,
		QueryBurst:         cfg.Database.QueryBurst,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            metricsCollector,
		Logger:             logger,
	})
	httpServer.SetupWebSocket(websocket.NewHandler(eventBus, logger))

	var grpcServer *grpc.Server
	if cfg.GRPCEnabled {
		grpcServer, err = grpc.NewServer(&grpc.Config{
			Addr:   cfg.GetGRPCAddr(),
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("failed to create gRPC server", zap.Error(err))
		}
		dbMonitor.OnChange(grpcServer.SetDatabaseUp)
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	dbMonitor.Start()

	logger.Info("demo backend started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Bool("grpc_enabled", cfg.GRPCEnabled),
		zap.String("database_url", cfg.Database.URL),
		zap.String("events_backend", cfg.Events.Backend))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	dbMonitor.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("demo backend shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
