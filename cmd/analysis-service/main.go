package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-analyzer/internal/analyzer/config"
	delivery "golang-stock-analyzer/internal/analyzer/delivery/http"
	"golang-stock-analyzer/internal/analyzer/delivery/scheduler"
	_ "golang-stock-analyzer/internal/analyzer/docs"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/internal/analyzer/service"
	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/postgres"
	"golang-stock-analyzer/pkg/redis"
	"golang-stock-analyzer/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analysis service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analysis Service", logger.Field("name", cfg.App.Name))

	// Initialize sinks. Both are optional; the pipeline runs without them.
	var (
		historyRepo  repository.AnalysisHistoryRepository
		batchRunRepo repository.BatchRunRepository
		publisher    repository.ProgressPublisher
		healthChecks = map[string]delivery.HealthCheck{}
	)
	if cfg.Database.Host != "" {
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			defer sqlDB.Close()
			healthChecks["database"] = sqlDB.PingContext
		}
		historyRepo = repository.NewAnalysisHistoryRepository(db.DB)
		batchRunRepo = repository.NewBatchRunRepository(db.DB)
	} else {
		appLogger.Warn("No database configured, analysis history is disabled")
	}

	if cfg.Redis.Host != "" {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		publisher = repository.NewRedisProgressPublisher(redisClient.Client)
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Client.Ping(ctx).Err()
		}
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize market data
	var remote repository.MarketDataRepository
	if cfg.MarketData.UseRemote && cfg.MarketData.BaseURL != "" {
		remote = repository.NewRemoteMarketDataRepository(cfg.MarketData, appLogger)
	}
	synthetic := repository.NewSyntheticMarketDataRepository(time.Now())

	// Initialize services
	marketDataSvc := service.NewMarketDataService(remote, synthetic, appLogger)
	narrativeSvc := service.NewNarrativeService(appLogger, cfg.AI.MaxRequestPerMinute, nil)
	analysisSvc := service.NewAnalysisService(appLogger, marketDataSvc, narrativeSvc, historyRepo)
	batchSvc := service.NewBatchService(service.BatchConfig{
		MaxWorkers:       cfg.Analysis.MaxWorkers,
		Deadline:         cfg.Analysis.BatchDeadline,
		Retention:        cfg.Analysis.TaskRetention,
		SubscriberBuffer: cfg.Analysis.SubscriberBuffer,
	}, appLogger, analysisSvc, historyRepo, batchRunRepo, publisher, notifier)

	defaults := service.DefaultAnalyzeOptions(cfg)

	// Start watchlist scheduler
	if cfg.Scheduler.Enabled {
		watchlist, err := scheduler.NewWatchlistScheduler(cfg.Scheduler.Cron, cfg.Scheduler.Timezone, cfg.Scheduler.Watchlist, batchSvc, defaults, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize watchlist scheduler", logger.ErrorField(err))
		}
		watchlist.Start()
		defer watchlist.Stop()
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")
	delivery.NewAnalysisHandler(analysisSvc, narrativeSvc, defaults, appLogger).RegisterRoutes(apiV1)
	delivery.NewBatchHandler(batchSvc, defaults, appLogger).RegisterRoutes(apiV1.Group("/batches"))
	delivery.NewMarketHandler().RegisterRoutes(apiV1)
	delivery.NewHealthHandler(healthChecks, appLogger).RegisterRoutes(apiV1)

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	if err := batchSvc.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Batches did not finish before shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Analyzer API
// @version 1.0
// @description Multi-factor stock analysis with batch orchestration.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "analysis-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analysis-service CLI: %s\n", err)
		os.Exit(1)
	}
}
