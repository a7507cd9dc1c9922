// Command apiserver serves the patent infringement HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BillWilson/pat-checker/internal/application/infringement"
	"github.com/BillWilson/pat-checker/internal/application/reporting"
	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/postgres"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/postgres/repositories"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/redis"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/BillWilson/pat-checker/internal/intelligence/openai"
	"github.com/BillWilson/pat-checker/internal/intelligence/reviewer"
	httpserver "github.com/BillWilson/pat-checker/internal/interfaces/http"
	"github.com/BillWilson/pat-checker/internal/interfaces/http/handlers"
	"github.com/BillWilson/pat-checker/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment is read")
	watch := flag.Bool("watch", false, "reload the log level when the config file changes")
	flag.Parse()

	if err := run(*configPath, *envFile, *watch); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string, watch bool) error {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	logger.Info("Starting patcheck API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("build_date", buildDate),
		logging.String("addr", cfg.Server.Addr()),
	)

	if watch && configPath != "" {
		err := config.Watch(configPath, func(next *config.Config) {
			logger.SetLevel(next.Log.Level)
			logger.Info("Log level reloaded", logging.String("level", next.Log.Level.String()))
		}, func(err error) {
			logger.Warn("Ignoring invalid configuration change", logging.Err(err))
		})
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close Redis client", logging.Err(err))
		}
	}()

	ai, err := openai.NewClient(cfg.OpenAI, logger)
	if err != nil {
		return err
	}

	var (
		metrics   = prometheus.NewNopAppMetrics()
		collector prometheus.MetricsCollector
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	pool := conn.Pool()
	reports := repositories.NewReportRepository(pool, logger)
	cache := redis.NewRedisCache(rdb, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Analysis.CacheTTL),
	)

	analysis := infringement.NewAnalysisService(
		repositories.NewPatentRepository(pool, logger),
		repositories.NewProductRepository(pool, logger),
		reports,
		ai,
		reviewer.New(ai, logger),
		cache,
		cfg.Analysis,
		metrics,
		logger,
	)
	listing := reporting.NewListingService(reports, cfg.Analysis, logger)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		SearchHandler: handlers.NewSearchHandler(analysis, logger),
		ReportHandler: handlers.NewReportHandler(listing, logger),
		HealthHandler: handlers.NewHealthHandler(version, metrics,
			handlers.CheckFunc{Component: "postgres", Fn: conn.HealthCheck},
			handlers.CheckFunc{Component: "redis", Fn: rdb.Ping},
		),
		CORS:             cfg.CORS,
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}
