package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/api"
	"github.com/UnknownOlympus/cellmap/internal/cache"
	"github.com/UnknownOlympus/cellmap/internal/config"
	"github.com/UnknownOlympus/cellmap/internal/geocoding"
	applog "github.com/UnknownOlympus/cellmap/internal/logger"
	"github.com/UnknownOlympus/cellmap/internal/metrics"
	"github.com/UnknownOlympus/cellmap/internal/repository"
	"github.com/UnknownOlympus/cellmap/internal/resolver"
	"github.com/UnknownOlympus/cellmap/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// healthCheck is a named dependency check of the monitoring server.
type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

// main is the entry point of the coverage API.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := applog.New(os.Stdout, cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)
	if err = repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare database schema: %v", err)
	}

	checks := []healthCheck{{name: "database", check: dtb.Ping}}

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Provider.Type),
		APIKey:    cfg.Provider.APIKey,
		RateLimit: cfg.Provider.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider.Type)

	if cfg.Redis.Addr != "" && cfg.CacheTTL > 0 {
		store, redisErr := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if redisErr != nil {
			logger.WarnContext(ctx, "Geocoding cache disabled", "error", redisErr)
		} else {
			defer store.Close()
			provider = cache.NewGeocodeCache(provider, store, cfg.CacheTTL, logger, appMetrics)
			checks = append(checks, healthCheck{name: "redis", check: store.Health})
		}
	}

	finder, err := newFinder(ctx, cfg, logger, repo, appMetrics)
	if err != nil {
		log.Fatalf("Failed to load coverage dataset: %v", err)
	}

	coverage := service.NewCoverageService(
		logger,
		provider,
		cfg.Provider.Type, // Provider name for metrics
		finder,
		appMetrics,
		cfg.Provider.Timeout,
	)
	server := api.NewServer(coverage, logger)

	go startMonitoringServer(ctx, logger, reg, checks, cfg.Port)

	go func() {
		if listenErr := server.Listen(cfg.HTTPAddr); listenErr != nil {
			logger.ErrorContext(ctx, "HTTP server failed", "error", listenErr)
			stop()
		}
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	<-ctx.Done()
	logger.Info("Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	logger.Info("Application stopped gracefully.")
}

// newFinder selects where nearest-coverage queries run. In memory mode the dataset is loaded
// once before serving and then refreshed in the background.
func newFinder(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	repo *repository.Repository,
	appMetrics *metrics.Metrics,
) (service.CoverageFinder, error) {
	switch cfg.Resolver.Mode {
	case config.ResolverModePostGIS:
		logger.InfoContext(ctx, "Resolving coverage in PostGIS", "max_distance", cfg.Resolver.MaxDistance)
		return repository.NewFinder(repo, cfg.Resolver.MaxDistance), nil
	case config.ResolverModeMemory:
		res := resolver.New(cfg.Resolver.MaxDistance)
		refresher := service.NewRefresher(logger, repo, res, appMetrics, cfg.Resolver.RefreshInterval)
		if err := refresher.Refresh(ctx); err != nil {
			return nil, err
		}
		go refresher.Run(ctx)
		return res, nil
	default:
		return nil, fmt.Errorf("unknown resolver mode: %s", cfg.Resolver.Mode)
	}
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It stops when ctx is canceled.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	checks []healthCheck,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		for _, hc := range checks {
			if err := hc.check(req.Context()); err != nil {
				log.WarnContext(ctx, "Health check failed", "dependency", hc.name, "error", err)
				status, body = http.StatusServiceUnavailable, hc.name+" ping failed"
				break
			}
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
