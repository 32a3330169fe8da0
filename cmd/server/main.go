package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickwarner/opentripserve/internal/analytics"
	"github.com/patrickwarner/opentripserve/internal/api"
	"github.com/patrickwarner/opentripserve/internal/config"
	"github.com/patrickwarner/opentripserve/internal/db"
	"github.com/patrickwarner/opentripserve/internal/geoip"
	"github.com/patrickwarner/opentripserve/internal/middleware"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/observability"
	"github.com/patrickwarner/opentripserve/internal/ratelimit"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	// Initialize the catalog before loading any data
	catalog := models.NewInMemoryCatalogStore()

	vendors, err := pg.LoadVendors()
	if err != nil {
		return fmt.Errorf("load vendors: %w", err)
	}

	activities, err := pg.LoadActivities()
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}

	history, err := pg.LoadPriceHistory()
	if err != nil {
		return fmt.Errorf("load price history: %w", err)
	}

	// Use the catalog's atomic ReloadAll to populate all data at once
	if err := catalog.ReloadAll(vendors, activities, history); err != nil {
		return fmt.Errorf("populate catalog: %w", err)
	}

	store, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer store.Close()

	// Initialize metrics registry
	metricsRegistry := observability.NewPrometheusRegistry()

	analyticsSvc, err := analytics.InitClickHouse(cfg.ClickHouseDSN, metricsRegistry, cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect clickhouse: %w", err)
	}
	defer analyticsSvc.Close()

	geoSvc, err := geoip.Init(cfg.GeoIPDB)
	if err != nil {
		return fmt.Errorf("failed to load geoip db: %w", err)
	}
	defer func() { _ = geoSvc.Close() }()

	// Initialize rate limiter
	rateLimiterConfig := ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}
	rateLimiter := ratelimit.NewVendorLimiter(rateLimiterConfig, metricsRegistry)

	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(logger))

	srvDeps := api.NewServer(logger, store, pg, analyticsSvc.DB, analyticsSvc, geoSvc, catalog, rateLimiter, cfg.DebugTrace, metricsRegistry, cfg)
	r.HandleFunc("/price", srvDeps.PriceHandler).Methods("POST")
	r.HandleFunc("/vendors/{id}/price", srvDeps.VendorQuoteHandler).Methods("GET")
	r.HandleFunc("/vendors/{id}/bookings", srvDeps.BookingHandler).Methods("POST")
	r.HandleFunc("/itinerary", srvDeps.ItineraryHandler).Methods("POST")
	r.HandleFunc("/recommendations", srvDeps.RecommendHandler).Methods("POST")
	r.HandleFunc("/health", srvDeps.HealthHandler).Methods("GET")
	r.HandleFunc("/reload", srvDeps.ReloadHandler).Methods("POST")

	// CRUD routes for admin UI
	crud := r.PathPrefix("/api").Subrouter()
	crud.HandleFunc("/vendors", srvDeps.ListVendors).Methods("GET")
	crud.HandleFunc("/vendors", srvDeps.CreateVendor).Methods("POST")
	crud.HandleFunc("/vendors/{id}", srvDeps.UpdateVendor).Methods("PUT")
	crud.HandleFunc("/vendors/{id}", srvDeps.DeleteVendor).Methods("DELETE")

	crud.HandleFunc("/activities", srvDeps.ListActivities).Methods("GET")
	crud.HandleFunc("/activities", srvDeps.CreateActivity).Methods("POST")
	crud.HandleFunc("/activities/{id}", srvDeps.UpdateActivity).Methods("PUT")
	crud.HandleFunc("/activities/{id}", srvDeps.DeleteActivity).Methods("DELETE")

	// metrics endpoint (includes rate limiting metrics)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port

	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "http.server"),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Trip server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	if cfg.ReloadInterval > 0 {
		ticker := time.NewTicker(cfg.ReloadInterval)
		go func() {
			for {
				select {
				case <-ticker.C:
					if err := srvDeps.Reload(); err != nil {
						logger.Error("auto reload", zap.Error(err))
					}
				case <-ctx.Done():
					ticker.Stop()
					return
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
