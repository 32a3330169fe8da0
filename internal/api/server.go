package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/patrickwarner/opentripserve/internal/analytics"
	"github.com/patrickwarner/opentripserve/internal/config"
	"github.com/patrickwarner/opentripserve/internal/db"
	"github.com/patrickwarner/opentripserve/internal/geoip"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/observability"
	"github.com/patrickwarner/opentripserve/internal/ratelimit"

	"go.uber.org/zap"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger       *zap.Logger
	Store        *db.RedisStore
	PG           *db.Postgres
	ClickHouseDB *sql.DB
	Analytics    analytics.AnalyticsService
	GeoIP        *geoip.GeoIP
	Catalog      models.CatalogStore
	RateLimiter  *ratelimit.VendorLimiter
	DebugTrace   bool
	reloadMu     sync.Mutex
	Metrics      observability.MetricsRegistry
	Config       config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store *db.RedisStore, pg *db.Postgres, ch *sql.DB, analyticsSvc analytics.AnalyticsService, geo *geoip.GeoIP, catalog models.CatalogStore, limiter *ratelimit.VendorLimiter, debug bool, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	return &Server{
		Logger:       logger,
		Store:        store,
		PG:           pg,
		ClickHouseDB: ch,
		Analytics:    analyticsSvc,
		GeoIP:        geo,
		Catalog:      catalog,
		RateLimiter:  limiter,
		DebugTrace:   debug,
		Metrics:      metrics,
		Config:       cfg,
	}
}

const CatalogUpdateChannel = "catalog-updates"

type UpdateMessage struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     any    `json:"id"`
}

func (s *Server) notifyUpdate(entity string, action string, id any) {
	if s.Store == nil || s.Store.Client == nil {
		s.Logger.Warn("redis store not available, skipping update notification")
		return
	}
	msg := UpdateMessage{Entity: entity, Action: action, ID: id}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.Logger.Error("failed to marshal update message", zap.Error(err))
		return
	}

	ctx := context.Background()
	if err := s.Store.Client.Publish(ctx, CatalogUpdateChannel, payload).Err(); err != nil {
		s.Logger.Error("failed to publish update message", zap.Error(err))
	}
}

// Reload refreshes vendors, activities and price history from Postgres.
func (s *Server) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}

	vendors, err := s.PG.LoadVendors()
	if err != nil {
		return fmt.Errorf("load vendors: %w", err)
	}

	activities, err := s.PG.LoadActivities()
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}

	history, err := s.PG.LoadPriceHistory()
	if err != nil {
		return fmt.Errorf("load price history: %w", err)
	}

	// Use CatalogStore for atomic reload of all data
	if err := s.Catalog.ReloadAll(vendors, activities, history); err != nil {
		return fmt.Errorf("reload catalog: %w", err)
	}

	return nil
}
