package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/db"
	"github.com/patrickwarner/opentripserve/internal/itinerary"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/pricing"
)

// Trip planning protocol request/response types
type QuotePriceInput struct {
	VendorID int    `json:"vendor_id"`
	Date     string `json:"date,omitempty"`   // YYYY-MM-DD, defaults to today
	Budget   string `json:"budget,omitempty"` // low, medium or high
}

type QuotePriceOutput struct {
	VendorID     int                   `json:"vendor_id"`
	VendorName   string                `json:"vendor_name"`
	Destination  string                `json:"destination"`
	TravelDate   string                `json:"travel_date"`
	Demand       models.DemandLevel    `json:"demand_level"`
	Season       models.SeasonalFactor `json:"seasonal_factor"`
	Pricing      models.PricingResult  `json:"pricing"`
	OptimalPrice float64               `json:"predicted_optimal_price"`
}

type PlanItineraryInput struct {
	Destination string   `json:"destination"`
	Days        int      `json:"days"`
	Pace        string   `json:"pace,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

type PlanItineraryOutput struct {
	Destination       string           `json:"destination"`
	Days              []models.DayPlan `json:"days"`
	TotalCost         float64          `json:"total_cost"`
	TotalTravelTime   float64          `json:"total_travel_time"`
	SatisfactionScore int              `json:"satisfaction_score"`
}

// TripMCPServer holds our dependencies
type TripMCPServer struct {
	catalog models.CatalogStore
	store   *db.RedisStore
	logger  *zap.Logger
}

// QuotePrice implements the quote_price task
func (s *TripMCPServer) QuotePrice(ctx context.Context, req *mcp.CallToolRequest, input QuotePriceInput) (*mcp.CallToolResult, QuotePriceOutput, error) {
	vendor := s.catalog.GetVendor(input.VendorID)
	if vendor == nil {
		return nil, QuotePriceOutput{}, fmt.Errorf("vendor %d not found", input.VendorID)
	}

	travelDate := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, QuotePriceOutput{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", input.Date)
		}
		travelDate = parsed
	}

	var bookings int64
	if s.store != nil {
		count, err := s.store.GetBookingCount(vendor.ID)
		if err != nil {
			s.logger.Warn("booking count read failed, assuming zero",
				zap.Error(err), zap.Int("vendor_id", vendor.ID))
		} else {
			bookings = count
		}
	}

	demand := pricing.CalculateDemandLevel(float64(bookings), float64(vendor.Capacity), vendor.HistoricalAverage)
	season := pricing.CalculateSeasonalFactor(travelDate, vendor.Destination)

	occupancy := 0.0
	if vendor.Capacity > 0 {
		occupancy = float64(bookings) / float64(vendor.Capacity) * 100
		if occupancy > 100 {
			occupancy = 100
		}
	}

	daysUntil := int(time.Until(travelDate).Hours() / 24)
	if daysUntil < 0 {
		daysUntil = 0
	}

	factors := models.PricingFactors{
		BasePrice:        vendor.BasePrice,
		Demand:           demand,
		Season:           season,
		OccupancyRate:    occupancy,
		DaysUntilBooking: daysUntil,
		CompetitorPrices: s.catalog.CompetitorPrices(vendor.ID),
		UserBudget:       models.BudgetLevel(input.Budget),
	}
	result := pricing.CalculateSmartPrice(factors)
	optimal := pricing.PredictOptimalPrice(vendor.BasePrice, travelDate, s.catalog.GetPriceHistory(vendor.ID))

	s.logger.Info("quote computed",
		zap.Int("vendor_id", vendor.ID),
		zap.Float64("final_price", result.FinalPrice),
		zap.String("demand", string(demand)))

	return nil, QuotePriceOutput{
		VendorID:     vendor.ID,
		VendorName:   vendor.Name,
		Destination:  vendor.Destination,
		TravelDate:   travelDate.Format("2006-01-02"),
		Demand:       demand,
		Season:       season,
		Pricing:      result,
		OptimalPrice: optimal,
	}, nil
}

// PlanItinerary implements the plan_itinerary task
func (s *TripMCPServer) PlanItinerary(ctx context.Context, req *mcp.CallToolRequest, input PlanItineraryInput) (*mcp.CallToolResult, PlanItineraryOutput, error) {
	if input.Days < 1 {
		return nil, PlanItineraryOutput{}, fmt.Errorf("days must be at least 1")
	}

	stored := s.catalog.GetActivitiesByDestination(input.Destination)
	if len(stored) == 0 {
		return nil, PlanItineraryOutput{}, fmt.Errorf("no activities known for destination %q", input.Destination)
	}
	activities := make([]models.Activity, 0, len(stored))
	for _, a := range stored {
		activities = append(activities, a.Activity)
	}

	prefs := models.TripPreferences{
		Budget:    models.BudgetLevel(input.Budget),
		Pace:      input.Pace,
		Interests: input.Interests,
	}

	plan := itinerary.Optimize(activities, prefs, input.Days)
	satisfaction := itinerary.PredictSatisfactionScore(plan, prefs)

	var totalCost, totalTravel float64
	for _, day := range plan {
		totalCost += day.EstimatedCost
		totalTravel += day.TravelTime
	}

	s.logger.Info("itinerary planned",
		zap.String("destination", input.Destination),
		zap.Int("days", input.Days),
		zap.Int("satisfaction", satisfaction))

	return nil, PlanItineraryOutput{
		Destination:       input.Destination,
		Days:              plan,
		TotalCost:         totalCost,
		TotalTravelTime:   totalTravel,
		SatisfactionScore: satisfaction,
	}, nil
}

func main() {
	// Initialize logger for MCP server - use stderr to avoid stdio conflicts
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.OutputPaths = []string{"stderr"}      // Force stderr output
	cfg.ErrorOutputPaths = []string{"stderr"} // Force stderr for errors

	// Use same encoder config as observability package for consistency
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Add service name as a permanent field for consistency
	logger = logger.Named("opentripserve-mcp").With(zap.String("service", "opentripserve-mcp"))

	logger.Info("Starting OpenTripServe MCP Server")

	postgresDSN := os.Getenv("POSTGRES_DSN")
	if postgresDSN == "" {
		logger.Fatal("POSTGRES_DSN environment variable is required")
	}

	pg, err := db.InitPostgres(postgresDSN, 10, 5, 30*time.Minute, 5*time.Minute)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()
	logger.Info("Connected to PostgreSQL")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	store, err := db.InitRedis(redisAddr)
	if err != nil {
		logger.Warn("Redis unavailable, booking counts default to zero", zap.Error(err))
		store = nil
	} else {
		defer store.Close()
		logger.Info("Connected to Redis", zap.String("addr", redisAddr))
	}

	// Load the catalog from Postgres
	catalog := models.NewInMemoryCatalogStore()

	vendors, err := pg.LoadVendors()
	if err != nil {
		logger.Fatal("Failed to load vendors", zap.Error(err))
	}
	activities, err := pg.LoadActivities()
	if err != nil {
		logger.Fatal("Failed to load activities", zap.Error(err))
	}
	history, err := pg.LoadPriceHistory()
	if err != nil {
		logger.Fatal("Failed to load price history", zap.Error(err))
	}

	logger.Info("Loaded catalog from Postgres",
		zap.Int("vendors", len(vendors)),
		zap.Int("activities", len(activities)),
		zap.Int("price_histories", len(history)))

	if err := catalog.ReloadAll(vendors, activities, history); err != nil {
		logger.Fatal("Failed to populate catalog", zap.Error(err))
	}

	tripServer := &TripMCPServer{
		catalog: catalog,
		store:   store,
		logger:  logger,
	}

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "opentripserve",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quote_price",
		Description: "Compute a demand-aware price quote for a vendor on a travel date",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"vendor_id": map[string]interface{}{
					"type":        "integer",
					"description": "Vendor ID to quote",
				},
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Travel date in YYYY-MM-DD format (optional, defaults to today)",
				},
				"budget": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high"},
					"description": "Traveler budget level (optional)",
				},
			},
			"required": []string{"vendor_id"},
		},
	}, tripServer.QuotePrice)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_itinerary",
		Description: "Build an optimized multi-day itinerary from the activity catalog for a destination",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"destination": map[string]interface{}{
					"type":        "string",
					"description": "Destination to plan for",
				},
				"days": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"description": "Number of days in the trip",
				},
				"pace": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"relaxed", "moderate", "packed"},
					"description": "Trip pace (optional, defaults to moderate)",
				},
				"budget": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high"},
					"description": "Traveler budget level (optional)",
				},
				"interests": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Interest keywords matched against activity types (optional)",
				},
			},
			"required": []string{"destination", "days"},
		},
	}, tripServer.PlanItinerary)

	// Run the MCP server with logging transport for debugging
	stdioTransport := &mcp.StdioTransport{}

	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{
		Transport: stdioTransport,
		Writer:    &logBuffer,
	}

	logger.Info("MCP Server running via stdio with logging enabled")

	if err := server.Run(context.Background(), loggingTransport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
