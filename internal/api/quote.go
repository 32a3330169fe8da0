package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/middleware"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/observability"
	"github.com/patrickwarner/opentripserve/internal/pricing"
)

// QuoteResponse is the payload returned by the vendor quote endpoint.
type QuoteResponse struct {
	VendorID     int                   `json:"vendor_id"`
	VendorName   string                `json:"vendor_name"`
	Destination  string                `json:"destination"`
	TravelDate   string                `json:"travel_date"`
	Demand       models.DemandLevel    `json:"demand_level"`
	Season       models.SeasonalFactor `json:"seasonal_factor"`
	Pricing      models.PricingResult  `json:"pricing"`
	OptimalPrice float64               `json:"predicted_optimal_price"`
}

// VendorQuoteHandler handles GET /vendors/{id}/price requests. It derives
// demand and season from live state, prices the vendor and caches the
// result briefly in Redis.
func (s *Server) VendorQuoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "VendorQuoteHandler",
		trace.WithAttributes(
			attribute.String("http.method", "GET"),
			attribute.String("http.route", "/vendors/{id}/price"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "vendor_quote"
	const method = "GET"

	idStr := mux.Vars(r)["id"]
	vendorID, err := strconv.Atoi(idStr)
	if err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid vendor id", http.StatusBadRequest)
		return
	}

	if s.RateLimiter != nil && !s.RateLimiter.Allow(idStr) {
		s.Metrics.IncrementRequests(endpoint, method, "429")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	travelDate := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		travelDate = parsed
	}

	budget := models.BudgetLevel(r.URL.Query().Get("budget"))

	cacheKey := fmt.Sprintf("%d:%s:%s", vendorID, travelDate.Format("2006-01-02"), budget)
	if s.Store != nil {
		if payload, ok, err := s.Store.GetCachedQuote(cacheKey); err != nil {
			logger.Warn("quote cache read", zap.Error(err))
		} else if ok {
			s.Metrics.IncrementQuotes("cache")
			s.Metrics.IncrementRequests(endpoint, method, "200")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(payload)
			return
		}
	}

	vendor := s.Catalog.GetVendor(vendorID)
	if vendor == nil {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	}

	var bookings int64
	if s.Store != nil {
		bookings, err = s.Store.GetBookingCount(vendorID)
		if err != nil {
			logger.Warn("booking count read", zap.Error(err), zap.Int("vendor_id", vendorID))
			bookings = 0
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
		CompetitorPrices: s.Catalog.CompetitorPrices(vendorID),
		UserBudget:       budget,
	}
	result := pricing.CalculateSmartPrice(factors)
	optimal := pricing.PredictOptimalPrice(vendor.BasePrice, travelDate, s.Catalog.GetPriceHistory(vendorID))

	resp := QuoteResponse{
		VendorID:     vendor.ID,
		VendorName:   vendor.Name,
		Destination:  vendor.Destination,
		TravelDate:   travelDate.Format("2006-01-02"),
		Demand:       demand,
		Season:       season,
		Pricing:      result,
		OptimalPrice: optimal,
	}

	span.SetAttributes(
		attribute.Int("vendor.id", vendor.ID),
		attribute.String("vendor.destination", vendor.Destination),
		attribute.String("quote.demand", string(demand)),
		attribute.Float64("quote.final_price", result.FinalPrice),
	)

	payload, err := json.Marshal(resp)
	if err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	if s.Store != nil {
		if err := s.Store.SetCachedQuote(cacheKey, payload, s.Config.QuoteCacheTTL); err != nil {
			logger.Warn("quote cache write", zap.Error(err))
		}
	}

	requestID := uuid.NewString()
	meta := s.resolveRequestMeta(r)
	if s.Analytics != nil {
		if err := s.Analytics.RecordQuote(ctx, requestID, vendor.ID, vendor.Destination,
			vendor.BasePrice, result.FinalPrice, result.Discount,
			string(demand), string(season), meta.DeviceType, meta.Country); err != nil {
			logger.Error("analytics record", zap.Error(err))
		}
	}

	if observability.ShouldSample(observability.GetSamplingRate()) {
		logger.Info("quote served",
			zap.String("request_id", requestID),
			zap.Int("vendor_id", vendor.ID),
			zap.Float64("final_price", result.FinalPrice),
			zap.String("event_type", "quote_served"))
	}
	s.Metrics.IncrementQuotes("computed")
	s.Metrics.RecordQuoteDiscount(float64(result.Discount))
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}
