package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickwarner/opentripserve/internal/middleware"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/observability"
	"github.com/patrickwarner/opentripserve/internal/pricing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("opentripserve")

// decodePricingFactors reads and unmarshals a pricing request body.
func decodePricingFactors(r *http.Request) (*models.PricingFactors, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	defer func() {
		_ = r.Body.Close()
	}()

	var factors models.PricingFactors
	if err := json.Unmarshal(body, &factors); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &factors, nil
}

// validatePricingFactors rejects inputs the engine cannot price.
func validatePricingFactors(f *models.PricingFactors) error {
	if f.BasePrice <= 0 {
		return fmt.Errorf("base_price must be positive")
	}
	if f.OccupancyRate < 0 || f.OccupancyRate > 100 {
		return fmt.Errorf("occupancy_rate must be within [0,100]")
	}
	for _, p := range f.CompetitorPrices {
		if p <= 0 {
			return fmt.Errorf("competitor_prices must be positive")
		}
	}
	return nil
}

// PriceHandler handles POST /price requests with fully specified factors.
func (s *Server) PriceHandler(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "PriceHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/price"),
		))
	defer span.End()

	// Get trace-aware logger from middleware
	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "price"
	const method = "POST"

	factors, err := decodePricingFactors(r)
	if err != nil {
		logger.Error("decode request", zap.Error(err), zap.String("event_type", "price_request"))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := validatePricingFactors(factors); err != nil {
		logger.Error("invalid pricing factors", zap.Error(err), zap.String("event_type", "price_request"))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := pricing.CalculateSmartPrice(*factors)

	span.SetAttributes(
		attribute.Float64("price.base", factors.BasePrice),
		attribute.Float64("price.final", result.FinalPrice),
		attribute.Int("price.discount", result.Discount),
	)

	if observability.ShouldSample(observability.GetSamplingRate()) {
		logger.Info("price computed",
			zap.Float64("base_price", factors.BasePrice),
			zap.Float64("final_price", result.FinalPrice),
			zap.Int("discount", result.Discount),
			zap.String("event_type", "price_computed"))
	}
	s.Metrics.IncrementQuotes("computed")
	s.Metrics.RecordQuoteDiscount(float64(result.Discount))
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
