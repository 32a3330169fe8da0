package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/itinerary"
	"github.com/patrickwarner/opentripserve/internal/middleware"
	"github.com/patrickwarner/opentripserve/internal/models"
	"github.com/patrickwarner/opentripserve/internal/observability"
)

// ItineraryRequest is the body of a trip optimization call. Activities may
// be supplied inline; when empty, the catalog for Destination is used.
type ItineraryRequest struct {
	Destination string                 `json:"destination"`
	Activities  []models.Activity      `json:"activities"`
	Preferences models.TripPreferences `json:"preferences"`
	Days        int                    `json:"days"`
}

// ItineraryResponse is the optimized plan plus trip-level aggregates.
type ItineraryResponse struct {
	Destination       string           `json:"destination,omitempty"`
	Days              []models.DayPlan `json:"days"`
	TotalCost         float64          `json:"total_cost"`
	TotalTravelTime   float64          `json:"total_travel_time"`
	AverageDailyCost  float64          `json:"average_daily_cost"`
	SatisfactionScore int              `json:"satisfaction_score"`
}

// decodeItineraryRequest reads and unmarshals an itinerary request body.
func decodeItineraryRequest(r *http.Request) (*ItineraryRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	defer func() {
		_ = r.Body.Close()
	}()

	var req ItineraryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &req, nil
}

// ItineraryHandler handles POST /itinerary requests.
func (s *Server) ItineraryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ItineraryHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/itinerary"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "itinerary"
	const method = "POST"

	req, err := decodeItineraryRequest(r)
	if err != nil {
		logger.Error("decode request", zap.Error(err), zap.String("event_type", "itinerary_request"))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Days < 1 {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "days must be at least 1", http.StatusBadRequest)
		return
	}

	activities := req.Activities
	if len(activities) == 0 && req.Destination != "" && s.Catalog != nil {
		for _, stored := range s.Catalog.GetActivitiesByDestination(req.Destination) {
			activities = append(activities, stored.Activity)
		}
	}
	if len(activities) == 0 {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "no activities provided or found for destination", http.StatusBadRequest)
		return
	}

	plans := itinerary.Optimize(activities, req.Preferences, req.Days)
	satisfaction := itinerary.PredictSatisfactionScore(plans, req.Preferences)

	var totalCost, totalTravel float64
	for _, day := range plans {
		totalCost += day.EstimatedCost
		totalTravel += day.TravelTime
	}

	resp := ItineraryResponse{
		Destination:       req.Destination,
		Days:              plans,
		TotalCost:         totalCost,
		TotalTravelTime:   totalTravel,
		AverageDailyCost:  totalCost / float64(req.Days),
		SatisfactionScore: satisfaction,
	}

	span.SetAttributes(
		attribute.Int("itinerary.days", req.Days),
		attribute.Int("itinerary.activities", len(activities)),
		attribute.Int("itinerary.satisfaction", satisfaction),
	)

	requestID := uuid.NewString()
	meta := s.resolveRequestMeta(r)
	if s.Analytics != nil {
		if err := s.Analytics.RecordItinerary(ctx, requestID, req.Destination, req.Days,
			len(activities), satisfaction, totalCost, meta.DeviceType, meta.Country); err != nil {
			logger.Error("analytics record", zap.Error(err))
		}
	}

	if observability.ShouldSample(observability.GetSamplingRate()) {
		logger.Info("itinerary generated",
			zap.String("request_id", requestID),
			zap.Int("days", req.Days),
			zap.Int("satisfaction", satisfaction),
			zap.String("event_type", "itinerary_generated"))
	}
	s.Metrics.IncrementItineraries()
	s.Metrics.RecordSatisfactionScore(float64(satisfaction))
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
