package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/itinerary"
	"github.com/patrickwarner/opentripserve/internal/middleware"
	"github.com/patrickwarner/opentripserve/internal/models"
)

// RecommendRequest pairs a traveler's visit history with candidate options.
type RecommendRequest struct {
	History []models.TravelOption `json:"history"`
	Options []models.TravelOption `json:"options"`
}

// RecommendHandler handles POST /recommendations requests.
func (s *Server) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "RecommendHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/recommendations"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "recommendations"
	const method = "POST"

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("decode request", zap.Error(err), zap.String("event_type", "recommend_request"))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if len(req.Options) == 0 {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "options required", http.StatusBadRequest)
		return
	}

	scored := itinerary.PersonalizedRecommendations(req.History, req.Options)

	span.SetAttributes(
		attribute.Int("recommend.history", len(req.History)),
		attribute.Int("recommend.options", len(req.Options)),
		attribute.Int("recommend.returned", len(scored)),
	)

	s.Metrics.IncrementRecommendations()
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(scored); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
