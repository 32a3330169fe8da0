package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/opentripserve/internal/middleware"
	"github.com/patrickwarner/opentripserve/internal/observability"
)

// bookingRequest is the optional body of a booking call. Price defaults to
// the vendor's base price when omitted.
type bookingRequest struct {
	Price float64 `json:"price"`
}

// BookingHandler handles POST /vendors/{id}/bookings. It bumps the daily
// booking counter that feeds demand derivation and records the booking
// in analytics.
func (s *Server) BookingHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "BookingHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/vendors/{id}/bookings"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "booking"
	const method = "POST"

	vendorID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid vendor id", http.StatusBadRequest)
		return
	}

	vendor := s.Catalog.GetVendor(vendorID)
	if vendor == nil {
		s.Metrics.IncrementBookings("rejected")
		s.Metrics.IncrementRequests(endpoint, method, "404")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	}

	var req bookingRequest
	if r.Body != nil {
		// An empty or absent body is fine; only malformed JSON is rejected.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}
	price := req.Price
	if price <= 0 {
		price = vendor.BasePrice
	}

	var count int64
	if s.Store != nil {
		count, err = s.Store.IncrementBooking(vendorID, s.Config.BookingCountTTL)
		if err != nil {
			logger.Error("increment booking counter", zap.Error(err), zap.Int("vendor_id", vendorID))
			s.Metrics.IncrementBookings("error")
			s.Metrics.IncrementRequests(endpoint, method, "500")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "booking counter unavailable", http.StatusInternalServerError)
			return
		}
	}

	span.SetAttributes(
		attribute.Int("vendor.id", vendorID),
		attribute.Int64("booking.count_today", count),
	)

	requestID := uuid.NewString()
	meta := s.resolveRequestMeta(r)
	if s.Analytics != nil {
		if err := s.Analytics.RecordBooking(ctx, requestID, vendorID, vendor.Destination, price, meta.DeviceType, meta.Country); err != nil {
			logger.Error("analytics record", zap.Error(err))
		}
	}

	if observability.ShouldSample(observability.GetSamplingRate()) {
		logger.Info("booking recorded",
			zap.String("request_id", requestID),
			zap.Int("vendor_id", vendorID),
			zap.Int64("count_today", count),
			zap.String("event_type", "booking_recorded"))
	}
	s.Metrics.IncrementBookings("accepted")
	s.Metrics.IncrementRequests(endpoint, method, "201")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"vendor_id":      vendorID,
		"bookings_today": count,
		"price":          price,
	})
}
