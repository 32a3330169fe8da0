package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// This replaces direct access to global Prometheus metrics with dependency injection
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Pricing metrics
	IncrementQuotes(source string)
	RecordQuoteDiscount(percent float64)

	// Booking metrics
	IncrementBookings(status string)

	// Itinerary metrics
	IncrementItineraries()
	RecordSatisfactionScore(score float64)

	// Recommendation metrics
	IncrementRecommendations()

	// Rate limiting metrics
	IncrementRateLimitRequests(vendorID string)
	IncrementRateLimitHits(vendorID string)

	// Analytics pipeline metrics
	IncrementAnalyticsErrors()
}

// PrometheusRegistry implements MetricsRegistry using the existing global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Pricing metrics
func (r *PrometheusRegistry) IncrementQuotes(source string) {
	QuoteCount.WithLabelValues(source).Inc()
}

func (r *PrometheusRegistry) RecordQuoteDiscount(percent float64) {
	QuoteDiscount.Observe(percent)
}

// Booking metrics
func (r *PrometheusRegistry) IncrementBookings(status string) {
	BookingCount.WithLabelValues(status).Inc()
}

// Itinerary metrics
func (r *PrometheusRegistry) IncrementItineraries() {
	ItineraryCount.Inc()
}

func (r *PrometheusRegistry) RecordSatisfactionScore(score float64) {
	SatisfactionScore.Observe(score)
}

// Recommendation metrics
func (r *PrometheusRegistry) IncrementRecommendations() {
	RecommendationCount.Inc()
}

// Rate limiting metrics
func (r *PrometheusRegistry) IncrementRateLimitRequests(vendorID string) {
	RateLimitRequests.WithLabelValues(vendorID).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(vendorID string) {
	RateLimitHits.WithLabelValues(vendorID).Inc()
}

// Analytics pipeline metrics
func (r *PrometheusRegistry) IncrementAnalyticsErrors() {
	AnalyticsErrors.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

// HTTP Request metrics
func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

// Pricing metrics
func (r *NoOpRegistry) IncrementQuotes(source string)       {}
func (r *NoOpRegistry) RecordQuoteDiscount(percent float64) {}

// Booking metrics
func (r *NoOpRegistry) IncrementBookings(status string) {}

// Itinerary metrics
func (r *NoOpRegistry) IncrementItineraries()                 {}
func (r *NoOpRegistry) RecordSatisfactionScore(score float64) {}

// Recommendation metrics
func (r *NoOpRegistry) IncrementRecommendations() {}

// Rate limiting metrics
func (r *NoOpRegistry) IncrementRateLimitRequests(vendorID string) {}
func (r *NoOpRegistry) IncrementRateLimitHits(vendorID string)     {}

// Analytics pipeline metrics
func (r *NoOpRegistry) IncrementAnalyticsErrors() {}
