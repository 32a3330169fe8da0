package observability

import "time"

// MockMetricsRegistry is a mock implementation of MetricsRegistry for testing
type MockMetricsRegistry struct{}

// HTTP Request metrics
func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

// Pricing metrics
func (m *MockMetricsRegistry) IncrementQuotes(source string)       {}
func (m *MockMetricsRegistry) RecordQuoteDiscount(percent float64) {}

// Booking metrics
func (m *MockMetricsRegistry) IncrementBookings(status string) {}

// Itinerary metrics
func (m *MockMetricsRegistry) IncrementItineraries()                 {}
func (m *MockMetricsRegistry) RecordSatisfactionScore(score float64) {}

// Recommendation metrics
func (m *MockMetricsRegistry) IncrementRecommendations() {}

// Rate limiting metrics
func (m *MockMetricsRegistry) IncrementRateLimitRequests(vendorID string) {}
func (m *MockMetricsRegistry) IncrementRateLimitHits(vendorID string)     {}

// Analytics pipeline metrics
func (m *MockMetricsRegistry) IncrementAnalyticsErrors() {}
