package analytics

import "context"

var _ AnalyticsService = (*MockAnalytics)(nil)

// MockAnalytics is a mock implementation of Analytics for testing
type MockAnalytics struct {
	Quotes      int
	Bookings    int
	Itineraries int
}

// NewMockAnalytics creates a new mock analytics instance
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

// RecordQuote records a quote event (mock implementation)
func (m *MockAnalytics) RecordQuote(ctx context.Context, requestID string, vendorID int, destination string, basePrice, finalPrice float64, discount int, demand, season, deviceType, country string) error {
	m.Quotes++
	return nil
}

// RecordBooking records a booking event (mock implementation)
func (m *MockAnalytics) RecordBooking(ctx context.Context, requestID string, vendorID int, destination string, price float64, deviceType, country string) error {
	m.Bookings++
	return nil
}

// RecordItinerary records an itinerary event (mock implementation)
func (m *MockAnalytics) RecordItinerary(ctx context.Context, requestID, destination string, days, activityCount, satisfaction int, totalCost float64, deviceType, country string) error {
	m.Itineraries++
	return nil
}
