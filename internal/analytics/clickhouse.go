package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/opentripserve/internal/observability"
)

// AnalyticsService defines the interface for analytics operations.
// Implementations should handle cases where underlying storage is unavailable
// by returning ErrUnavailable.
type AnalyticsService interface {
	// RecordQuote records a served price quote with its computed factors.
	RecordQuote(ctx context.Context, requestID string, vendorID int, destination string, basePrice, finalPrice float64, discount int, demand, season, deviceType, country string) error
	// RecordBooking records an accepted booking against a vendor.
	RecordBooking(ctx context.Context, requestID string, vendorID int, destination string, price float64, deviceType, country string) error
	// RecordItinerary records a generated itinerary and its predicted satisfaction.
	RecordItinerary(ctx context.Context, requestID, destination string, days, activityCount, satisfaction int, totalCost float64, deviceType, country string) error
}

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

// TripEvent mirrors a row in the trip_events table.
type TripEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id"`
	VendorID     *int32    `json:"vendor_id"`
	Destination  *string   `json:"destination"`
	BasePrice    float64   `json:"base_price"`
	FinalPrice   float64   `json:"final_price"`
	Discount     *int32    `json:"discount"`
	Demand       *string   `json:"demand"`
	Season       *string   `json:"season"`
	Days         *int32    `json:"days"`
	Activities   *int32    `json:"activities"`
	Satisfaction *int32    `json:"satisfaction"`
	DeviceType   *string   `json:"device_type"`
	Country      *string   `json:"country"`
}

// InitClickHouse connects to ClickHouse and ensures the trip_events table exists.
func InitClickHouse(dsn string, metrics observability.MetricsRegistry, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS trip_events (
       timestamp    DateTime,
       event_type   String,
       request_id   String,
       vendor_id    Nullable(Int32),
       destination  Nullable(String),
       base_price   Float64,
       final_price  Float64,
       discount     Nullable(Int32),
       demand       Nullable(String),
       season       Nullable(String),
       days         Nullable(Int32),
       activities   Nullable(Int32),
       satisfaction Nullable(Int32),
       device_type  Nullable(String),
       country      Nullable(String)
   ) ENGINE=MergeTree() ORDER BY (event_type, timestamp)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db, Metrics: metrics}, nil
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// insertEvent inserts a single event row into the trip_events table.
func (a *Analytics) insertEvent(ctx context.Context, ev TripEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}

	stmt := `INSERT INTO trip_events (timestamp, event_type, request_id, vendor_id, destination, base_price, final_price, discount, demand, season, days, activities, satisfaction, device_type, country) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt, time.Now(), ev.EventType, ev.RequestID,
		ev.VendorID, ev.Destination, ev.BasePrice, ev.FinalPrice, ev.Discount,
		ev.Demand, ev.Season, ev.Days, ev.Activities, ev.Satisfaction,
		ev.DeviceType, ev.Country); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("event_type", ev.EventType))
		a.Metrics.IncrementAnalyticsErrors()
		return fmt.Errorf("insert %s event: %w", ev.EventType, err)
	}
	return nil
}

// RecordQuote records a served price quote with its computed factors.
func (a *Analytics) RecordQuote(ctx context.Context, requestID string, vendorID int, destination string, basePrice, finalPrice float64, discount int, demand, season, deviceType, country string) error {
	ev := TripEvent{
		EventType:   "quote",
		RequestID:   requestID,
		VendorID:    nullInt32(int32(vendorID), vendorID > 0),
		Destination: nullString(destination),
		BasePrice:   basePrice,
		FinalPrice:  finalPrice,
		Discount:    nullInt32(int32(discount), true),
		Demand:      nullString(demand),
		Season:      nullString(season),
		DeviceType:  nullString(deviceType),
		Country:     nullString(country),
	}
	return a.insertEvent(ctx, ev)
}

// RecordBooking records an accepted booking against a vendor.
func (a *Analytics) RecordBooking(ctx context.Context, requestID string, vendorID int, destination string, price float64, deviceType, country string) error {
	ev := TripEvent{
		EventType:   "booking",
		RequestID:   requestID,
		VendorID:    nullInt32(int32(vendorID), vendorID > 0),
		Destination: nullString(destination),
		FinalPrice:  price,
		DeviceType:  nullString(deviceType),
		Country:     nullString(country),
	}
	return a.insertEvent(ctx, ev)
}

// RecordItinerary records a generated itinerary and its predicted satisfaction.
func (a *Analytics) RecordItinerary(ctx context.Context, requestID, destination string, days, activityCount, satisfaction int, totalCost float64, deviceType, country string) error {
	ev := TripEvent{
		EventType:    "itinerary",
		RequestID:    requestID,
		Destination:  nullString(destination),
		FinalPrice:   totalCost,
		Days:         nullInt32(int32(days), true),
		Activities:   nullInt32(int32(activityCount), true),
		Satisfaction: nullInt32(int32(satisfaction), true),
		DeviceType:   nullString(deviceType),
		Country:      nullString(country),
	}
	return a.insertEvent(ctx, ev)
}

// GetEventsByRequestID returns all events for a given request ID ordered by timestamp.
func (a *Analytics) GetEventsByRequestID(id string) ([]TripEvent, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	query := `SELECT timestamp, event_type, request_id, vendor_id, destination, base_price, final_price, discount, demand, season, days, activities, satisfaction, device_type, country FROM trip_events WHERE request_id=? ORDER BY timestamp`
	rows, err := a.DB.QueryContext(context.Background(), query, id)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var events []TripEvent
	for rows.Next() {
		var ev TripEvent
		if err := rows.Scan(&ev.Timestamp, &ev.EventType, &ev.RequestID, &ev.VendorID, &ev.Destination, &ev.BasePrice, &ev.FinalPrice, &ev.Discount, &ev.Demand, &ev.Season, &ev.Days, &ev.Activities, &ev.Satisfaction, &ev.DeviceType, &ev.Country); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return events, nil
}

// Close terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt32(v int32, valid bool) *int32 {
	if !valid {
		return nil
	}
	return &v
}
