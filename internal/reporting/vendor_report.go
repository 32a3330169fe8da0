// Package reporting provides vendor performance reporting functionality.
// It queries ClickHouse analytics data to generate comprehensive reports
// including quote and booking metrics, daily breakdowns, demand level
// analysis and traveler origin breakdowns.
package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// VendorMetrics represents performance metrics for a vendor over a specific time period.
// Revenue is the sum of booked prices. ConversionRate is expressed as a percentage (0-100).
type VendorMetrics struct {
	VendorID       int       `json:"vendor_id"`       // Vendor identifier
	Date           time.Time `json:"date"`            // Date for daily metrics, current time for totals
	Quotes         int64     `json:"quotes"`          // Total price quotes served
	Bookings       int64     `json:"bookings"`        // Total bookings recorded
	Revenue        float64   `json:"revenue"`         // Sum of booked prices
	ConversionRate float64   `json:"conversion_rate"` // Bookings per quote as percentage
	AvgQuotePrice  float64   `json:"avg_quote_price"` // Mean final price across quotes
	AvgDiscount    float64   `json:"avg_discount"`    // Mean discount percentage across quotes
}

// VendorSummary contains comprehensive vendor performance data including
// overall metrics, daily breakdowns, demand level analysis and traveler
// origin breakdowns.
type VendorSummary struct {
	VendorID      int             `json:"vendor_id"`      // Vendor identifier
	TotalMetrics  VendorMetrics   `json:"total_metrics"`  // Aggregated metrics for the entire reporting period
	DailyMetrics  []VendorMetrics `json:"daily_metrics"`  // Day-by-day performance breakdown
	DemandMetrics []DemandMetrics `json:"demand_metrics"` // Quote breakdown by derived demand level
	OriginMetrics []OriginMetrics `json:"origin_metrics"` // Breakdown by traveler country
}

// DemandMetrics represents quote metrics grouped by the demand level the
// pricing engine derived at quote time. Used to see how pricing reacts to load.
type DemandMetrics struct {
	Demand        string  `json:"demand"`          // Demand level: low, medium, high or peak
	Quotes        int64   `json:"quotes"`          // Quotes served at this demand level
	AvgQuotePrice float64 `json:"avg_quote_price"` // Mean final price at this demand level
	AvgDiscount   float64 `json:"avg_discount"`    // Mean discount percentage at this demand level
}

// OriginMetrics represents quote and booking metrics grouped by traveler
// country as resolved from the request IP.
type OriginMetrics struct {
	Country  string  `json:"country"`  // ISO country code
	Quotes   int64   `json:"quotes"`   // Quotes served to travelers from this country
	Bookings int64   `json:"bookings"` // Bookings from this country
	Revenue  float64 `json:"revenue"`  // Sum of booked prices from this country
}

// GenerateVendorReport queries ClickHouse for vendor performance data and
// assembles a comprehensive report including daily metrics, totals, demand
// level analysis and traveler origins.
func GenerateVendorReport(ctx context.Context, db *sql.DB, vendorID int, days int) (*VendorSummary, error) {
	summary := &VendorSummary{
		VendorID: vendorID,
	}

	dailyMetrics, err := getDailyMetrics(ctx, db, vendorID, days)
	if err != nil {
		return nil, fmt.Errorf("get daily metrics: %w", err)
	}
	summary.DailyMetrics = dailyMetrics

	// Calculate aggregated total metrics from daily data
	totalMetrics := VendorMetrics{
		VendorID: vendorID,
		Date:     time.Now(),
	}

	var weightedPrice, weightedDiscount float64
	for _, dm := range dailyMetrics {
		totalMetrics.Quotes += dm.Quotes
		totalMetrics.Bookings += dm.Bookings
		totalMetrics.Revenue += dm.Revenue
		weightedPrice += dm.AvgQuotePrice * float64(dm.Quotes)
		weightedDiscount += dm.AvgDiscount * float64(dm.Quotes)
	}

	if totalMetrics.Quotes > 0 {
		totalMetrics.ConversionRate = float64(totalMetrics.Bookings) / float64(totalMetrics.Quotes) * 100
		totalMetrics.AvgQuotePrice = weightedPrice / float64(totalMetrics.Quotes)
		totalMetrics.AvgDiscount = weightedDiscount / float64(totalMetrics.Quotes)
	}
	summary.TotalMetrics = totalMetrics

	demandMetrics, err := getDemandMetrics(ctx, db, vendorID, days)
	if err != nil {
		return nil, fmt.Errorf("get demand metrics: %w", err)
	}
	summary.DemandMetrics = demandMetrics

	originMetrics, err := getOriginMetrics(ctx, db, vendorID, days, 10)
	if err != nil {
		return nil, fmt.Errorf("get origin metrics: %w", err)
	}
	summary.OriginMetrics = originMetrics

	return summary, nil
}

// getDailyMetrics queries ClickHouse for daily performance metrics for the
// specified vendor over the given number of days. Returns metrics grouped by
// date with calculated conversion rate and quote price averages.
func getDailyMetrics(ctx context.Context, db *sql.DB, vendorID int, days int) ([]VendorMetrics, error) {
	query := `
		SELECT
			toDate(timestamp) as date,
			countIf(event_type = 'quote') as quotes,
			countIf(event_type = 'booking') as bookings,
			sumIf(final_price, event_type = 'booking') as revenue,
			round(if(quotes > 0, bookings / quotes * 100, 0), 2) as conversion_rate,
			round(if(quotes > 0, avgIf(final_price, event_type = 'quote'), 0), 2) as avg_quote_price,
			round(if(quotes > 0, avgIf(assumeNotNull(discount), event_type = 'quote'), 0), 2) as avg_discount
		FROM trip_events
		WHERE vendor_id = ?
			AND timestamp >= now() - INTERVAL ? DAY
		GROUP BY date
		ORDER BY date DESC`

	rows, err := db.QueryContext(ctx, query, vendorID, days)
	if err != nil {
		return nil, fmt.Errorf("query daily metrics: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var metrics []VendorMetrics
	for rows.Next() {
		var m VendorMetrics
		m.VendorID = vendorID // Set it directly since we're filtering by it
		err := rows.Scan(&m.Date, &m.Quotes, &m.Bookings,
			&m.Revenue, &m.ConversionRate, &m.AvgQuotePrice, &m.AvgDiscount)
		if err != nil {
			return nil, fmt.Errorf("scan daily metrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// getDemandMetrics queries ClickHouse for quote metrics grouped by the demand
// level recorded with each quote. Returns rows ordered by quote volume.
func getDemandMetrics(ctx context.Context, db *sql.DB, vendorID int, days int) ([]DemandMetrics, error) {
	query := `
		SELECT
			assumeNotNull(demand) as demand,
			count() as quotes,
			round(avg(final_price), 2) as avg_quote_price,
			round(avg(assumeNotNull(discount)), 2) as avg_discount
		FROM trip_events
		WHERE vendor_id = ?
			AND event_type = 'quote'
			AND demand IS NOT NULL
			AND timestamp >= now() - INTERVAL ? DAY
		GROUP BY demand
		ORDER BY quotes DESC`

	rows, err := db.QueryContext(ctx, query, vendorID, days)
	if err != nil {
		return nil, fmt.Errorf("query demand metrics: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var metrics []DemandMetrics
	for rows.Next() {
		var m DemandMetrics
		err := rows.Scan(&m.Demand, &m.Quotes, &m.AvgQuotePrice, &m.AvgDiscount)
		if err != nil {
			return nil, fmt.Errorf("scan demand metrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// getOriginMetrics queries ClickHouse for quote and booking metrics grouped by
// traveler country. Only includes events with a resolved country and returns
// up to 'limit' results ordered by bookings descending.
func getOriginMetrics(ctx context.Context, db *sql.DB, vendorID int, days int, limit int) ([]OriginMetrics, error) {
	query := `
		SELECT
			assumeNotNull(country) as country,
			countIf(event_type = 'quote') as quotes,
			countIf(event_type = 'booking') as bookings,
			sumIf(final_price, event_type = 'booking') as revenue
		FROM trip_events
		WHERE vendor_id = ?
			AND country IS NOT NULL
			AND timestamp >= now() - INTERVAL ? DAY
		GROUP BY country
		ORDER BY bookings DESC
		LIMIT ?`

	rows, err := db.QueryContext(ctx, query, vendorID, days, limit)
	if err != nil {
		return nil, fmt.Errorf("query origin metrics: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var metrics []OriginMetrics
	for rows.Next() {
		var m OriginMetrics
		err := rows.Scan(&m.Country, &m.Quotes, &m.Bookings, &m.Revenue)
		if err != nil {
			return nil, fmt.Errorf("scan origin metrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
