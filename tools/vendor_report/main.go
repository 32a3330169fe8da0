// Vendor Report Tool generates comprehensive performance reports for vendors.
//
// This tool connects directly to ClickHouse to query analytics data and generates
// formatted reports showing quote and booking metrics, daily breakdowns and
// demand level analysis with automated insights.
//
// Usage:
//
//	go run ./tools/vendor_report -vendor-id=123 -days=30
//
// The tool outputs a formatted report including:
//   - Overall performance summary (quotes, bookings, conversion, revenue)
//   - Daily performance breakdown
//   - Quote breakdown by derived demand level
//   - Traveler origin breakdown
//   - Automated insights and pricing recommendations
//
// Configuration:
//
//	-vendor-id: Required. The vendor ID to generate a report for
//	-days: Optional. Number of days to include in the report (default: 7)
//	-clickhouse-dsn: Optional. ClickHouse connection string (default: tcp://localhost:9000)
//
// Environment Variables:
//
//	CLICKHOUSE_DSN: ClickHouse connection string (overridden by -clickhouse-dsn flag)
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/opentripserve/internal/reporting"
)

// main is the entry point for the vendor report tool. It parses command line flags,
// establishes a connection to ClickHouse, generates the vendor report, and outputs
// the formatted results to stdout.
func main() {
	var (
		vendorID = flag.Int("vendor-id", 0, "Vendor ID to generate report for")
		days     = flag.Int("days", 7, "Number of days to include in report")
		dsn      = flag.String("clickhouse-dsn", getEnv("CLICKHOUSE_DSN", "tcp://localhost:9000"), "ClickHouse DSN")
	)
	flag.Parse()

	if *vendorID == 0 {
		fmt.Fprintf(os.Stderr, "Error: vendor-id is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Connect to ClickHouse
	db, err := sql.Open("clickhouse", *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to ClickHouse: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
		}
	}()

	if err := db.PingContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error pinging ClickHouse: %v\n", err)
		os.Exit(1)
	}

	// Generate vendor report using shared package
	summary, err := reporting.GenerateVendorReport(context.Background(), db, *vendorID, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	// Print formatted report
	printVendorReport(summary, *days)
}

// printVendorReport outputs a professionally formatted vendor performance report
// to stdout. The report includes overall metrics, daily breakdown tables, demand
// level analysis and automated insights with pricing recommendations.
func printVendorReport(summary *reporting.VendorSummary, days int) {
	fmt.Printf("═══════════════════════════════════════════════════════════════════════════════════\n")
	fmt.Printf("                               VENDOR PERFORMANCE REPORT                           \n")
	fmt.Printf("═══════════════════════════════════════════════════════════════════════════════════\n")
	fmt.Printf("Vendor ID: %d\n", summary.VendorID)
	fmt.Printf("Report Period: %d days (ending %s)\n", days, time.Now().Format("2006-01-02"))
	fmt.Printf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	// Overall Performance
	fmt.Printf("📊 OVERALL PERFORMANCE\n")
	fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
	total := summary.TotalMetrics
	fmt.Printf("Total Quotes:       %s\n", formatNumber(total.Quotes))
	fmt.Printf("Total Bookings:     %s\n", formatNumber(total.Bookings))
	fmt.Printf("Total Revenue:      $%.2f\n", total.Revenue)
	fmt.Printf("Conversion Rate:    %.2f%%\n", total.ConversionRate)
	fmt.Printf("Avg Quote Price:    $%.2f\n", total.AvgQuotePrice)
	fmt.Printf("Avg Discount:       %.2f%%\n", total.AvgDiscount)
	fmt.Printf("\n")

	// Daily Breakdown
	if len(summary.DailyMetrics) > 0 {
		fmt.Printf("📅 DAILY BREAKDOWN\n")
		fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
		fmt.Printf("Date        | Quotes | Bookings |  Conv.  |  Revenue  | Avg Price | Avg Disc \n")
		fmt.Printf("------------|--------|----------|---------|-----------|-----------|----------\n")
		for _, dm := range summary.DailyMetrics {
			fmt.Printf("%-10s | %6s | %8s | %6.2f%% | $%8.2f | $%8.2f | %7.2f%%\n",
				dm.Date.Format("2006-01-02"),
				formatNumber(dm.Quotes),
				formatNumber(dm.Bookings),
				dm.ConversionRate,
				dm.Revenue,
				dm.AvgQuotePrice,
				dm.AvgDiscount,
			)
		}
		fmt.Printf("\n")
	}

	// Demand Level Breakdown
	if len(summary.DemandMetrics) > 0 {
		fmt.Printf("📈 DEMAND LEVEL BREAKDOWN\n")
		fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
		fmt.Printf("Demand | Quotes | Avg Price | Avg Disc \n")
		fmt.Printf("-------|--------|-----------|----------\n")
		for _, d := range summary.DemandMetrics {
			fmt.Printf("%-6s | %6s | $%8.2f | %7.2f%%\n",
				d.Demand,
				formatNumber(d.Quotes),
				d.AvgQuotePrice,
				d.AvgDiscount,
			)
		}
		fmt.Printf("\n")
	}

	// Traveler Origins
	if len(summary.OriginMetrics) > 0 {
		fmt.Printf("🌍 TRAVELER ORIGINS\n")
		fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
		fmt.Printf("Country | Quotes | Bookings |  Revenue  \n")
		fmt.Printf("--------|--------|----------|-----------\n")
		for _, o := range summary.OriginMetrics {
			fmt.Printf("%-7s | %6s | %8s | $%8.2f\n",
				o.Country,
				formatNumber(o.Quotes),
				formatNumber(o.Bookings),
				o.Revenue,
			)
		}
		fmt.Printf("\n")
	}

	// Insights
	fmt.Printf("💡 INSIGHTS & RECOMMENDATIONS\n")
	fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")

	if total.ConversionRate == 0 {
		fmt.Printf("⚠️  No bookings recorded - consider reviewing base price against competitors\n")
	} else if total.ConversionRate < 2.0 {
		fmt.Printf("⚠️  Low conversion (%.2f%%) - quotes may be priced above traveler budgets\n", total.ConversionRate)
	} else if total.ConversionRate > 10.0 {
		fmt.Printf("✅ Excellent conversion (%.2f%%) - demand supports the current pricing\n", total.ConversionRate)
	} else {
		fmt.Printf("✅ Good conversion (%.2f%%) - within normal range\n", total.ConversionRate)
	}

	// Demand mix insights
	if len(summary.DemandMetrics) > 0 {
		var peakQuotes, totalQuotes int64
		for _, d := range summary.DemandMetrics {
			totalQuotes += d.Quotes
			if d.Demand == "peak" || d.Demand == "high" {
				peakQuotes += d.Quotes
			}
		}
		if totalQuotes > 0 {
			share := float64(peakQuotes) / float64(totalQuotes) * 100
			if share > 50 {
				fmt.Printf("📈 %.1f%% of quotes were at high or peak demand - capacity may be the constraint\n", share)
			} else if share == 0 {
				fmt.Printf("🔍 No high-demand quotes in this period - surcharges never applied\n")
			}
		}
	}

	if total.AvgDiscount < -20 {
		fmt.Printf("⚠️  Quotes averaged a %.1f%% surcharge - monitor for traveler drop-off\n", -total.AvgDiscount)
	} else if total.AvgDiscount > 15 {
		fmt.Printf("🔍 Quotes averaged a %.1f%% discount - base price may be set too high\n", total.AvgDiscount)
	}

	fmt.Printf("═══════════════════════════════════════════════════════════════════════════════════\n")
}

// formatNumber formats large integers with comma separators for improved readability.
// Example: 1234567 becomes "1,234,567"
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	// Add commas for thousands separators
	result := ""
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}
	return result
}

// getEnv retrieves an environment variable value or returns a default value if not set.
// Used for configuration with fallback defaults.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
