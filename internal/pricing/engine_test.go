package pricing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/opentripserve/internal/models"
)

func TestCalculateSmartPriceNeutralFactors(t *testing.T) {
	// With every multiplier neutral the final price must equal the base
	// price exactly.
	factors := models.PricingFactors{
		BasePrice:        200,
		Demand:           models.DemandMedium,
		OccupancyRate:    0,
		DaysUntilBooking: 30,
	}

	result := CalculateSmartPrice(factors)

	assert.Equal(t, 200.0, result.FinalPrice)
	assert.Equal(t, 0, result.Discount)
	assert.Equal(t, 1.0, result.DemandMultiplier)
	assert.Equal(t, 1.0, result.SeasonalMultiplier)
	assert.Equal(t, 1.0, result.UrgencyMultiplier)
	assert.Equal(t, "Standard pricing", result.Explanation)
}

func TestCalculateSmartPriceTable(t *testing.T) {
	tests := []struct {
		name      string
		factors   models.PricingFactors
		wantPrice float64
	}{
		{
			name: "low demand off-season",
			factors: models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandLow,
				Season:           models.SeasonOff,
				DaysUntilBooking: 30,
			},
			// 100 * 0.85 * 0.75
			wantPrice: 63.75,
		},
		{
			name: "high demand shoulder with occupancy",
			factors: models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandHigh,
				Season:           models.SeasonShoulder,
				OccupancyRate:    50,
				DaysUntilBooking: 30,
			},
			// 100 * 1.25 * 0.9 * 1.1
			wantPrice: 123.75,
		},
		{
			name: "early bird discount",
			factors: models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandMedium,
				DaysUntilBooking: 90,
			},
			wantPrice: 85,
		},
		{
			name: "budget tier low",
			factors: models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandMedium,
				DaysUntilBooking: 30,
				UserBudget:       models.BudgetLow,
			},
			wantPrice: 90,
		},
		{
			name: "budget tier high",
			factors: models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandMedium,
				DaysUntilBooking: 30,
				UserBudget:       models.BudgetHigh,
			},
			wantPrice: 110,
		},
		{
			name: "priced above competitors",
			factors: models.PricingFactors{
				BasePrice:        150,
				Demand:           models.DemandMedium,
				DaysUntilBooking: 30,
				CompetitorPrices: []float64{100, 110, 120},
			},
			// 150/110 > 1.1 so the 0.95 adjustment applies
			wantPrice: 142.5,
		},
		{
			name: "priced with competitors but not above",
			factors: models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandMedium,
				DaysUntilBooking: 30,
				CompetitorPrices: []float64{95, 100, 105},
			},
			wantPrice: 100,
		},
		{
			name: "unrecognized enums fall back to neutral",
			factors: models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandLevel("frenzied"),
				Season:           models.SeasonalFactor("monsoon"),
				DaysUntilBooking: 30,
				UserBudget:       models.BudgetLevel("lavish"),
			},
			wantPrice: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSmartPrice(tt.factors)
			assert.InDelta(t, tt.wantPrice, result.FinalPrice, 0.001)
		})
	}
}

func TestCalculateSmartPriceOccupancyMonotonic(t *testing.T) {
	// Holding everything else fixed, raising the occupancy rate must never
	// lower the final price.
	prev := -1.0
	for occ := 0.0; occ <= 100; occ += 5 {
		result := CalculateSmartPrice(models.PricingFactors{
			BasePrice:        120,
			Demand:           models.DemandMedium,
			OccupancyRate:    occ,
			DaysUntilBooking: 30,
		})
		require.GreaterOrEqual(t, result.FinalPrice, prev, "occupancy %v", occ)
		prev = result.FinalPrice
	}
}

func TestCalculateSmartPriceDiscountConsistency(t *testing.T) {
	factors := []models.PricingFactors{
		{BasePrice: 100, Demand: models.DemandPeak, Season: models.SeasonPeak, OccupancyRate: 95, DaysUntilBooking: 1},
		{BasePrice: 80, Demand: models.DemandLow, Season: models.SeasonOff, DaysUntilBooking: 90},
		{BasePrice: 250, Demand: models.DemandHigh, Season: models.SeasonShoulder, OccupancyRate: 60, DaysUntilBooking: 5},
	}

	for _, f := range factors {
		result := CalculateSmartPrice(f)
		implied := f.BasePrice * (1 - float64(result.Discount)/100)
		// Discount is an integer percentage, so the reconstruction is only
		// accurate to half a percent of base.
		assert.InDelta(t, result.FinalPrice, implied, f.BasePrice*0.005+0.01)
	}
}

func TestUrgencyThresholdBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{days: -2, want: 0.8}, // past check-in still matches the <=3 branch
		{days: 0, want: 0.8},
		{days: 3, want: 0.8},
		{days: 4, want: 0.9},
		{days: 7, want: 0.9},
		{days: 8, want: 1.0},
		{days: 59, want: 1.0},
		{days: 60, want: 0.85},
		{days: 120, want: 0.85},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			result := CalculateSmartPrice(models.PricingFactors{
				BasePrice:        100,
				Demand:           models.DemandMedium,
				DaysUntilBooking: tt.days,
			})
			assert.Equal(t, tt.want, result.UrgencyMultiplier)
		})
	}
}

func TestCalculateSmartPricePeakScenario(t *testing.T) {
	result := CalculateSmartPrice(models.PricingFactors{
		BasePrice:        150,
		Demand:           models.DemandPeak,
		Season:           models.SeasonPeak,
		OccupancyRate:    95,
		DaysUntilBooking: 1,
	})

	// 150 * 1.5 * 1.3 * 1.19 * 0.8 = 278.46
	assert.InDelta(t, 278.46, result.FinalPrice, 0.001)
	assert.Greater(t, result.FinalPrice, 150.0)
	assert.Negative(t, result.Discount)

	assert.Contains(t, result.Explanation, "premium")
	assert.Contains(t, result.Explanation, "High demand period")
	assert.Contains(t, result.Explanation, "Peak season pricing")
	assert.Contains(t, result.Explanation, "Last-minute booking discount")
	assert.Contains(t, result.Explanation, "Limited availability")
	assert.Contains(t, result.Explanation, " • ")
}

func TestCalculateDemandLevel(t *testing.T) {
	tests := []struct {
		name               string
		bookings, capacity float64
		historicalAverage  float64
		want               models.DemandLevel
	}{
		{name: "occupancy triggers peak", bookings: 95, capacity: 100, historicalAverage: 50, want: models.DemandPeak},
		{name: "ratio triggers peak", bookings: 30, capacity: 100, historicalAverage: 20, want: models.DemandPeak},
		{name: "occupancy triggers high", bookings: 75, capacity: 100, historicalAverage: 75, want: models.DemandHigh},
		{name: "ratio triggers high", bookings: 25, capacity: 100, historicalAverage: 20, want: models.DemandHigh},
		{name: "medium occupancy", bookings: 45, capacity: 100, historicalAverage: 60, want: models.DemandMedium},
		{name: "ratio holds at medium", bookings: 20, capacity: 100, historicalAverage: 25, want: models.DemandMedium},
		{name: "low", bookings: 10, capacity: 100, historicalAverage: 50, want: models.DemandLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDemandLevel(tt.bookings, tt.capacity, tt.historicalAverage)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateSeasonalFactor(t *testing.T) {
	tests := []struct {
		month time.Month
		want  models.SeasonalFactor
	}{
		{time.January, models.SeasonOff},
		{time.February, models.SeasonOff},
		{time.March, models.SeasonOff},
		{time.April, models.SeasonShoulder},
		{time.May, models.SeasonShoulder},
		{time.June, models.SeasonPeak},
		{time.July, models.SeasonPeak},
		{time.August, models.SeasonPeak},
		{time.September, models.SeasonShoulder},
		{time.October, models.SeasonShoulder},
		{time.November, models.SeasonOff},
		{time.December, models.SeasonPeak},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			date := time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC)
			assert.Equal(t, tt.want, CalculateSeasonalFactor(date, "lisbon"))
		})
	}
}

func TestCalculateSmartPriceDeterministic(t *testing.T) {
	factors := models.PricingFactors{
		BasePrice:        175,
		Demand:           models.DemandHigh,
		Season:           models.SeasonShoulder,
		OccupancyRate:    42,
		DaysUntilBooking: 12,
		CompetitorPrices: []float64{160, 180},
		UserBudget:       models.BudgetMedium,
	}

	first := CalculateSmartPrice(factors)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CalculateSmartPrice(factors))
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 1.23, round2(1.2345), 1e-9)
	assert.InDelta(t, 278.46, round2(278.4600000001), 1e-9)
	assert.Equal(t, 100.0, round2(100))
}
