// Package pricing implements the dynamic pricing engine.
//
// A quote starts from a vendor's base price and applies six independent
// multiplicative adjustments: demand level, seasonal factor, occupancy,
// booking urgency, competitor positioning and traveler budget alignment.
// Every function in the package is a pure, deterministic transformation of
// its inputs — no I/O, no clock reads, no shared state — so calls are safe
// to run concurrently and repeated calls with identical inputs always
// produce identical results.
package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/patrickwarner/opentripserve/internal/models"
)

// demandMultiplier maps a demand level to its price multiplier. Unrecognized
// levels return the neutral 1.0 rather than failing; the enum is open on the
// wire even though the documented set is closed.
func demandMultiplier(d models.DemandLevel) float64 {
	switch d {
	case models.DemandLow:
		return 0.85
	case models.DemandMedium:
		return 1.0
	case models.DemandHigh:
		return 1.25
	case models.DemandPeak:
		return 1.5
	default:
		return 1.0
	}
}

// seasonalMultiplier maps a seasonal factor to its price multiplier, with a
// neutral 1.0 default for unrecognized values.
func seasonalMultiplier(s models.SeasonalFactor) float64 {
	switch s {
	case models.SeasonOff:
		return 0.75
	case models.SeasonShoulder:
		return 0.9
	case models.SeasonPeak:
		return 1.3
	default:
		return 1.0
	}
}

// urgencyMultiplier returns the booking-lead-time adjustment. The threshold
// chain is ordered: a booking 2 days out matches the <=3 branch before the
// <=7 one. Negative lead times (check-in already past) also land in the
// <=3 branch; rejecting past dates is the transport layer's job.
func urgencyMultiplier(daysUntilBooking int) float64 {
	switch {
	case daysUntilBooking <= 3:
		return 0.8
	case daysUntilBooking <= 7:
		return 0.9
	case daysUntilBooking >= 60:
		return 0.85
	default:
		return 1.0
	}
}

// budgetMultiplier aligns the price with the traveler's budget tier. Medium,
// empty and unrecognized tiers are all neutral.
func budgetMultiplier(b models.BudgetLevel) float64 {
	switch b {
	case models.BudgetLow:
		return 0.9
	case models.BudgetHigh:
		return 1.1
	default:
		return 1.0
	}
}

// competitorAdjustment discounts by 5% when the base price sits more than
// 10% above the competitor average. An empty price list means no adjustment.
func competitorAdjustment(basePrice float64, competitorPrices []float64) float64 {
	if len(competitorPrices) == 0 {
		return 1.0
	}
	var sum float64
	for _, p := range competitorPrices {
		sum += p
	}
	avg := sum / float64(len(competitorPrices))
	if basePrice/avg > 1.1 {
		return 0.95
	}
	return 1.0
}

// CalculateSmartPrice computes a demand/seasonality/urgency-adjusted price
// from a base price and contextual factors. It is total over well-typed
// input: there is no error path, and unrecognized enum values fall back to
// neutral multipliers.
func CalculateSmartPrice(factors models.PricingFactors) models.PricingResult {
	demand := demandMultiplier(factors.Demand)
	seasonal := seasonalMultiplier(factors.Season)
	occupancy := 1 + (factors.OccupancyRate/100)*0.2
	urgency := urgencyMultiplier(factors.DaysUntilBooking)
	competitor := competitorAdjustment(factors.BasePrice, factors.CompetitorPrices)
	budget := budgetMultiplier(factors.UserBudget)

	finalPrice := round2(factors.BasePrice * demand * seasonal * occupancy * urgency * competitor * budget)
	discount := int(math.Round((factors.BasePrice - finalPrice) / factors.BasePrice * 100))

	return models.PricingResult{
		FinalPrice:         finalPrice,
		Discount:           discount,
		DemandMultiplier:   demand,
		SeasonalMultiplier: seasonal,
		UrgencyMultiplier:  urgency,
		Explanation:        buildExplanation(factors, discount),
	}
}

// CalculateDemandLevel derives a demand level from live booking counts.
// Peak is checked before high and high before medium, so a vendor at 95%
// occupancy is peak even when its demand ratio is modest. Division by zero
// from capacity or historicalAverage is the caller's validation concern.
func CalculateDemandLevel(currentBookings, capacity, historicalAverage float64) models.DemandLevel {
	occupancyRate := currentBookings / capacity * 100
	demandRatio := currentBookings / historicalAverage

	switch {
	case occupancyRate >= 90 || demandRatio >= 1.5:
		return models.DemandPeak
	case occupancyRate >= 70 || demandRatio >= 1.2:
		return models.DemandHigh
	case occupancyRate >= 40 || demandRatio >= 0.8:
		return models.DemandMedium
	default:
		return models.DemandLow
	}
}

// CalculateSeasonalFactor derives the seasonal factor from the calendar
// month alone. June, July, August and December are peak; April, May,
// September and October are shoulder; the rest is off-season. The
// destination parameter is reserved for destination-specific seasonality
// curves and is currently unused.
func CalculateSeasonalFactor(date time.Time, destination string) models.SeasonalFactor {
	_ = destination
	switch date.Month() {
	case time.June, time.July, time.August, time.December:
		return models.SeasonPeak
	case time.April, time.May, time.September, time.October:
		return models.SeasonShoulder
	default:
		return models.SeasonOff
	}
}

// buildExplanation assembles the human-readable clause list describing which
// pricing rules fired. Clauses are joined with " • "; when nothing fired the
// literal "Standard pricing" is returned.
func buildExplanation(factors models.PricingFactors, discount int) string {
	var parts []string

	if discount > 0 {
		parts = append(parts, fmt.Sprintf("%d%% discount applied", discount))
	} else if discount < 0 {
		parts = append(parts, fmt.Sprintf("%d%% premium due to high demand", -discount))
	}

	if factors.Demand == models.DemandPeak || factors.Demand == models.DemandHigh {
		parts = append(parts, "High demand period")
	}

	if factors.Season == models.SeasonPeak {
		parts = append(parts, "Peak season pricing")
	} else if factors.Season == models.SeasonOff {
		parts = append(parts, "Off-season discount")
	}

	if factors.DaysUntilBooking <= 3 {
		parts = append(parts, "Last-minute booking discount")
	} else if factors.DaysUntilBooking >= 60 {
		parts = append(parts, "Early bird discount")
	}

	if factors.OccupancyRate > 80 {
		parts = append(parts, "Limited availability")
	}

	if len(parts) == 0 {
		return "Standard pricing"
	}
	return strings.Join(parts, " • ")
}

// round2 rounds to two decimal places, the precision of every quoted price.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
