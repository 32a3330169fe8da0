package models

import "time"

// Demand levels describe how close a bookable resource is to capacity.
// They are a closed set; unrecognized values are treated as neutral by the
// pricing engine rather than propagating a lookup miss into arithmetic.
type DemandLevel string

const (
	DemandLow    DemandLevel = "low"
	DemandMedium DemandLevel = "medium"
	DemandHigh   DemandLevel = "high"
	DemandPeak   DemandLevel = "peak"
)

// Seasonal factors describe calendar-driven pricing pressure.
type SeasonalFactor string

const (
	SeasonOff      SeasonalFactor = "off-season"
	SeasonShoulder SeasonalFactor = "shoulder"
	SeasonPeak     SeasonalFactor = "peak-season"
)

// BudgetLevel is a traveler's self-reported spending tier. It is shared by
// the pricing engine (budget alignment multiplier) and the itinerary
// optimizer (activity cost ceilings and daily budget limits).
type BudgetLevel string

const (
	BudgetLow    BudgetLevel = "low"
	BudgetMedium BudgetLevel = "medium"
	BudgetHigh   BudgetLevel = "high"
)

// PricingFactors is the full input to a smart price calculation. All fields
// are read-only for the duration of the call; the engine never mutates them.
//
// BasePrice must be positive and OccupancyRate must be within [0,100] —
// enforcing that is the caller's job (the HTTP layer rejects malformed
// requests before the engine runs).
type PricingFactors struct {
	BasePrice        float64        `json:"base_price"`
	Demand           DemandLevel    `json:"demand_level"`
	Season           SeasonalFactor `json:"seasonal_factor"`
	OccupancyRate    float64        `json:"occupancy_rate"`
	DaysUntilBooking int            `json:"days_until_booking"`
	// CompetitorPrices is optional; an empty slice disables the
	// competitor adjustment entirely.
	CompetitorPrices []float64 `json:"competitor_prices,omitempty"`
	// UserBudget is optional; empty means no budget adjustment.
	UserBudget BudgetLevel `json:"user_budget_level,omitempty"`
}

// PricingResult is the fully derived output of a smart price calculation.
// It has no identity or lifecycle — one is created and discarded per call.
//
// Discount is a rounded integer percentage relative to the base price:
// positive means the final price is below base, negative means a markup.
// The multiplier fields echo what was actually applied so callers can
// surface pricing diagnostics.
type PricingResult struct {
	FinalPrice         float64 `json:"final_price"`
	Discount           int     `json:"discount"`
	DemandMultiplier   float64 `json:"demand_multiplier"`
	SeasonalMultiplier float64 `json:"seasonal_multiplier"`
	UrgencyMultiplier  float64 `json:"urgency_multiplier"`
	Explanation        string  `json:"explanation"`
}

// PricePoint is one historical observation of bookings and price for a
// vendor, used by the optimal price predictor.
type PricePoint struct {
	Date     time.Time `json:"date"`
	Bookings int       `json:"bookings"`
	Price    float64   `json:"price"`
}
