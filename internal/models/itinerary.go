package models

// Trip pace settings control itinerary density: how many activities the
// optimizer schedules into a single day.
const (
	PaceRelaxed  = "relaxed"  // 2 activities per day
	PaceModerate = "moderate" // 3 activities per day
	PacePacked   = "packed"   // 5 activities per day
)

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Activity is a single bookable or visitable item supplied to the itinerary
// optimizer. The struct is treated as immutable during optimization;
// activities are copied into day plans, never mutated in place.
type Activity struct {
	Name string `json:"name"`
	// Type is a free-text category (e.g. "museum", "food tour"). Interest
	// matching is a case-insensitive substring test against this field.
	Type string `json:"type"`
	// Duration is the expected length of the activity in minutes. It is
	// informational; day packing is driven by pace, not duration.
	Duration int     `json:"duration"`
	Cost     float64 `json:"cost"`
	Location LatLng  `json:"location"`
	// BestTimeSlot is a free-text scheduling hint ("morning", "sunset").
	// The optimizer carries it through without enforcing it.
	BestTimeSlot string `json:"best_time_slot"`
	// Priority is a caller-supplied importance from 1 (low) to 10 (high).
	Priority int `json:"priority"`
}

// TripPreferences captures the traveler inputs that drive scoring and day
// packing. GroupSize, Accessibility and DietaryRestrictions are accepted
// and carried through for callers but are not currently weighted into the
// optimization itself.
type TripPreferences struct {
	Budget              BudgetLevel `json:"budget"`
	Pace                string      `json:"pace"`
	Interests           []string    `json:"interests"`
	GroupSize           int         `json:"group_size"`
	Accessibility       []string    `json:"accessibility,omitempty"`
	DietaryRestrictions []string    `json:"dietary_restrictions,omitempty"`
}

// DayPlan is one optimized day of a multi-day itinerary. Activities are in
// route order (nearest-neighbor), not score order.
type DayPlan struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
	// EstimatedCost is the sum of activity costs for the day.
	EstimatedCost float64 `json:"estimated_cost"`
	// TravelTime is the estimated total inter-activity travel for the day
	// in minutes, rounded to the nearest whole minute.
	TravelTime float64 `json:"travel_time"`
	// OptimizationScore is a 0-100 composite of travel efficiency and
	// budget fit for this day.
	OptimizationScore float64 `json:"optimization_score"`
}

// TravelOption is a candidate item for personalized recommendation scoring,
// compared against a traveler's visit history.
type TravelOption struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	PriceRange string  `json:"price_range"`
	Rating     float64 `json:"rating"`
}

// ScoredOption is a TravelOption annotated with its recommendation score.
type ScoredOption struct {
	TravelOption
	RecommendationScore int `json:"recommendation_score"`
}
