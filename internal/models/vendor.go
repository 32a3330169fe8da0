package models

// Vendor is a bookable supplier (hotel, tour operator, restaurant) whose
// price quotes are computed by the pricing engine. Capacity and
// HistoricalAverage feed demand level derivation; BasePrice is the
// currency-agnostic starting point for every quote.
type Vendor struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Destination string `json:"destination"`
	// Category groups vendors for competitor comparison (e.g. "hotel",
	// "tour"). Competitor prices for a quote are the base prices of other
	// active vendors in the same destination and category.
	Category          string  `json:"category"`
	BasePrice         float64 `json:"base_price"`
	Capacity          int     `json:"capacity"`
	HistoricalAverage float64 `json:"historical_average"`
	Active            bool    `json:"active"`
}

// StoredActivity is a catalog entry for an activity offered at a
// destination. The embedded Activity is what the optimizer consumes; ID and
// Destination exist only for storage and lookup.
type StoredActivity struct {
	ID          int    `json:"id"`
	Destination string `json:"destination"`
	Activity
}
