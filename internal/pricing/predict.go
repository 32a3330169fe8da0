package pricing

import (
	"time"

	"github.com/patrickwarner/opentripserve/internal/models"
)

// PredictOptimalPrice estimates a good asking price for a future date from
// a vendor's price history. The prediction is the average recorded price
// for the target calendar month, rounded to two decimals. With no history
// for that month the base price is returned unchanged.
func PredictOptimalPrice(basePrice float64, targetDate time.Time, history []models.PricePoint) float64 {
	targetMonth := targetDate.Month()

	var sum float64
	var n int
	for _, point := range history {
		if point.Date.Month() == targetMonth {
			sum += point.Price
			n++
		}
	}
	if n == 0 {
		return basePrice
	}
	return round2(sum / float64(n))
}
