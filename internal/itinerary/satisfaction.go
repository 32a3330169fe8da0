package itinerary

import (
	"math"

	"github.com/patrickwarner/opentripserve/internal/models"
)

// PredictSatisfactionScore estimates how happy a traveler will be with a
// full multi-day itinerary, as an integer from 0 to 100.
//
// Three checks contribute per day: staying within the daily budget limit
// (+20), keeping travel under two hours (+15) and activity type variety
// (+5 per distinct type). The result is the accumulated total divided by
// the number of checks performed — three per day whether or not each check
// passed — rounded and capped at 100. An empty itinerary scores 0.
func PredictSatisfactionScore(itinerary []models.DayPlan, prefs models.TripPreferences) int {
	var totalScore float64
	var factors int

	limit := dailyBudgetLimit(prefs.Budget)

	for _, day := range itinerary {
		if day.EstimatedCost <= limit {
			totalScore += 20
		}
		factors++

		if day.TravelTime < 120 {
			totalScore += 15
		}
		factors++

		types := make(map[string]struct{}, len(day.Activities))
		for _, a := range day.Activities {
			types[a.Type] = struct{}{}
		}
		totalScore += float64(len(types)) * 5
		factors++
	}

	if factors == 0 {
		return 0
	}

	score := int(math.Round(totalScore / float64(factors)))
	if score > 100 {
		return 100
	}
	return score
}
