// Package itinerary implements the single-day route and activity optimizer.
//
// Given a candidate activity list, traveler preferences and a trip length,
// the optimizer scores activities against the preferences, packs them into
// days according to the requested pace and orders each day with a greedy
// nearest-neighbor route. Everything here is pure computation: the package
// performs no I/O and holds no state between calls.
package itinerary

import (
	"math"
	"sort"
	"strings"

	"github.com/patrickwarner/opentripserve/internal/models"
)

// interestMatchBonus is added when any traveler interest appears within the
// activity's type, matched case-insensitively.
const interestMatchBonus = 20

// activityCostCeiling is the per-activity cost threshold for the budget
// component of scoring: at or under it earns +10, over it costs -5.
// Unrecognized budget levels use the medium ceiling.
func activityCostCeiling(budget models.BudgetLevel) float64 {
	switch budget {
	case models.BudgetLow:
		return 50
	case models.BudgetHigh:
		return 150
	default:
		return 100
	}
}

// dailyBudgetLimit is the total daily spend against which a day plan's
// budget fit is judged. Unrecognized budget levels use the medium limit.
func dailyBudgetLimit(budget models.BudgetLevel) float64 {
	switch budget {
	case models.BudgetLow:
		return 100
	case models.BudgetHigh:
		return 1000
	default:
		return 300
	}
}

// activitiesPerDay maps pace to itinerary density. Unrecognized pace values
// fall back to moderate.
func activitiesPerDay(pace string) int {
	switch pace {
	case models.PaceRelaxed:
		return 2
	case models.PacePacked:
		return 5
	default:
		return 3
	}
}

// activityScore rates a single activity against the traveler's preferences.
// Priority dominates (x10); an interest match adds a flat bonus; cost within
// the budget ceiling adds a small bonus while cost above it is penalized.
func activityScore(a models.Activity, prefs models.TripPreferences) int {
	score := a.Priority * 10

	loweredType := strings.ToLower(a.Type)
	for _, interest := range prefs.Interests {
		if interest != "" && strings.Contains(loweredType, strings.ToLower(interest)) {
			score += interestMatchBonus
			break
		}
	}

	if a.Cost <= activityCostCeiling(prefs.Budget) {
		score += 10
	} else {
		score -= 5
	}

	return score
}

// Optimize builds a multi-day itinerary from the candidate activities.
//
// The algorithm is single-pass and greedy with no backtracking:
//  1. every activity is scored against the preferences and the list is
//     stably sorted by descending score (ties keep input order);
//  2. days are filled front-to-back, each taking the next pace-sized batch
//     of the sorted list — an activity is assigned to exactly one day, and
//     days beyond the candidate pool come back empty;
//  3. each day's batch is ordered by the nearest-neighbor route heuristic
//     and annotated with cost, travel time and a 0-100 optimization score.
//
// The input slice is never mutated.
func Optimize(activities []models.Activity, prefs models.TripPreferences, days int) []models.DayPlan {
	type scored struct {
		activity models.Activity
		score    int
	}

	ranked := make([]scored, len(activities))
	for i, a := range activities {
		ranked[i] = scored{activity: a, score: activityScore(a, prefs)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	perDay := activitiesPerDay(prefs.Pace)
	plans := make([]models.DayPlan, 0, days)

	cursor := 0
	for day := 1; day <= days; day++ {
		end := cursor + perDay
		if end > len(ranked) {
			end = len(ranked)
		}

		batch := make([]models.Activity, 0, end-cursor)
		for _, s := range ranked[cursor:end] {
			batch = append(batch, s.activity)
		}
		cursor = end

		route := optimizeRoute(batch)

		var cost float64
		for _, a := range route {
			cost += a.Cost
		}
		travel := totalTravelTime(route)

		plans = append(plans, models.DayPlan{
			Day:               day,
			Activities:        route,
			EstimatedCost:     cost,
			TravelTime:        travel,
			OptimizationScore: dayScore(travel, cost, prefs),
		})
	}

	return plans
}

// dayScore blends travel efficiency and budget fit into a 0-100 composite.
// Travel efficiency decays linearly from 100 as travel minutes accumulate;
// budget fit is all-or-nothing against the daily limit.
func dayScore(travelMinutes, totalCost float64, prefs models.TripPreferences) float64 {
	travelScore := math.Max(0, 100-travelMinutes)

	var budgetScore float64
	if totalCost <= dailyBudgetLimit(prefs.Budget) {
		budgetScore = 50
	}

	return (travelScore + budgetScore) / 2
}
