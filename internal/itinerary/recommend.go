package itinerary

import (
	"sort"

	"github.com/patrickwarner/opentripserve/internal/models"
)

// maxRecommendations caps the list returned to callers.
const maxRecommendations = 10

// PersonalizedRecommendations scores available travel options against a
// traveler's visit history and returns the top matches, best first.
//
// The scoring is a simple collaborative-filtering sum over the history:
// a repeated category is worth the most, a familiar price range a little,
// and mutual high ratings (both past and candidate at 4 or above) reward
// options similar to things the traveler already enjoyed. Ties keep the
// input order.
func PersonalizedRecommendations(history, options []models.TravelOption) []models.ScoredOption {
	scored := make([]models.ScoredOption, len(options))
	for i, option := range options {
		score := 0
		for _, past := range history {
			if past.Type == option.Type {
				score += 10
			}
			if past.PriceRange == option.PriceRange {
				score += 5
			}
			if past.Rating >= 4 && option.Rating >= 4 {
				score += 8
			}
		}
		scored[i] = models.ScoredOption{TravelOption: option, RecommendationScore: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RecommendationScore > scored[j].RecommendationScore
	})

	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}
	return scored
}
