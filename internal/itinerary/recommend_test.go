package itinerary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/opentripserve/internal/models"
)

func TestPersonalizedRecommendations(t *testing.T) {
	history := []models.TravelOption{
		{Name: "past beach trip", Type: "beach", PriceRange: "$$", Rating: 5},
		{Name: "past city break", Type: "city", PriceRange: "$", Rating: 3},
	}

	options := []models.TravelOption{
		{Name: "mountain lodge", Type: "mountain", PriceRange: "$$$", Rating: 4},
		{Name: "island resort", Type: "beach", PriceRange: "$$", Rating: 5},
		{Name: "budget hostel", Type: "city", PriceRange: "$", Rating: 3},
	}

	got := PersonalizedRecommendations(history, options)

	require.Len(t, got, 3)

	// Island resort: type match (10) + price match (5) + mutual high
	// rating with the beach trip (8) = 23.
	assert.Equal(t, "island resort", got[0].Name)
	assert.Equal(t, 23, got[0].RecommendationScore)

	// Budget hostel: type match (10) + price match (5) against the city
	// break, ratings too low for the mutual bonus.
	assert.Equal(t, "budget hostel", got[1].Name)
	assert.Equal(t, 15, got[1].RecommendationScore)

	// Mountain lodge: only the mutual high rating with the beach trip.
	assert.Equal(t, "mountain lodge", got[2].Name)
	assert.Equal(t, 8, got[2].RecommendationScore)
}

func TestPersonalizedRecommendationsEmptyHistory(t *testing.T) {
	options := []models.TravelOption{
		{Name: "a", Type: "beach"},
		{Name: "b", Type: "city"},
	}

	got := PersonalizedRecommendations(nil, options)

	require.Len(t, got, 2)
	// Nothing to score against: everything is zero and input order holds.
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
	assert.Zero(t, got[0].RecommendationScore)
	assert.Zero(t, got[1].RecommendationScore)
}

func TestPersonalizedRecommendationsCapsAtTen(t *testing.T) {
	history := []models.TravelOption{{Type: "beach", PriceRange: "$$", Rating: 5}}

	var options []models.TravelOption
	for i := 0; i < 15; i++ {
		options = append(options, models.TravelOption{
			Name: fmt.Sprintf("option-%d", i),
			Type: "beach",
		})
	}

	got := PersonalizedRecommendations(history, options)
	assert.Len(t, got, maxRecommendations)
}

func TestPersonalizedRecommendationsStableTies(t *testing.T) {
	history := []models.TravelOption{{Type: "beach", Rating: 2}}

	options := []models.TravelOption{
		{Name: "first", Type: "beach"},
		{Name: "second", Type: "beach"},
		{Name: "third", Type: "beach"},
	}

	got := PersonalizedRecommendations(history, options)

	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
	assert.Equal(t, "third", got[2].Name)
}
