package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/opentripserve/internal/models"
)

func TestPredictSatisfactionScore(t *testing.T) {
	medium := models.TripPreferences{Budget: models.BudgetMedium}

	tests := []struct {
		name      string
		itinerary []models.DayPlan
		prefs     models.TripPreferences
		want      int
	}{
		{
			name:      "empty itinerary scores zero",
			itinerary: nil,
			prefs:     medium,
			want:      0,
		},
		{
			name: "single day within budget and travel with two types",
			itinerary: []models.DayPlan{
				{
					EstimatedCost: 150,
					TravelTime:    60,
					Activities: []models.Activity{
						{Type: "museum"}, {Type: "food"},
					},
				},
			},
			prefs: medium,
			// (20 + 15 + 10) / 3
			want: 15,
		},
		{
			name: "over budget day loses the budget bonus",
			itinerary: []models.DayPlan{
				{
					EstimatedCost: 500,
					TravelTime:    60,
					Activities:    []models.Activity{{Type: "museum"}},
				},
			},
			prefs: medium,
			// (0 + 15 + 5) / 3
			want: 7,
		},
		{
			name: "long travel day loses the travel bonus",
			itinerary: []models.DayPlan{
				{
					EstimatedCost: 100,
					TravelTime:    150,
					Activities:    []models.Activity{{Type: "museum"}},
				},
			},
			prefs: medium,
			// (20 + 0 + 5) / 3
			want: 8,
		},
		{
			name: "duplicate types count once",
			itinerary: []models.DayPlan{
				{
					EstimatedCost: 100,
					TravelTime:    30,
					Activities: []models.Activity{
						{Type: "museum"}, {Type: "museum"}, {Type: "museum"},
					},
				},
			},
			prefs: medium,
			// (20 + 15 + 5) / 3
			want: 13,
		},
		{
			name: "high budget raises the daily limit",
			itinerary: []models.DayPlan{
				{
					EstimatedCost: 800,
					TravelTime:    30,
					Activities:    []models.Activity{{Type: "museum"}},
				},
			},
			prefs: models.TripPreferences{Budget: models.BudgetHigh},
			// (20 + 15 + 5) / 3
			want: 13,
		},
		{
			name: "many distinct types cap at 100",
			itinerary: []models.DayPlan{
				{
					EstimatedCost: 100,
					TravelTime:    30,
					Activities: []models.Activity{
						{Type: "a"}, {Type: "b"}, {Type: "c"}, {Type: "d"},
						{Type: "e"}, {Type: "f"}, {Type: "g"}, {Type: "h"},
						{Type: "i"}, {Type: "j"}, {Type: "k"}, {Type: "l"},
						{Type: "m"}, {Type: "n"}, {Type: "o"}, {Type: "p"},
						{Type: "q"}, {Type: "r"}, {Type: "s"}, {Type: "t"},
						{Type: "u"}, {Type: "v"}, {Type: "w"}, {Type: "x"},
						{Type: "y"}, {Type: "z"}, {Type: "aa"}, {Type: "bb"},
						{Type: "cc"}, {Type: "dd"}, {Type: "ee"}, {Type: "ff"},
						{Type: "gg"}, {Type: "hh"}, {Type: "ii"}, {Type: "jj"},
						{Type: "kk"}, {Type: "ll"}, {Type: "mm"}, {Type: "nn"},
						{Type: "oo"}, {Type: "pp"}, {Type: "qq"}, {Type: "rr"},
						{Type: "ss"}, {Type: "tt"}, {Type: "uu"}, {Type: "vv"},
						{Type: "ww"}, {Type: "xx"}, {Type: "yy"}, {Type: "zz"},
						{Type: "a1"}, {Type: "b1"}, {Type: "c1"}, {Type: "d1"},
						{Type: "e1"}, {Type: "f1"}, {Type: "g1"}, {Type: "h1"},
					},
				},
			},
			prefs: medium,
			// 20 + 15 + 300 over 3 factors is well past the cap.
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictSatisfactionScore(tt.itinerary, tt.prefs)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestPredictSatisfactionScoreMultiDay(t *testing.T) {
	prefs := models.TripPreferences{Budget: models.BudgetMedium}

	itinerary := []models.DayPlan{
		{
			EstimatedCost: 150,
			TravelTime:    45,
			Activities:    []models.Activity{{Type: "museum"}, {Type: "food"}},
		},
		{
			EstimatedCost: 400,
			TravelTime:    130,
			Activities:    []models.Activity{{Type: "hike"}},
		},
	}

	// Day 1: 20 + 15 + 10. Day 2: 0 + 0 + 5. Six factors total.
	got := PredictSatisfactionScore(itinerary, prefs)
	assert.Equal(t, 8, got)
}
