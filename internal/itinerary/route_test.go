package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/opentripserve/internal/models"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name   string
		a, b   models.LatLng
		wantKm float64
	}{
		{
			name:   "identical points",
			a:      models.LatLng{Lat: 48.8566, Lng: 2.3522},
			b:      models.LatLng{Lat: 48.8566, Lng: 2.3522},
			wantKm: 0,
		},
		{
			name:   "one degree of longitude at the equator",
			a:      models.LatLng{Lat: 0, Lng: 0},
			b:      models.LatLng{Lat: 0, Lng: 1},
			wantKm: 111.195,
		},
		{
			name:   "one degree of latitude",
			a:      models.LatLng{Lat: 10, Lng: 20},
			b:      models.LatLng{Lat: 11, Lng: 20},
			wantKm: 111.195,
		},
		{
			name:   "paris to london",
			a:      models.LatLng{Lat: 48.8566, Lng: 2.3522},
			b:      models.LatLng{Lat: 51.5074, Lng: -0.1278},
			wantKm: 343.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantKm, Distance(tt.a, tt.b), 0.5)
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := models.LatLng{Lat: 35.6762, Lng: 139.6503}
	b := models.LatLng{Lat: 34.6937, Lng: 135.5023}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestOptimizeRouteNearestNeighbor(t *testing.T) {
	at := func(name string, lng float64) models.Activity {
		return models.Activity{Name: name, Location: models.LatLng{Lat: 0, Lng: lng}}
	}

	// Starting from "start", the closest unvisited stop is "near", then
	// "mid", then "far" — regardless of input order after the first.
	input := []models.Activity{at("start", 0), at("far", 1.0), at("near", 0.1), at("mid", 0.5)}

	route := optimizeRoute(input)

	names := make([]string, len(route))
	for i, a := range route {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"start", "near", "mid", "far"}, names)
}

func TestOptimizeRouteSmallInputs(t *testing.T) {
	assert.Empty(t, optimizeRoute(nil))

	single := []models.Activity{{Name: "only"}}
	assert.Equal(t, single, optimizeRoute(single))
}

func TestTotalTravelTime(t *testing.T) {
	at := func(lng float64) models.Activity {
		return models.Activity{Location: models.LatLng{Lat: 0, Lng: lng}}
	}

	t.Run("no legs", func(t *testing.T) {
		assert.Equal(t, 0.0, totalTravelTime(nil))
		assert.Equal(t, 0.0, totalTravelTime([]models.Activity{at(0)}))
	})

	t.Run("single leg rounded to whole minutes", func(t *testing.T) {
		// 0.1 degrees at the equator is ~11.12 km; at 30 km/h that is
		// ~22.24 minutes, rounded to 22.
		got := totalTravelTime([]models.Activity{at(0), at(0.1)})
		assert.Equal(t, 22.0, got)
	})

	t.Run("legs accumulate before rounding", func(t *testing.T) {
		got := totalTravelTime([]models.Activity{at(0), at(0.1), at(0.2)})
		assert.Equal(t, 44.0, got)
	})
}
