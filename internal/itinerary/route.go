package itinerary

import (
	"math"

	"github.com/patrickwarner/opentripserve/internal/models"
)

const (
	// earthRadiusKm is the mean Earth radius used by the Haversine formula.
	earthRadiusKm = 6371.0
	// cityTravelSpeedKmh is the assumed average speed for moving between
	// activities within a destination.
	cityTravelSpeedKmh = 30.0
)

// Distance returns the great-circle distance between two coordinates in
// kilometers using the Haversine formula.
func Distance(a, b models.LatLng) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// optimizeRoute orders a day's activities with a nearest-neighbor walk
// starting from the first activity: at each step the geographically closest
// unvisited activity is appended. This is a greedy approximation of the
// shortest path, not an exact TSP solution — at the day sizes involved
// (at most five activities) the gap from optimal is acceptable and the
// O(n²) cost is negligible.
func optimizeRoute(activities []models.Activity) []models.Activity {
	if len(activities) <= 1 {
		return activities
	}

	route := make([]models.Activity, 0, len(activities))
	route = append(route, activities[0])

	remaining := make([]models.Activity, len(activities)-1)
	copy(remaining, activities[1:])

	for len(remaining) > 0 {
		current := route[len(route)-1]
		nearest := 0
		minDistance := math.Inf(1)
		for i, a := range remaining {
			if d := Distance(current.Location, a.Location); d < minDistance {
				minDistance = d
				nearest = i
			}
		}
		route = append(route, remaining[nearest])
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}

	return route
}

// totalTravelTime estimates the minutes spent moving between consecutive
// activities on a route, assuming city travel speed, rounded to the nearest
// whole minute.
func totalTravelTime(route []models.Activity) float64 {
	var minutes float64
	for i := 0; i+1 < len(route); i++ {
		km := Distance(route[i].Location, route[i+1].Location)
		minutes += km / cityTravelSpeedKmh * 60
	}
	return math.Round(minutes)
}
