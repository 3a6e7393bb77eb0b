package testutil

import (
	"fmt"
	"math"
	"math/rand"

	"route-optimizer/internal/models"
)

// Well-known cities used across test packages
var (
	NewYork      = models.Coordinate{Name: "New York", Lat: 40.7128, Lng: -74.0060}
	Boston       = models.Coordinate{Name: "Boston", Lat: 42.3601, Lng: -71.0589}
	Philadelphia = models.Coordinate{Name: "Philadelphia", Lat: 39.9526, Lng: -75.1652}
	London       = models.Coordinate{Name: "London", Lat: 51.5074, Lng: -0.1278}
	Paris        = models.Coordinate{Name: "Paris", Lat: 48.8566, Lng: 2.3522}
)

// EastCoastTripKm is the haversine total of New York -> Philadelphia -> Boston,
// the optimal open path for those three cities when starting in New York.
const EastCoastTripKm = 565.2396515999719

// PlanarScale converts degrees to kilometers for PlanarMetric (1 degree ~ 111 km)
const PlanarScale = 111.0

// PlanarMetric is a scaled Euclidean distance over lat/lng degrees.
// It is symmetric and cheap, which keeps hand-computed expectations simple.
func PlanarMetric(a, b models.Coordinate) float64 {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * PlanarScale
}

// RandomCoordinates returns n deterministic pseudo-random coordinates for seed
func RandomCoordinates(seed int64, n int) []models.Coordinate {
	rng := rand.New(rand.NewSource(seed))
	coords := make([]models.Coordinate, n)
	for i := range coords {
		coords[i] = models.Coordinate{
			Name: fmt.Sprintf("stop-%d", i),
			Lat:  rng.Float64()*180 - 90,
			Lng:  rng.Float64()*360 - 180,
		}
	}
	return coords
}

// RegionalCoordinates returns n deterministic coordinates clustered within a
// few degrees of (lat, lng), which makes many near-tie orderings likely.
func RegionalCoordinates(seed int64, n int, lat, lng float64) []models.Coordinate {
	rng := rand.New(rand.NewSource(seed))
	coords := make([]models.Coordinate, n)
	for i := range coords {
		coords[i] = models.Coordinate{
			Name: fmt.Sprintf("site-%d", i),
			Lat:  lat + rng.Float64()*4 - 2,
			Lng:  lng + rng.Float64()*4 - 2,
		}
	}
	return coords
}

// BruteForceBest enumerates every visiting order that starts at index 0 and
// returns the cheapest open-path cost under metric. It is the optimality
// oracle for small inputs.
func BruteForceBest(coords []models.Coordinate, metric func(a, b models.Coordinate) float64) float64 {
	n := len(coords)
	if n <= 1 {
		return 0
	}

	rest := make([]int, n-1)
	for i := range rest {
		rest[i] = i + 1
	}

	best := math.Inf(1)
	permute(rest, 0, func(order []int) {
		cost := metric(coords[0], coords[order[0]])
		for k := 1; k < len(order); k++ {
			cost += metric(coords[order[k-1]], coords[order[k]])
		}
		if cost < best {
			best = cost
		}
	})
	return best
}

func permute(a []int, k int, visit func([]int)) {
	if k == len(a) {
		visit(a)
		return
	}
	for i := k; i < len(a); i++ {
		a[k], a[i] = a[i], a[k]
		permute(a, k+1, visit)
		a[k], a[i] = a[i], a[k]
	}
}
