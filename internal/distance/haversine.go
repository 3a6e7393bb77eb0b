package distance

import (
	"fmt"
	"math"

	"route-optimizer/internal/models"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// Distance conversion constants
const (
	KmPerMile = 1.609344
)

// Metric computes a symmetric distance in kilometers between two coordinates
type Metric func(a, b models.Coordinate) float64

// Haversine returns the great-circle distance in kilometers between a and b.
// It does not validate ranges; any real input yields a finite result.
func Haversine(a, b models.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// Rounding can push h slightly outside [0,1] at duplicates and antipodes.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// KmToMiles converts kilometers to statute miles
func KmToMiles(km float64) float64 {
	return km / KmPerMile
}

// FormatDistance renders a distance for display in kilometers or miles
func FormatDistance(km float64, useMiles bool) string {
	if useMiles {
		return fmt.Sprintf("%.2f mi", KmToMiles(km))
	}
	return fmt.Sprintf("%.2f km", km)
}
