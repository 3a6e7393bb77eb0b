package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"route-optimizer/internal/models"
	"route-optimizer/internal/testutil"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		a, b             models.Coordinate
		wantKm           float64
		tolerancePercent float64
	}{
		{
			name:             "New York to Philadelphia",
			a:                testutil.NewYork,
			b:                testutil.Philadelphia,
			wantKm:           129.6,
			tolerancePercent: 0.5,
		},
		{
			name:             "London to Paris",
			a:                testutil.London,
			b:                testutil.Paris,
			wantKm:           343.5,
			tolerancePercent: 0.5,
		},
		{
			name:             "Antipodes along the equator",
			a:                models.Coordinate{Name: "a", Lat: 0, Lng: 0},
			b:                models.Coordinate{Name: "b", Lat: 0, Lng: 180},
			wantKm:           math.Pi * EarthRadiusKm,
			tolerancePercent: 0.0001,
		},
		{
			name:             "Pole to pole",
			a:                models.Coordinate{Name: "north", Lat: 90, Lng: 0},
			b:                models.Coordinate{Name: "south", Lat: -90, Lng: 0},
			wantKm:           math.Pi * EarthRadiusKm,
			tolerancePercent: 0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			diff := math.Abs(got-tt.wantKm) / tt.wantKm * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f km, want ~%f km (diff %.4f%%)", got, tt.wantKm, diff)
			}
		})
	}
}

func TestHaversineSamePointIsZero(t *testing.T) {
	for _, c := range []models.Coordinate{
		testutil.NewYork,
		{Name: "north pole", Lat: 90, Lng: 45},
		{Name: "antimeridian", Lat: -33.5, Lng: 180},
	} {
		assert.Equal(t, 0.0, Haversine(c, c), c.Name)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	coords := testutil.RandomCoordinates(7, 40)
	for i := range coords {
		for j := range coords {
			ab := Haversine(coords[i], coords[j])
			ba := Haversine(coords[j], coords[i])
			if ab != ba {
				t.Fatalf("d(%d,%d)=%v != d(%d,%d)=%v", i, j, ab, j, i, ba)
			}
		}
	}
}

func TestHaversineNeverNaN(t *testing.T) {
	// Out-of-range input is not validated but must still produce a number.
	got := Haversine(
		models.Coordinate{Name: "a", Lat: 400, Lng: -1000},
		models.Coordinate{Name: "b", Lat: -90.0000001, Lng: 179.9999999},
	)
	assert.False(t, math.IsNaN(got))
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "129.61 km", FormatDistance(129.6127, false))
	assert.Equal(t, "1.00 mi", FormatDistance(KmPerMile, true))
}

func BenchmarkHaversine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Haversine(testutil.NewYork, testutil.Boston)
	}
}
