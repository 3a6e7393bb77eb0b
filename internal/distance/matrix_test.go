package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-optimizer/internal/models"
	"route-optimizer/internal/testutil"
)

func TestNewMatrixInvariants(t *testing.T) {
	points := testutil.RandomCoordinates(42, 12)
	m := NewMatrix(points, Haversine)

	require.Equal(t, 12, m.Size())
	for i := 0; i < m.Size(); i++ {
		assert.Equal(t, 0.0, m.At(i, i), "diagonal [%d][%d]", i, i)
		for j := 0; j < m.Size(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i), "symmetry [%d][%d]", i, j)
			assert.GreaterOrEqual(t, m.At(i, j), 0.0)
		}
	}
	assert.Equal(t, Haversine(points[3], points[7]), m.At(3, 7))
}

func TestNewMatrixDefaultsToHaversine(t *testing.T) {
	points := []models.Coordinate{testutil.NewYork, testutil.Boston}
	m := NewMatrix(points, nil)
	assert.Equal(t, Haversine(testutil.NewYork, testutil.Boston), m.At(0, 1))
}

func TestNewMatrixCallsMetricOncePerPair(t *testing.T) {
	calls := 0
	metric := func(a, b models.Coordinate) float64 {
		calls++
		return testutil.PlanarMetric(a, b)
	}

	NewMatrix(testutil.RandomCoordinates(1, 6), metric)

	assert.Equal(t, 6*5/2, calls)
}

func TestNewMatrixEmpty(t *testing.T) {
	m := NewMatrix(nil, Haversine)
	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 0.0, m.PathCost(nil))
}

func TestPathCost(t *testing.T) {
	points := []models.Coordinate{
		{Name: "a", Lat: 0, Lng: 0},
		{Name: "b", Lat: 0, Lng: 3},
		{Name: "c", Lat: 4, Lng: 3},
	}
	m := NewMatrix(points, func(a, b models.Coordinate) float64 {
		return testutil.PlanarMetric(a, b) / testutil.PlanarScale
	})

	assert.InDelta(t, 7.0, m.PathCost([]int{0, 1, 2}), 1e-12)
	assert.InDelta(t, 5.0+4.0, m.PathCost([]int{0, 2, 1}), 1e-12)
	assert.Equal(t, 0.0, m.PathCost([]int{1}))
}
