package export

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-optimizer/internal/models"
	"route-optimizer/internal/testutil"
)

func eastCoastRoute() *models.OptimizedRoute {
	return &models.OptimizedRoute{
		Path:    []models.Coordinate{testutil.NewYork, testutil.Philadelphia, testutil.Boston},
		TotalKm: testutil.EastCoastTripKm,
	}
}

func TestRouteFeatureCollection(t *testing.T) {
	fc := RouteFeatureCollection(eastCoastRoute())
	require.Len(t, fc.Features, 4)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok, "first feature should be the route line")
	require.Len(t, line, 3)
	assert.Equal(t, orb.Point{-74.0060, 40.7128}, line[0])
	assert.Equal(t, orb.Point{-71.0589, 42.3601}, line[2])
	assert.Equal(t, KindRoute, fc.Features[0].Properties["kind"])
	assert.InDelta(t, testutil.EastCoastTripKm, fc.Features[0].Properties["total_km"], 1e-9)

	for i, name := range []string{"New York", "Philadelphia", "Boston"} {
		f := fc.Features[i+1]
		_, isPoint := f.Geometry.(orb.Point)
		assert.True(t, isPoint)
		assert.Equal(t, KindStop, f.Properties["kind"])
		assert.Equal(t, name, f.Properties["name"])
		assert.Equal(t, i, f.Properties["order"])
	}
}

func TestRouteFeatureCollection_SingleStop(t *testing.T) {
	fc := RouteFeatureCollection(&models.OptimizedRoute{Path: []models.Coordinate{testutil.London}})
	require.Len(t, fc.Features, 1)
	_, isPoint := fc.Features[0].Geometry.(orb.Point)
	assert.True(t, isPoint)
}

func TestRouteFeatureCollection_Empty(t *testing.T) {
	assert.Empty(t, RouteFeatureCollection(nil).Features)
	assert.Empty(t, RouteFeatureCollection(&models.OptimizedRoute{}).Features)
}

func TestRouteFeatureCollection_MarshalsAsGeoJSON(t *testing.T) {
	data, err := json.Marshal(RouteFeatureCollection(eastCoastRoute()))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "FeatureCollection", raw["type"])
	assert.Len(t, raw["bbox"], 4)

	decoded, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Features, 4)
	assert.Equal(t, "LineString", decoded.Features[0].Geometry.GeoJSONType())
}

func TestRouteBound(t *testing.T) {
	b := RouteBound(eastCoastRoute())
	assert.Equal(t, orb.Point{-75.1652, 39.9526}, b.Min)
	assert.Equal(t, orb.Point{-71.0589, 42.3601}, b.Max)

	assert.Equal(t, orb.Bound{}, RouteBound(nil))
}
