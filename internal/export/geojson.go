// Package export converts optimized routes into formats external map
// renderers understand.
package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"route-optimizer/internal/models"
)

// Feature kinds written to the "kind" property
const (
	KindRoute = "route"
	KindStop  = "stop"
)

func toPoint(c models.Coordinate) orb.Point {
	// GeoJSON positions are [lng, lat]
	return orb.Point{c.Lng, c.Lat}
}

// RouteFeatureCollection returns the route as a FeatureCollection: one
// LineString in visiting order followed by one Point per stop. A
// single-stop route has no LineString.
func RouteFeatureCollection(route *models.OptimizedRoute) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if route == nil || len(route.Path) == 0 {
		return fc
	}

	if len(route.Path) > 1 {
		line := make(orb.LineString, len(route.Path))
		for i, c := range route.Path {
			line[i] = toPoint(c)
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = KindRoute
		f.Properties["total_km"] = route.TotalKm
		f.Properties["stops"] = len(route.Path)
		fc.Append(f)
	}

	for i, c := range route.Path {
		f := geojson.NewFeature(toPoint(c))
		f.Properties["kind"] = KindStop
		f.Properties["name"] = c.Name
		f.Properties["order"] = i
		fc.Append(f)
	}

	fc.BBox = geojson.NewBBox(RouteBound(route))
	return fc
}

// RouteBound is the lng/lat bounding box of every stop on the route
func RouteBound(route *models.OptimizedRoute) orb.Bound {
	if route == nil || len(route.Path) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, len(route.Path))
	for i, c := range route.Path {
		mp[i] = toPoint(c)
	}
	return mp.Bound()
}
