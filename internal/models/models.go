package models

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Coordinate represents a named geographic point
type Coordinate struct {
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lng  float64 `json:"lng" yaml:"lng"`
}

// ErrInvalidCoordinate is returned by Validate for malformed coordinates
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Validate checks the name and the latitude/longitude ranges.
// The optimizer itself never validates; callers run this before solving.
func (c Coordinate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCoordinate)
	}
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: %q latitude %v out of range [-90,90]", ErrInvalidCoordinate, c.Name, c.Lat)
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: %q longitude %v out of range [-180,180]", ErrInvalidCoordinate, c.Name, c.Lng)
	}
	return nil
}

// ValidateAll validates every coordinate and reports the first failure with its position
func ValidateAll(coords []Coordinate) error {
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("stop %d: %w", i, err)
		}
	}
	return nil
}

// RouteLeg is a single hop between two consecutive stops of an optimized route
type RouteLeg struct {
	Order        int        `json:"order"`
	From         Coordinate `json:"from"`
	To           Coordinate `json:"to"`
	DistanceKm   float64    `json:"distance_km"`
	CumulativeKm float64    `json:"cumulative_km"`
}

// OptimizedRoute is the result of a route optimization.
// Path starts at the first supplied coordinate and does not return to it.
type OptimizedRoute struct {
	Path    []Coordinate `json:"path"`
	TotalKm float64      `json:"total_km"`
	Legs    []RouteLeg   `json:"legs"`
}

// StopNames returns the names of the stops in visiting order
func (r *OptimizedRoute) StopNames() []string {
	names := make([]string, len(r.Path))
	for i, c := range r.Path {
		names[i] = c.Name
	}
	return names
}

// Clone returns a copy that shares no slices with r
func (r *OptimizedRoute) Clone() *OptimizedRoute {
	if r == nil {
		return nil
	}
	return &OptimizedRoute{
		Path:    slices.Clone(r.Path),
		TotalKm: r.TotalKm,
		Legs:    slices.Clone(r.Legs),
	}
}

// RouteCacheEntry is a previously optimized route keyed by its exact input
type RouteCacheEntry struct {
	Key       string         `json:"key"`
	Stops     []Coordinate   `json:"stops"`
	Route     OptimizedRoute `json:"route"`
	CreatedAt time.Time      `json:"created_at"`
}

// Clone returns a copy that shares no slices with e
func (e *RouteCacheEntry) Clone() *RouteCacheEntry {
	if e == nil {
		return nil
	}
	return &RouteCacheEntry{
		Key:       e.Key,
		Stops:     slices.Clone(e.Stops),
		Route:     *e.Route.Clone(),
		CreatedAt: e.CreatedAt,
	}
}
