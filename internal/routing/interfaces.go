package routing

import (
	"errors"
	"fmt"

	"route-optimizer/internal/models"
)

// Optimizer computes the minimum-distance visiting order of a set of stops
type Optimizer interface {
	Solve(coords []models.Coordinate) (*models.OptimizedRoute, error)
}

// ErrInvalidInput is returned when there is nothing to route
var ErrInvalidInput = errors.New("routing: empty coordinate set")

// ErrDegenerate is returned when the input exceeds the configured safety bound
var ErrDegenerate = errors.New("routing: too many stops")

// ErrTooManyStops reports how far the input exceeds the configured bound.
// It matches ErrDegenerate under errors.Is.
type ErrTooManyStops struct {
	Count int
	Limit int
}

func (e *ErrTooManyStops) Error() string {
	return fmt.Sprintf("routing: %d stops exceeds the limit of %d", e.Count, e.Limit)
}

// Is reports whether target is ErrDegenerate
func (e *ErrTooManyStops) Is(target error) bool {
	return target == ErrDegenerate
}
