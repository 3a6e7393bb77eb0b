package routing

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"route-optimizer/internal/distance"
	"route-optimizer/internal/models"
)

const (
	// DefaultMaxStops bounds the input size when no limit is configured
	DefaultMaxStops = 20

	// MaxSupportedStops is the widest input the 32-bit visited mask can encode
	MaxSupportedStops = 30
)

// Solver finds the exact minimum-distance open path over a set of stops
// using Held-Karp dynamic programming. The first stop is always the start;
// the path ends wherever the cheapest order ends and does not return.
//
// A Solver holds only configuration, so one instance may be shared by any
// number of goroutines.
type Solver struct {
	maxStops int
	metric   distance.Metric
	strategy Strategy
	logger   *zap.Logger
}

// Option configures a Solver
type Option func(*Solver)

// WithMaxStops sets the safety bound on input size. Values outside
// [1, MaxSupportedStops] are clamped.
func WithMaxStops(n int) Option {
	return func(s *Solver) {
		switch {
		case n < 1:
			s.maxStops = 1
		case n > MaxSupportedStops:
			s.maxStops = MaxSupportedStops
		default:
			s.maxStops = n
		}
	}
}

// WithMetric replaces the great-circle metric
func WithMetric(m distance.Metric) Option {
	return func(s *Solver) {
		if m != nil {
			s.metric = m
		}
	}
}

// WithStrategy selects the memoization layout
func WithStrategy(strategy Strategy) Option {
	return func(s *Solver) {
		s.strategy = strategy
	}
}

// WithLogger enables structured instrumentation. At debug level every
// best-next update and the reconstructed path are traced.
func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSolver creates a Solver with haversine distances, the dense table and
// a limit of DefaultMaxStops unless overridden.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		maxStops: DefaultMaxStops,
		metric:   distance.Haversine,
		strategy: StrategyDense,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxStops returns the configured safety bound
func (s *Solver) MaxStops() int {
	return s.maxStops
}

// Solve returns the cheapest visiting order of coords starting at coords[0].
//
// Ties between equally cheap continuations go to the lowest index, so the
// same input always yields the same path. Time is O(n²·2ⁿ) and memory
// O(n·2ⁿ); inputs larger than the configured bound are rejected rather than
// truncated.
func (s *Solver) Solve(coords []models.Coordinate) (*models.OptimizedRoute, error) {
	n := len(coords)
	if n == 0 {
		return nil, ErrInvalidInput
	}
	if n > s.maxStops {
		return nil, &ErrTooManyStops{Count: n, Limit: s.maxStops}
	}

	if n == 1 {
		return &models.OptimizedRoute{
			Path:    []models.Coordinate{coords[0]},
			TotalKm: 0,
			Legs:    []models.RouteLeg{},
		}, nil
	}

	start := time.Now()
	trace := s.logger.Core().Enabled(zapcore.DebugLevel)
	if trace {
		s.logger.Debug("[ROUTING] Solve start",
			zap.Int("stops", n),
			zap.String("strategy", string(s.strategy)))
	}

	m := distance.NewMatrix(coords, s.metric)

	var onUpdate func(pos int, mask uint32, next int, cost float64)
	if trace {
		onUpdate = func(pos int, mask uint32, next int, cost float64) {
			s.logger.Debug("[ROUTING] Best next updated",
				zap.Int("pos", pos),
				zap.Uint32("mask", mask),
				zap.Int("next", next),
				zap.Float64("cost_km", cost))
		}
	}

	dpCost, nextOf := newHeldKarp(s.strategy).solve(m, onUpdate)

	order, err := reconstruct(n, nextOf)
	if err != nil {
		return nil, err
	}

	route := buildRoute(coords, order, m)

	if trace {
		s.logger.Debug("[ROUTING] Path reconstructed",
			zap.Ints("order", order),
			zap.Strings("stops", route.StopNames()),
			zap.Float64("dp_cost_km", dpCost))
	}
	s.logger.Info("[ROUTING] Route optimized",
		zap.Int("stops", n),
		zap.Float64("total_km", route.TotalKm),
		zap.Duration("elapsed", time.Since(start)))

	return route, nil
}

// reconstruct walks the best-next table forward from the start state
func reconstruct(n int, nextOf func(pos int, mask uint32) int) ([]int, error) {
	full := uint32(1)<<uint(n) - 1
	order := make([]int, 0, n)

	pos, mask := 0, uint32(1)
	order = append(order, pos)
	for mask != full {
		next := nextOf(pos, mask)
		if next == noNext || mask&(1<<uint(next)) != 0 {
			return nil, fmt.Errorf("routing: broken best-next chain at pos=%d mask=%b", pos, mask)
		}
		mask |= 1 << uint(next)
		pos = next
		order = append(order, pos)
	}

	return order, nil
}

// buildRoute materializes the visiting order with per-leg distances
func buildRoute(coords []models.Coordinate, order []int, m *distance.Matrix) *models.OptimizedRoute {
	path := make([]models.Coordinate, len(order))
	legs := make([]models.RouteLeg, 0, len(order)-1)

	cumulative := 0.0
	for i, idx := range order {
		path[i] = coords[idx]
		if i == 0 {
			continue
		}
		d := m.At(order[i-1], idx)
		cumulative += d
		legs = append(legs, models.RouteLeg{
			Order:        i - 1,
			From:         coords[order[i-1]],
			To:           coords[idx],
			DistanceKm:   d,
			CumulativeKm: cumulative,
		})
	}

	return &models.OptimizedRoute{
		Path:    path,
		TotalKm: m.PathCost(order),
		Legs:    legs,
	}
}
