package routing

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"route-optimizer/internal/database"
	"route-optimizer/internal/models"
)

// CachedOptimizer serves repeat requests for the same ordered stop list
// from a route cache and solves only on a miss. Cache failures are logged
// and never fail the request.
type CachedOptimizer struct {
	inner  Optimizer
	cache  database.RouteCacheRepository
	logger *zap.Logger
	now    func() time.Time
}

// stopLimiter is implemented by optimizers that reject inputs above a bound.
// The bound is checked before the cache so a lowered limit is enforced even
// for routes stored under a higher one.
type stopLimiter interface {
	MaxStops() int
}

// NewCachedOptimizer wraps inner. A nil cache disables caching.
func NewCachedOptimizer(inner Optimizer, cache database.RouteCacheRepository, logger *zap.Logger) *CachedOptimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOptimizer{
		inner:  inner,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Optimize returns the optimized route for coords and whether it came from
// the cache. Solver errors are returned unchanged and are never cached. The
// returned route shares no memory with the cache.
func (c *CachedOptimizer) Optimize(ctx context.Context, coords []models.Coordinate) (*models.OptimizedRoute, bool, error) {
	if l, ok := c.inner.(stopLimiter); ok && len(coords) > l.MaxStops() {
		return nil, false, &ErrTooManyStops{Count: len(coords), Limit: l.MaxStops()}
	}
	if c.cache == nil || len(coords) == 0 {
		route, err := c.inner.Solve(coords)
		return route, false, err
	}

	key := database.RouteKey(coords)

	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("[CACHE] Lookup failed", zap.String("key", key), zap.Error(err))
	} else if entry != nil {
		c.logger.Debug("[CACHE] Hit", zap.String("key", key), zap.Int("stops", len(coords)))
		return entry.Route.Clone(), true, nil
	}

	route, err := c.inner.Solve(coords)
	if err != nil {
		return nil, false, err
	}

	if err := c.cache.Set(ctx, &models.RouteCacheEntry{
		Key:       key,
		Stops:     slices.Clone(coords),
		Route:     *route.Clone(),
		CreatedAt: c.now(),
	}); err != nil {
		c.logger.Warn("[CACHE] Store failed", zap.String("key", key), zap.Error(err))
	}

	return route, false, nil
}
