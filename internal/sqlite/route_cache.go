package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"route-optimizer/internal/database"
	"route-optimizer/internal/models"
)

type routeCacheRepository struct {
	store *Store
}

// routePayload is the JSON blob kept in route_cache.payload
type routePayload struct {
	Stops []models.Coordinate   `json:"stops"`
	Route models.OptimizedRoute `json:"route"`
}

func (r *routeCacheRepository) Get(ctx context.Context, key string) (*models.RouteCacheEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT payload, created_at FROM route_cache WHERE cache_key = ?`

	var payload, createdAt string
	err := r.store.db.QueryRowContext(ctx, query, key).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route cache entry: %w", err)
	}

	var p routePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("failed to decode route cache payload: %w", err)
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse route cache timestamp: %w", err)
	}

	return &models.RouteCacheEntry{
		Key:       key,
		Stops:     p.Stops,
		Route:     p.Route,
		CreatedAt: created,
	}, nil
}

func (r *routeCacheRepository) Set(ctx context.Context, entry *models.RouteCacheEntry) error {
	payload, err := json.Marshal(routePayload{Stops: entry.Stops, Route: entry.Route})
	if err != nil {
		return fmt.Errorf("failed to encode route cache payload: %w", err)
	}

	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query := `INSERT OR REPLACE INTO route_cache
	          (cache_key, stop_count, total_km, payload, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err = r.store.db.ExecContext(ctx, query,
		entry.Key, len(entry.Stops), entry.Route.TotalKm,
		string(payload), created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to set route cache entry: %w", err)
	}

	return nil
}

func (r *routeCacheRepository) Delete(ctx context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, err := r.store.db.ExecContext(ctx, "DELETE FROM route_cache WHERE cache_key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete route cache entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return database.ErrNotFound
	}

	return nil
}

func (r *routeCacheRepository) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, err := r.store.db.ExecContext(ctx, "DELETE FROM route_cache"); err != nil {
		return fmt.Errorf("failed to clear route cache: %w", err)
	}

	return nil
}

func (r *routeCacheRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var n int
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM route_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count route cache entries: %w", err)
	}
	return n, nil
}
