package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"route-optimizer/internal/database"

	_ "modernc.org/sqlite"
)

const (
	DefaultDBFileName = "routes.db"
	schemaVersion     = 1
)

// Store is a SQLite-backed database.DataStore holding the route cache
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.RWMutex

	routeCacheRepo database.RouteCacheRepository
}

// connPragmas are applied once when the store opens
var connPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

const routeCacheSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS route_cache (
	cache_key  TEXT PRIMARY KEY,
	stop_count INTEGER NOT NULL,
	total_km   REAL NOT NULL,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_route_cache_created ON route_cache(created_at DESC);
`

// New opens (creating if needed) the route cache database at dbPath
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range connPragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	s.routeCacheRepo = &routeCacheRepository{store: s}

	logger.Info("[CACHE] Opened SQLite route cache",
		zap.String("path", dbPath),
		zap.Int("schema_version", schemaVersion))
	return s, nil
}

// ensureSchema creates missing tables and refuses databases written by a
// newer release
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(routeCacheSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if !version.Valid {
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		return nil
	}

	if version.Int64 > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version.Int64, schemaVersion)
	}
	return nil
}

// Close checkpoints the WAL and closes the database connection
func (s *Store) Close() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Warn("[CACHE] WAL checkpoint failed", zap.Error(err))
	}
	return s.db.Close()
}

// HealthCheck verifies the database connection
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) RouteCache() database.RouteCacheRepository { return s.routeCacheRepo }
