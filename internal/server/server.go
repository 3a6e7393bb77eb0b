package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"route-optimizer/internal/config"
	"route-optimizer/internal/database"
	"route-optimizer/internal/handlers"
	"route-optimizer/internal/routing"
	"route-optimizer/internal/sqlite"
)

// Server wraps the HTTP server and all dependencies
type Server struct {
	httpServer *http.Server
	handler    *handlers.Handler
	db         database.DataStore
	listener   net.Listener
	addr       string
	logger     *zap.Logger
}

// New creates and initializes a new server (does not start it)
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("[CACHE] Initializing route cache",
		zap.Bool("enabled", cfg.Cache.Enabled),
		zap.String("backend", cfg.Cache.Backend))
	db, err := OpenCache(cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize route cache: %w", err)
	}

	solver := NewSolver(cfg.Solver, logger)

	var repo database.RouteCacheRepository
	if db != nil {
		repo = db.RouteCache()
	}

	handler := &handlers.Handler{
		Routes:           routing.NewCachedOptimizer(solver, repo, logger),
		DB:               db,
		Logger:           logger,
		MaxStops:         solver.MaxStops(),
		BatchConcurrency: cfg.Server.BatchConcurrency,
	}

	mux := setupRoutes(handler)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      requestLogger(logger, corsMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		db:         db,
		addr:       cfg.Server.Addr,
		logger:     logger,
	}, nil
}

// NewSolver builds the tour solver described by cfg
func NewSolver(cfg config.SolverConfig, logger *zap.Logger) *routing.Solver {
	return routing.NewSolver(
		routing.WithMaxStops(cfg.MaxStops),
		routing.WithStrategy(routing.Strategy(cfg.Strategy)),
		routing.WithLogger(logger),
	)
}

// OpenCache opens the configured route cache backend. It returns a nil
// store when caching is disabled.
func OpenCache(cfg config.CacheConfig, logger *zap.Logger) (database.DataStore, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case config.CacheBackendMemory:
		return database.NewMemoryRouteCache(), nil

	case config.CacheBackendFile:
		path := cfg.Path
		if path == "" {
			var err error
			if path, err = database.GetDefaultCacheFilePath(); err != nil {
				return nil, err
			}
		}
		return database.NewFileRouteCache(path, logger)

	case config.CacheBackendSQLite, "":
		path := cfg.Path
		if path == "" {
			var err error
			if path, err = database.GetDefaultDBPath(); err != nil {
				return nil, err
			}
		}
		return sqlite.New(path, logger)

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Start starts the server and returns the actual address (useful for random port)
func (s *Server) Start() (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = listener
	actualAddr := listener.Addr().String()
	s.logger.Info("[HTTP] Starting server", zap.String("addr", actualAddr))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("[HTTP] Server error", zap.Error(err))
		}
	}()

	return actualAddr, nil
}

// Shutdown gracefully shuts down the server and closes the cache
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// setupRoutes configures all HTTP routes
func setupRoutes(handler *handlers.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", handler.HandleHealthCheck)
	mux.HandleFunc("/api/v1/routes/optimize", handler.HandleOptimizeRoute)
	mux.HandleFunc("/api/v1/routes/optimize/batch", handler.HandleOptimizeBatch)
	mux.HandleFunc("/api/v1/routes/cache", handler.HandleClearCache)

	return mux
}
