package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"route-optimizer/internal/distance"
	"route-optimizer/internal/export"
	"route-optimizer/internal/models"
)

// DefaultMaxBatchSize caps the number of routes in one batch request
const DefaultMaxBatchSize = 100

// OptimizeRequest is the body of POST /api/v1/routes/optimize
type OptimizeRequest struct {
	Stops []models.Coordinate `json:"stops"`
}

// OptimizeResponse is returned for a solved route
type OptimizeResponse struct {
	Route        *models.OptimizedRoute `json:"route"`
	Cached       bool                   `json:"cached"`
	TotalDisplay string                 `json:"total_display"`
}

// BatchRequest is the body of POST /api/v1/routes/optimize/batch
type BatchRequest struct {
	Routes []OptimizeRequest `json:"routes"`
}

// BatchItemResult is the outcome of one route in a batch. Exactly one of
// Route and Error is set.
type BatchItemResult struct {
	Index  int                    `json:"index"`
	Route  *models.OptimizedRoute `json:"route,omitempty"`
	Cached bool                   `json:"cached,omitempty"`
	Error  *ErrorDetail           `json:"error,omitempty"`
}

// BatchResponse is returned by the batch endpoint
type BatchResponse struct {
	Results   []BatchItemResult `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// ClearCacheResponse reports how many cached routes were dropped
type ClearCacheResponse struct {
	Cleared int `json:"cleared"`
}

func useMiles(r *http.Request) bool {
	switch r.URL.Query().Get("units") {
	case "mi", "miles":
		return true
	}
	return false
}

// validateStops checks that there is something to route and every stop is
// well formed
func validateStops(stops []models.Coordinate) error {
	if len(stops) == 0 {
		return fmt.Errorf("at least one stop is required")
	}
	return models.ValidateAll(stops)
}

// HandleOptimizeRoute handles POST /api/v1/routes/optimize
func (h *Handler) HandleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.handleMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req OptimizeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.requestLog(r).Info("[HTTP] POST /api/v1/routes/optimize: invalid_json", zap.Error(err))
		h.handleValidationError(w, "Invalid request body")
		return
	}

	if err := validateStops(req.Stops); err != nil {
		h.requestLog(r).Info("[HTTP] POST /api/v1/routes/optimize: invalid stops", zap.Error(err))
		h.handleValidationError(w, err.Error())
		return
	}

	start := time.Now()
	route, cached, err := h.Routes.Optimize(r.Context(), req.Stops)
	if err != nil {
		h.requestLog(r).Info("[HTTP] POST /api/v1/routes/optimize: routing failed",
			zap.Int("stops", len(req.Stops)), zap.Error(err))
		h.handleRoutingError(w, err)
		return
	}

	h.requestLog(r).Info("[TIMING] Route optimize",
		zap.Int("stops", len(req.Stops)),
		zap.Bool("cached", cached),
		zap.Duration("elapsed", time.Since(start)))

	if r.URL.Query().Get("format") == "geojson" {
		h.writeJSONAs(w, http.StatusOK, "application/geo+json", export.RouteFeatureCollection(route))
		return
	}

	h.writeJSON(w, http.StatusOK, OptimizeResponse{
		Route:        route,
		Cached:       cached,
		TotalDisplay: distance.FormatDistance(route.TotalKm, useMiles(r)),
	})
}

// HandleOptimizeBatch handles POST /api/v1/routes/optimize/batch. Each
// route is solved independently; a failing route does not fail the batch.
func (h *Handler) HandleOptimizeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.handleMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req BatchRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.requestLog(r).Info("[HTTP] POST /api/v1/routes/optimize/batch: invalid_json", zap.Error(err))
		h.handleValidationError(w, "Invalid request body")
		return
	}

	maxBatch := h.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	if len(req.Routes) == 0 {
		h.handleValidationError(w, "At least one route is required")
		return
	}
	if len(req.Routes) > maxBatch {
		h.handleValidationError(w, fmt.Sprintf("At most %d routes are allowed per batch", maxBatch))
		return
	}

	limit := h.BatchConcurrency
	if limit < 1 {
		limit = 1
	}

	start := time.Now()
	results := make([]BatchItemResult, len(req.Routes))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(limit)
	for i, item := range req.Routes {
		results[i].Index = i
		if err := validateStops(item.Stops); err != nil {
			results[i].Error = &ErrorDetail{Code: "VALIDATION_ERROR", Message: err.Error()}
			continue
		}

		i, item := i, item
		g.Go(func() error {
			// Client went away; the remaining routes are not worth solving
			if err := ctx.Err(); err != nil {
				return err
			}
			route, cached, err := h.Routes.Optimize(ctx, item.Stops)
			if err != nil {
				status, detail := classifyError(err)
				if status == http.StatusInternalServerError {
					h.requestLog(r).Error("[ERROR] Batch item failed", zap.Int("index", i), zap.Error(err))
				}
				results[i].Error = &detail
				return nil
			}
			results[i].Route = route
			results[i].Cached = cached
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.requestLog(r).Info("[HTTP] POST /api/v1/routes/optimize/batch: aborted", zap.Error(err))
		return
	}

	resp := BatchResponse{Results: results}
	for _, res := range results {
		if res.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	h.requestLog(r).Info("[TIMING] Route batch",
		zap.Int("routes", len(results)),
		zap.Int("failed", resp.Failed),
		zap.Duration("elapsed", time.Since(start)))

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleClearCache handles DELETE /api/v1/routes/cache
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		h.handleMethodNotAllowed(w, http.MethodDelete)
		return
	}

	if h.DB == nil {
		h.writeJSON(w, http.StatusOK, ClearCacheResponse{})
		return
	}

	repo := h.DB.RouteCache()
	count, err := repo.Count(r.Context())
	if err != nil {
		h.handleInternalError(w, err)
		return
	}
	if err := repo.Clear(r.Context()); err != nil {
		h.handleInternalError(w, err)
		return
	}

	h.requestLog(r).Info("[CACHE] Cleared route cache", zap.Int("entries", count))
	h.writeJSON(w, http.StatusOK, ClearCacheResponse{Cleared: count})
}
