package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"route-optimizer/internal/database"
	"route-optimizer/internal/routing"
)

// maxRequestBytes bounds request bodies
const maxRequestBytes = 1 << 20

// Handler provides common handler utilities and dependencies
type Handler struct {
	// Routes solves with the cache in front of the solver
	Routes *routing.CachedOptimizer
	// DB is nil when caching is disabled
	DB               database.DataStore
	Logger           *zap.Logger
	MaxStops         int
	BatchConcurrency int
	MaxBatchSize     int
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSONAs(w, status, "application/json", data)
}

func (h *Handler) writeJSONAs(w http.ResponseWriter, status int, contentType string, data interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger().Warn("[HTTP] Failed to encode response", zap.Error(err))
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	h.writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// handleValidationError handles 400 errors
func (h *Handler) handleValidationError(w http.ResponseWriter, message string) {
	h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

// handleMethodNotAllowed handles 405 errors
func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}

// handleInternalError handles 500 errors
func (h *Handler) handleInternalError(w http.ResponseWriter, err error) {
	h.logger().Error("[ERROR] Internal error", zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An error occurred. Please try again.", nil)
}

// classifyError maps solver errors to status, code and details
func classifyError(err error) (int, ErrorDetail) {
	var tooMany *routing.ErrTooManyStops
	switch {
	case errors.As(err, &tooMany):
		return http.StatusUnprocessableEntity, ErrorDetail{
			Code:    "ROUTING_FAILED",
			Message: err.Error(),
			Details: map[string]interface{}{
				"count": tooMany.Count,
				"limit": tooMany.Limit,
			},
		}
	case errors.Is(err, routing.ErrDegenerate):
		return http.StatusUnprocessableEntity, ErrorDetail{Code: "ROUTING_FAILED", Message: err.Error()}
	case errors.Is(err, routing.ErrInvalidInput):
		return http.StatusBadRequest, ErrorDetail{Code: "VALIDATION_ERROR", Message: "At least one stop is required"}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: "INTERNAL_ERROR", Message: "An error occurred. Please try again."}
	}
}

// handleRoutingError writes the error envelope for a failed solve
func (h *Handler) handleRoutingError(w http.ResponseWriter, err error) {
	status, detail := classifyError(err)
	if status == http.StatusInternalServerError {
		h.handleInternalError(w, err)
		return
	}
	h.writeJSON(w, status, ErrorResponse{Error: detail})
}
