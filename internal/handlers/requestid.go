package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type requestIDKey struct{}

// WithRequestID attaches a correlation ID to ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID stored on ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestLog tags handler log lines with the request's correlation ID
func (h *Handler) requestLog(r *http.Request) *zap.Logger {
	if id := RequestID(r.Context()); id != "" {
		return h.logger().With(zap.String("request_id", id))
	}
	return h.logger()
}
