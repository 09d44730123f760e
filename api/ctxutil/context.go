// Package ctxutil bridges gin's request-scoped values into the plain
// context.Context the application layer works with.
package ctxutil

import (
	"context"

	"storefront/api/response"

	"github.com/gin-gonic/gin"
)

type requestIDKey struct{}

// WithRequestID returns the request's context with its request ID attached.
func WithRequestID(ctx *gin.Context) context.Context {
	requestID := response.GetRequestID(ctx)
	return context.WithValue(ctx.Request.Context(), requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
