package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID   contextKey = "request_id"
	ContextKeyContentHash contextKey = "content_hash"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithContentHash stores the hex SHA-256 of the document being processed.
func WithContentHash(ctx context.Context, hashHex string) context.Context {
	return context.WithValue(ctx, ContextKeyContentHash, hashHex)
}

// ContentHashFromContext returns the hash set by WithContentHash.
func ContentHashFromContext(ctx context.Context) string {
	if h, ok := ctx.Value(ContextKeyContentHash).(string); ok {
		return h
	}
	return ""
}

// WithTimeout creates a context with the specified timeout; d <= 0 means no extra bound.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
