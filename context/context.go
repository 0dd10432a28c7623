package context

import (
	"context"
	"time"
)

const (
	ContextKeyCorrelationID ContextKey = "Correlation-Id"
	ContextKeyUserID        ContextKey = "User-Id"
)

type ContextKey string

func NewContextWithTimeOut(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// NewContext starts a detached context for work that outlives a request, such as scheduled jobs.
func NewContext(correlationID string) context.Context {
	return context.WithValue(context.Background(), ContextKeyCorrelationID, correlationID)
}

func SetContextWithValue(ctx context.Context, key ContextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func GetContextValue(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithUserID marks ctx as acting for the signed in user id.
func WithUserID(ctx context.Context, id string) context.Context {
	return SetContextWithValue(ctx, ContextKeyUserID, id)
}

// UserID returns the authenticated user of the request, or "" for anonymous calls.
func UserID(ctx context.Context) string {
	return GetContextValue(ctx, ContextKeyUserID)
}
