// Package requestcontext carries request-scoped values from HTTP middleware
// to services without services importing net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	sessionID := requestcontext.SessionID(ctx)
package requestcontext

import (
	"context"

	id "enroll/pkg/domain"
)

type key int

const (
	sessionIDKey key = iota
	clientIPKey
	userAgentKey
	requestIDKey
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// SessionID returns the registration session being served, or the nil ID.
func SessionID(ctx context.Context) id.SessionID {
	return value[id.SessionID](ctx, sessionIDKey)
}

func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// ClientIP returns the caller address recorded by the metadata middleware.
func ClientIP(ctx context.Context) string {
	return value[string](ctx, clientIPKey)
}

func UserAgent(ctx context.Context) string {
	return value[string](ctx, userAgentKey)
}

// WithClientMetadata records the caller address and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

func RequestID(ctx context.Context) string {
	return value[string](ctx, requestIDKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
