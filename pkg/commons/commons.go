package commons

import "context"

// SEPARATOR delimits list values packed into a single option or env string.
const SEPARATOR = ","

type contextKey string

const traceIdContextKey contextKey = "trace-id"

// WithTraceId stamps a request trace id onto the context.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, traceIdContextKey, traceId)
}

// TraceId returns the trace id carried by the context, or "".
func TraceId(ctx context.Context) string {
	if v, ok := ctx.Value(traceIdContextKey).(string); ok {
		return v
	}
	return ""
}
