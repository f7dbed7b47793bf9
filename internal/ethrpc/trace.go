package ethrpc

import "context"

type traceIDKey struct{}

// WithTraceID attaches a trace-id to ctx for the batching transport's
// diagnostic header.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns ctx's trace-id, or "" if none was attached.
func TraceIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey{}).(string)
	return v
}
