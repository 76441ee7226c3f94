package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID in and out of the service.
const RequestIDHeader = "X-Request-ID"

type (
	loggerKey    struct{}
	requestIDKey struct{}
)

// WithTraceLogger returns middleware that tags every request with a request
// ID (taken from X-Request-ID or generated) and stores a logger carrying the
// request ID and, when a span is active, the trace and span IDs.
func WithTraceLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" || len(reqID) > 128 {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			fields := []zap.Field{zap.String("request_id", reqID)}
			if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.IsValid() {
				fields = append(fields,
					zap.String("trace_id", sc.TraceID().String()),
					zap.String("span_id", sc.SpanID().String()),
				)
			}

			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			ctx = context.WithValue(ctx, loggerKey{}, logger.With(fields...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the request ID set by WithTraceLogger, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggerFromContext retrieves the logger from context
// If no logger is found, returns the provided fallback logger
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	// If no logger in context, try to add trace ID from span
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return fallback.With(
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return fallback
}

// LoggerFromRequest is a convenience function to get logger from HTTP request
func LoggerFromRequest(r *http.Request, fallback *zap.Logger) *zap.Logger {
	return LoggerFromContext(r.Context(), fallback)
}
