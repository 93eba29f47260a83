package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	stageKey     contextKey = "stage"
	categoryKey  contextKey = "category"
)

// WithRequestID annotates context with a correlation identifier. The pipeline
// stamps one per run so every oracle call and store mutation can be traced.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name (hints, dispatch, placement).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithCategory annotates context with the category currently being evaluated.
func WithCategory(ctx context.Context, category string) context.Context {
	if category == "" {
		return ctx
	}
	return context.WithValue(ctx, categoryKey, category)
}

// CategoryFromContext returns the category under evaluation if present.
func CategoryFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(categoryKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
