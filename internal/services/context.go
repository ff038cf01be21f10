package services

import "context"

type contextKey string

const (
	episodeIDKey contextKey = "episode_id"
	stepKey      contextKey = "step"
	runIDKey     contextKey = "run_id"
)

// WithEpisodeID annotates context with the episode identifier.
func WithEpisodeID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, episodeIDKey, id)
}

// EpisodeIDFromContext extracts the episode identifier if present.
func EpisodeIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(episodeIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStep annotates context with the pipeline step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the pipeline step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stepKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a per-job correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// LogAttrs returns key/value pairs for the job identifiers carried by ctx,
// in the form logger.With expects. Absent identifiers are omitted.
func LogAttrs(ctx context.Context) []any {
	attrs := make([]any, 0, 6)
	if id, ok := RunIDFromContext(ctx); ok {
		attrs = append(attrs, "run_id", id)
	}
	if id, ok := EpisodeIDFromContext(ctx); ok {
		attrs = append(attrs, "episode_id", id)
	}
	if step, ok := StepFromContext(ctx); ok {
		attrs = append(attrs, "step", step)
	}
	return attrs
}
