package services

import "context"

type contextKey string

const (
	libraryKey   contextKey = "library"
	itemKey      contextKey = "item"
	requestIDKey contextKey = "request_id"
)

// WithLibrary annotates context with the library being mapped.
func WithLibrary(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, libraryKey, name)
}

// LibraryFromContext returns the library name if present.
func LibraryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(libraryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithItem annotates context with the library item handle being resolved.
func WithItem(ctx context.Context, handle string) context.Context {
	if handle == "" {
		return ctx
	}
	return context.WithValue(ctx, itemKey, handle)
}

// ItemFromContext returns the item handle if present.
func ItemFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
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
