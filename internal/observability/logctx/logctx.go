// Package logctx carries the request or delivery logger through a context, so code deep
// in a use case logs with the trace and request ids the edge attached.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
)

type loggerKey struct{}

// With returns ctx carrying l. A nil ctx or logger leaves ctx untouched.
func With(ctx context.Context, l observability.Logger) context.Context {
	if ctx == nil || l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// From returns the logger stored by With, or nil.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return l
}

// FromOr is From with a fallback for background work that never passed the HTTP edge.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if l := From(ctx); l != nil {
		return l
	}
	return fallback
}
