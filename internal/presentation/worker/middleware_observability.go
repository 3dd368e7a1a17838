package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// EventHandler is a background consumer of bus events.
type EventHandler interface {
	Events() []string
	Handle(ctx context.Context, e domoutbox.Event) error
}

// Mount subscribes h to each of its events, wrapping every delivery with a
// worker-scoped logger.
func Mount(sub domoutbox.Subscriber, tel observability.Observability, worker string, h EventHandler) {
	if sub == nil || h == nil {
		return
	}
	if tel == nil {
		tel = observability.Nop()
	}
	base := tel.Logger().With(observability.F("worker", worker))
	for _, name := range h.Events() {
		sub.Subscribe(name, func(ctx context.Context, e domoutbox.Event) error {
			sc := trace.SpanContextFromContext(ctx)
			ctx = WithEventContext(ctx, base, tel, sc.TraceID(), sc.SpanID(), map[string]string{
				"event": e.EventName(),
			})
			return h.Handle(ctx, e)
		})
	}
}

// WithEventContext injects a request-scoped logger for background/worker executions.
// Dynamic fields only: trace_id/span_id (if valid), event_id (generated if empty),
// plus caller-provided low-cardinality attributes (e.g. "event", "worker").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	tel observability.Observability,
	traceID trace.TraceID,
	spanID trace.SpanID,
	attrs map[string]string,
) context.Context {
	if base == nil {
		if tel == nil {
			tel = observability.Nop()
		}
		base = tel.Logger()
	}

	fields := make([]observability.Field, 0, 3+len(attrs))

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if traceID.IsValid() {
		fields = append(fields, observability.F("trace_id", traceID.String()))
	}
	if spanID.IsValid() {
		fields = append(fields, observability.F("span_id", spanID.String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}
