package workerpresentation

import (
	"context"
	"testing"

	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type namedEvent string

func (n namedEvent) EventName() string { return string(n) }

type fakeSubscriber struct {
	handlers map[string]domoutbox.Handler
}

func (s *fakeSubscriber) Subscribe(name string, h domoutbox.Handler) {
	if s.handlers == nil {
		s.handlers = map[string]domoutbox.Handler{}
	}
	s.handlers[name] = h
}

type recordingHandler struct {
	seen    []string
	loggers []observability.Logger
}

func (r *recordingHandler) Events() []string { return []string{"a", "b"} }

func (r *recordingHandler) Handle(ctx context.Context, e domoutbox.Event) error {
	r.seen = append(r.seen, e.EventName())
	r.loggers = append(r.loggers, logctx.From(ctx))
	return nil
}

func TestMountSubscribesEveryEvent(t *testing.T) {
	sub := &fakeSubscriber{}
	h := &recordingHandler{}
	Mount(sub, nil, "test", h)

	require.Len(t, sub.handlers, 2)
	require.NoError(t, sub.handlers["b"](context.Background(), namedEvent("b")))
	assert.Equal(t, []string{"b"}, h.seen)
	assert.NotNil(t, h.loggers[0])
}

type capturingLogger struct {
	observability.Logger
	fields []observability.Field
}

func (c *capturingLogger) With(fields ...observability.Field) observability.Logger {
	c.fields = append(c.fields, fields...)
	return c
}

func TestWithEventContextAddsIdentifiers(t *testing.T) {
	base := &capturingLogger{Logger: observability.NopLogger()}
	traceID := trace.TraceID{1}
	ctx := WithEventContext(context.Background(), base, nil, traceID, trace.SpanID{}, map[string]string{
		"event_id": "evt-1",
		"event":    "order.created",
		"empty":    "",
	})

	assert.Same(t, base, logctx.From(ctx))
	keys := map[string]any{}
	for _, f := range base.fields {
		keys[f.Key] = f.Value
	}
	assert.Equal(t, "evt-1", keys["event_id"])
	assert.Equal(t, traceID.String(), keys["trace_id"])
	assert.Equal(t, "order.created", keys["event"])
	assert.NotContains(t, keys, "span_id")
	assert.NotContains(t, keys, "empty")
}
