package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const (
	spanPrefix      = "UC."
	publishPeer     = "outbox"
	publishTimeout  = 300 * time.Millisecond
	outcomeSuccess  = "success"
	outcomeError    = "error"
	statusOK        = "OK"
	statusCancelled = "CONTEXT_CANCELED"
)

// ValidationError reports rejected input. Field may be empty for cross-field rules.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Instruments holds the tracer, base logger and RED metrics shared by a service's use cases.
type Instruments struct {
	tracer observability.Tracer
	log    observability.Logger

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstruments(tel observability.Observability, service string) Instruments {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return Instruments{
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

func (in Instruments) Logger() observability.Logger { return in.log }

// Run tracks one use case execution from Begin to End.
type Run struct {
	in      Instruments
	useCase string
	span    trace.Span
	logger  observability.Logger
	start   time.Time

	outcome    string
	status     string
	fields     []observability.Field
	publishErr error
}

// Begin opens the span and binds a use-case logger into the returned context.
func (in Instruments) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	logger := logctx.FromOr(ctx, in.log).With(observability.F("use_case", useCase))
	return logctx.With(ctx, logger), &Run{
		in:      in,
		useCase: useCase,
		span:    span,
		logger:  logger,
		start:   time.Now(),
		outcome: outcomeSuccess,
		status:  statusOK,
	}
}

func (r *Run) Logger() observability.Logger { return r.logger }
func (r *Run) Span() trace.Span             { return r.span }

// Fail marks the run as failed with an UPPER_SNAKE status.
func (r *Run) Fail(status string) {
	r.outcome, r.status = outcomeError, status
}

// Note keeps the outcome but replaces the status text, e.g. for degraded success.
func (r *Run) Note(status string) { r.status = status }

func (r *Run) With(fields ...observability.Field) { r.fields = append(r.fields, fields...) }

// Cancelled records ctx.Err() as the failure and returns it.
func (r *Run) Cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		r.Fail(statusCancelled)
		return err
	}
	return nil
}

// End closes the span, records metrics and writes the use_case_done log line.
func (r *Run) End(err error) {
	lat := time.Since(r.start).Seconds()
	if err != nil && r.outcome == outcomeSuccess {
		r.outcome, r.status = outcomeError, "FAILED"
	}

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.status)
		} else {
			r.span.SetStatus(codes.Ok, r.status)
		}
		r.span.End()
	}

	r.in.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", r.outcome),
	)
	r.in.durHistogram.Observe(lat, observability.L("use_case", r.useCase))

	fields := append([]observability.Field{
		observability.F("outcome", r.outcome),
		observability.F("status", r.status),
		observability.F("latency_seconds", lat),
	}, r.fields...)
	if r.span != nil {
		if sc := r.span.SpanContext(); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
	}
	if r.publishErr != nil {
		fields = append(fields, observability.F("event_publish_error", r.publishErr.Error()))
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	r.logger.Info("use_case_done", fields...)
}

// Publish hands events to p with a short timeout. Failures never fail the run; they are
// recorded on the span, in metrics and on the final log line.
func (r *Run) Publish(ctx context.Context, p domoutbox.Publisher, events ...domoutbox.Event) {
	if p == nil || len(events) == 0 {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	start := time.Now()
	err := domoutbox.PublishAll(pubCtx, p, events...)
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "canceled"
		}
		r.publishErr = errors.Join(r.publishErr, err)
		r.Note("EVENT_PUBLISH_FAILED")
		if r.span != nil {
			r.span.RecordError(err)
		}
	}

	endpoint := eventNames(events)
	r.in.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	r.in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", endpoint),
	)
	if r.span != nil {
		r.span.AddEvent("events.published", trace.WithAttributes(attribute.String("events", endpoint)))
	}
}

func eventNames(events []domoutbox.Event) string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.EventName())
	}
	return strings.Join(names, ",")
}
