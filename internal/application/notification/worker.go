package notification

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/notification"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const workerService = "notification_worker"

// Worker renders bus events into alerts and hands them to the dispatcher. Delivery is
// best-effort: failures are logged and counted but never returned to the bus.
type Worker struct {
	renderer   *Renderer
	dispatcher notification.Dispatcher
	in         application.Instruments
	sent       observability.Counter // notifications_total{kind,outcome}
}

func NewWorker(renderer *Renderer, dispatcher notification.Dispatcher, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		renderer:   renderer,
		dispatcher: dispatcher,
		in:         application.NewInstruments(tel, workerService),
		sent:       tel.Metrics().Counter(observability.MNotifications),
	}
}

// Events lists the event names the worker should be subscribed to.
func (w *Worker) Events() []string { return w.renderer.Events() }

func (w *Worker) Handle(ctx context.Context, e domoutbox.Event) (err error) {
	ev, ok := w.renderer.Render(e)
	if !ok {
		return nil
	}
	kind := string(ev.Kind)

	ctx, run := w.in.Begin(ctx, "notification."+kind, "Notify",
		attribute.String("event", e.EventName()),
		attribute.String("kind", kind),
	)
	defer func() { run.End(err) }()

	if w.dispatcher == nil {
		w.count(kind, "skipped")
		run.Note("NO_DISPATCHER")
		return nil
	}

	res, dispatchErr := w.dispatcher.Dispatch(ctx, ev)
	run.With(observability.F("attempts", res.Attempts))
	switch {
	case dispatchErr != nil:
		outcome := "error"
		if errors.Is(dispatchErr, context.Canceled) || errors.Is(dispatchErr, context.DeadlineExceeded) {
			outcome = "canceled"
		}
		w.count(kind, outcome)
		run.Fail("DELIVERY_FAILED")
		run.With(observability.F("delivery_error", dispatchErr.Error()))
	case res.Skipped:
		w.count(kind, "skipped")
		run.Note("WEBHOOK_DISABLED")
	default:
		w.count(kind, "success")
		run.With(observability.F("status_code", res.StatusCode))
	}
	return nil
}

func (w *Worker) count(kind, outcome string) {
	w.sent.Add(1,
		observability.L("kind", kind),
		observability.L("outcome", outcome),
	)
}
