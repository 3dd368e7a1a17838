package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	dommail "github.com/Zhima-Mochi/minishop-storefront/internal/domain/mail"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	workerService = "mail_worker"

	welcomeSubject      = "Welcome to DEVIX Store"
	confirmationSubject = "Order confirmation #%s"
)

// Worker sends customer mail for registrations and new orders. Mail is fire-and-forget:
// send failures are logged and never reach the caller.
type Worker struct {
	sender dommail.Sender
	in     application.Instruments
}

func NewWorker(sender dommail.Sender, tel observability.Observability) *Worker {
	return &Worker{
		sender: sender,
		in:     application.NewInstruments(tel, workerService),
	}
}

func (w *Worker) Events() []string {
	return []string{
		domuser.RegisteredEvent{}.EventName(),
		domorder.OrderCreatedEvent{}.EventName(),
	}
}

func (w *Worker) Handle(ctx context.Context, e domoutbox.Event) (err error) {
	var (
		msg     dommail.Message
		useCase string
	)
	switch v := e.(type) {
	case domuser.RegisteredEvent:
		msg, useCase = Welcome(v), "mail.welcome"
	case domorder.OrderCreatedEvent:
		msg, useCase = Confirmation(v), "mail.order_confirmation"
	default:
		return nil
	}

	ctx, run := w.in.Begin(ctx, useCase, "SendMail", attribute.String("event", e.EventName()))
	defer func() { run.End(err) }()

	if w.sender == nil || msg.To == "" {
		run.Note("SKIPPED")
		return nil
	}
	if sendErr := w.sender.Send(ctx, msg); sendErr != nil {
		run.Fail("SEND_FAILED")
		run.With(observability.F("send_error", sendErr.Error()))
	}
	return nil
}

func Welcome(e domuser.RegisteredEvent) dommail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", e.Name)
	b.WriteString("Your DEVIX Store account is ready. You can now sign in with ")
	b.WriteString(e.Email)
	b.WriteString(".\n\nDEVIX Store\n")
	return dommail.Message{To: e.Email, Subject: welcomeSubject, Body: b.String()}
}

func Confirmation(e domorder.OrderCreatedEvent) dommail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", e.Customer.Name)
	fmt.Fprintf(&b, "We received your order #%s.\n\n", e.OrderNumber)
	for _, l := range e.Lines {
		fmt.Fprintf(&b, "- %s x%d: %s SAR\n", l.Name, l.Quantity, l.Total().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s SAR\n", e.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Shipping: %s SAR\n", e.ShippingCost.StringFixed(2))
	fmt.Fprintf(&b, "Total: %s SAR\n", e.Total.StringFixed(2))
	fmt.Fprintf(&b, "Payment: %s (%s)\n\nDEVIX Store\n", strings.ToUpper(e.PaymentMethod), e.TransactionID)
	return dommail.Message{
		To:      e.Customer.Email,
		Subject: fmt.Sprintf(confirmationSubject, e.OrderNumber),
		Body:    b.String(),
	}
}
