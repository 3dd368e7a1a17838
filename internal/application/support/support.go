package support

import (
	"context"
	"regexp"
	"strings"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/support"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	supportService = "support-service"
	useCaseSubmit  = "support.submit"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubmitUseCase forwards a customer's support request to the operations channel.
type SubmitUseCase struct {
	publisher domoutbox.Publisher
	in        application.Instruments
}

func NewSubmitUseCase(publisher domoutbox.Publisher, tel observability.Observability) *SubmitUseCase {
	return &SubmitUseCase{publisher: publisher, in: application.NewInstruments(tel, supportService)}
}

func (uc *SubmitUseCase) Execute(ctx context.Context, m domain.Message) (_ struct{}, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseSubmit, "SubmitSupportMessage", attribute.String("support.type", m.Type))
	defer func() { run.End(err) }()

	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Type = strings.TrimSpace(m.Type)
	m.Message = strings.TrimSpace(m.Message)

	switch {
	case m.Name == "":
		err = application.Invalid("name", "is required")
	case m.Email == "":
		err = application.Invalid("email", "is required")
	case !emailPattern.MatchString(m.Email):
		err = application.Invalid("email", "is not a valid address")
	case m.Type == "":
		err = application.Invalid("type", "is required")
	case m.Message == "":
		err = application.Invalid("message", "is required")
	}
	if err != nil {
		run.Fail("VALIDATION_FAILED")
		return struct{}{}, err
	}

	run.Publish(ctx, uc.publisher, domain.NewMessageReceivedEvent(m))
	return struct{}{}, nil
}
