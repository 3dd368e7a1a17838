package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService = "payment-service"
	useCaseCharge  = "payment.charge"
	gatewayPeer    = "payment_gateway"
	chargeEndpoint = "charge"
)

// ErrGateway wraps transport failures talking to the gateway.
var ErrGateway = errors.New("payment: gateway failure")

// ChargeUseCase validates the payment instrument and calls the gateway. A decline is a
// successful execution returning Result.Success == false.
type ChargeUseCase struct {
	gateway domain.Gateway
	now     func() time.Time
	in      application.Instruments

	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewChargeUseCase(gateway domain.Gateway, tel observability.Observability) *ChargeUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &ChargeUseCase{
		gateway:      gateway,
		now:          time.Now,
		in:           application.NewInstruments(tel, paymentService),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

func (uc *ChargeUseCase) Execute(ctx context.Context, req domain.ChargeRequest) (_ domain.Result, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseCharge, "Charge",
		attribute.String("payment.method", string(req.Method)),
		attribute.String("payment.amount", req.Amount.String()),
	)
	defer func() { run.End(err) }()

	if err := Validate(req.Method, req.Card, uc.now()); err != nil {
		run.Fail("INSTRUMENT_INVALID")
		return domain.Result{}, err
	}

	start := time.Now()
	res, err := uc.gateway.Charge(ctx, req)
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case !res.Success:
		outcome = "declined"
	}
	uc.extCounter.Add(1,
		observability.L("peer", gatewayPeer),
		observability.L("endpoint", chargeEndpoint),
		observability.L("outcome", outcome),
	)
	uc.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", gatewayPeer),
		observability.L("endpoint", chargeEndpoint),
	)

	if err != nil {
		run.Fail("GATEWAY_FAILED")
		return domain.Result{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	if !res.Success {
		run.Note("DECLINED")
		run.With(observability.F("decline_reason", res.Error))
		return res, nil
	}
	run.With(observability.F("transaction_id", res.TransactionID))
	return res, nil
}

// Validate checks that method is known and that card methods carry a usable card.
func Validate(method domain.Method, card *domain.Card, now time.Time) error {
	if _, err := domain.ParseMethod(string(method)); err != nil {
		return application.Invalid("paymentMethod", "%v", err)
	}
	if !method.RequiresCard() {
		return nil
	}
	if card == nil {
		return application.Invalid("cardDetails", "%v", domain.ErrCardRequired)
	}
	if err := card.Validate(now); err != nil {
		return application.Invalid("cardDetails", "%v", err)
	}
	return nil
}
