package payment

import (
	"context"
	"time"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
	"github.com/google/uuid"
)

// StubGateway simulates a card processor that accepts every charge after an optional delay.
type StubGateway struct {
	delay time.Duration
	ids   func() string
}

func NewStubGateway(delay time.Duration) *StubGateway {
	return &StubGateway{delay: delay, ids: uuid.NewString}
}

func (g *StubGateway) Charge(ctx context.Context, req domain.ChargeRequest) (domain.Result, error) {
	if g.delay > 0 {
		t := time.NewTimer(g.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return domain.Result{}, ctx.Err()
		}
	}
	if !req.Amount.IsPositive() {
		return domain.Result{Success: false, Error: "amount must be positive"}, nil
	}
	return domain.Result{
		Success:       true,
		TransactionID: "TXN_" + g.ids(),
	}, nil
}
