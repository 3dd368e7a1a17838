package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/apptest"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() *domain.Card {
	return &domain.Card{Number: "4111 1111 1111 1111", Holder: "SARA", Expiry: "12/30", CVV: "123"}
}

func newCharge(g domain.Gateway) *ChargeUseCase {
	uc := NewChargeUseCase(g, nil)
	uc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return uc
}

func TestChargeApproved(t *testing.T) {
	g := &apptest.Gateway{}
	res, err := newCharge(g).Execute(context.Background(), domain.ChargeRequest{
		Amount: decimal.NewFromInt(5049), Method: domain.MethodVisa, Card: validCard(),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "TXN_1", res.TransactionID)
}

func TestChargeDeclineIsNotAnError(t *testing.T) {
	g := &apptest.Gateway{Decline: "insufficient funds"}
	res, err := newCharge(g).Execute(context.Background(), domain.ChargeRequest{
		Amount: decimal.NewFromInt(10), Method: domain.MethodApplePay,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "insufficient funds", res.Error)
}

func TestChargeGatewayError(t *testing.T) {
	g := &apptest.Gateway{Err: errors.New("timeout")}
	_, err := newCharge(g).Execute(context.Background(), domain.ChargeRequest{
		Amount: decimal.NewFromInt(10), Method: domain.MethodApplePay,
	})
	assert.ErrorIs(t, err, ErrGateway)
}

func TestChargeRejectsInvalidInstrumentBeforeGateway(t *testing.T) {
	expired := validCard()
	expired.Expiry = "01/24"

	cases := map[string]domain.ChargeRequest{
		"unknown method": {Method: "paypal"},
		"missing card":   {Method: domain.MethodMada},
		"expired card":   {Method: domain.MethodVisa, Card: expired},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			g := &apptest.Gateway{}
			req.Amount = decimal.NewFromInt(10)
			_, err := newCharge(g).Execute(context.Background(), req)

			var verr *application.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Zero(t, g.Calls())
		})
	}
}
