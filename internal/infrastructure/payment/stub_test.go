package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubGatewayApproves(t *testing.T) {
	g := NewStubGateway(0)
	g.ids = func() string { return "fixed" }

	res, err := g.Charge(context.Background(), domain.ChargeRequest{Amount: decimal.NewFromInt(5049), Method: domain.MethodVisa})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "TXN_fixed", res.TransactionID)
}

func TestStubGatewayTransactionIDsAreUnique(t *testing.T) {
	g := NewStubGateway(0)
	req := domain.ChargeRequest{Amount: decimal.NewFromInt(1), Method: domain.MethodApplePay}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		res, err := g.Charge(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.TransactionID, "TXN_"))
		assert.False(t, seen[res.TransactionID], "duplicate %s", res.TransactionID)
		seen[res.TransactionID] = true
	}
}

func TestStubGatewayRejectsNonPositiveAmount(t *testing.T) {
	res, err := NewStubGateway(0).Charge(context.Background(), domain.ChargeRequest{Amount: decimal.Zero})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestStubGatewayDelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStubGateway(time.Minute).Charge(ctx, domain.ChargeRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, context.Canceled)
}
