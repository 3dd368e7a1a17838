package catalog

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/apptest"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *apptest.Recorder) {
	t.Helper()
	rec := &apptest.Recorder{}
	return NewService(memory.NewProductRepository(domain.Seed()), rec, observability.Nop()), rec
}

func TestListAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 9)

	p, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "1599", p.UnitPrice.String())

	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustStockPublishesOutOfStock(t *testing.T) {
	svc, rec := newService(t)
	uc := NewAdjustStockUseCase(svc)
	ctx := context.Background()

	p, err := uc.Execute(ctx, AdjustStockInput{ProductID: 9, Delta: -2})
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)
	assert.Empty(t, rec.Events())

	p, err = uc.Execute(ctx, AdjustStockInput{ProductID: 9, Delta: -4})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	events := apptest.Of[domain.ProductOutOfStockEvent](rec)
	require.Len(t, events, 1)
	assert.Equal(t, int64(9), events[0].ProductID)
	assert.Equal(t, "2199", events[0].UnitPrice.String())
}

func TestAdjustStockAllowsNegative(t *testing.T) {
	svc, rec := newService(t)
	p, err := NewAdjustStockUseCase(svc).Execute(context.Background(), AdjustStockInput{ProductID: 9, Delta: -10})
	require.NoError(t, err)
	assert.Equal(t, -4, p.Stock)
	assert.Len(t, rec.Events(), 1)
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	svc, rec := newService(t)
	_, err := NewAdjustStockUseCase(svc).Execute(context.Background(), AdjustStockInput{ProductID: 42, Delta: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, rec.Events())
}

func TestAdjustStockPublishFailureDoesNotFail(t *testing.T) {
	rec := &apptest.Recorder{Err: assert.AnError}
	svc := NewService(memory.NewProductRepository(domain.Seed()), rec, nil)

	p, err := NewAdjustStockUseCase(svc).Execute(context.Background(), AdjustStockInput{ProductID: 9, Delta: -6})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}
