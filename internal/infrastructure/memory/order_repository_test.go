package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(t *testing.T, number, userID string) *domain.Order {
	t.Helper()
	o, err := domain.New("id-"+number, number, userID,
		[]domain.Line{{ProductID: 1, Name: "laptop", UnitPrice: decimal.NewFromInt(4999), Quantity: 1}},
		decimal.NewFromInt(50), "visa", "TXN_1")
	require.NoError(t, err)
	return o
}

func TestOrderRepositoryInsertAndGet(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newOrder(t, "DX1", "u1")))
	assert.ErrorIs(t, repo.Insert(ctx, newOrder(t, "DX1", "u1")), domain.ErrConflict)

	got, err := repo.GetByNumber(ctx, "DX1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "5049", got.Total.String())

	_, err = repo.GetByNumber(ctx, "DX404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepositoryListByUserKeepsCreationOrder(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	for _, n := range []string{"DX1", "DX2", "DX3"} {
		require.NoError(t, repo.Insert(ctx, newOrder(t, n, "u1")))
	}
	require.NoError(t, repo.Insert(ctx, newOrder(t, "DX9", "u2")))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "DX1", list[0].Number)
	assert.Equal(t, "DX3", list[2].Number)

	empty, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrderRepositoryModify(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newOrder(t, "DX1", "u1")))

	got, err := repo.Modify(ctx, "DX1", func(o *domain.Order) error {
		return o.TransitionTo(domain.StatusConfirmed)
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	stored, err := repo.GetByNumber(ctx, "DX1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	_, err = repo.Modify(ctx, "DX2", func(*domain.Order) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepositoryModifyDiscardsFailedChange(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newOrder(t, "DX1", "u1")))

	boom := errors.New("boom")
	_, err := repo.Modify(ctx, "DX1", func(o *domain.Order) error {
		o.Status = domain.StatusShipped
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := repo.GetByNumber(ctx, "DX1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)
}

func TestOrderRepositoryListCreatedBetween(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	old := newOrder(t, "DX0", "u1")
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "DX1", "u1")))

	from := time.Now().Add(-time.Hour)
	list, err := repo.ListCreatedBetween(ctx, from, from.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "DX1", list[0].Number)
}
