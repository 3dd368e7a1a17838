package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
)

// OrderRepository indexes orders by number and keeps per-user creation order.
type OrderRepository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byUser   map[string][]string
	sequence []string
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
		byUser: make(map[string][]string),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.Number == "" {
		return fmt.Errorf("order repository: order number is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.Number]; exists {
		return domain.ErrConflict
	}

	r.orders[order.Number] = order.Clone()
	r.byUser[order.UserID] = append(r.byUser[order.UserID], order.Number)
	r.sequence = append(r.sequence, order.Number)
	return nil
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	numbers := r.byUser[userID]
	out := make([]*domain.Order, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, r.orders[n].Clone())
	}
	return out, nil
}

func (r *OrderRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, n := range r.sequence {
		o := r.orders[n]
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (r *OrderRepository) Modify(ctx context.Context, number string, fn func(*domain.Order) error) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := stored.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.orders[number] = next.Clone()
	return next, nil
}
