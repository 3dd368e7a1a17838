package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/cart"
)

type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.Line
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]domain.Line)}
}

func (s *CartStore) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := domain.New(userID)
	c.Lines = append([]domain.Line(nil), s.carts[userID]...)
	return c, nil
}

func (s *CartStore) Save(ctx context.Context, c *domain.Cart) error {
	_ = ctx
	if c == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Empty() {
		delete(s.carts, c.UserID)
		return nil
	}
	s.carts[c.UserID] = append([]domain.Line(nil), c.Lines...)
	return nil
}

func (s *CartStore) Delete(ctx context.Context, userID string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}
