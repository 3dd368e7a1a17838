package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

const DefaultCartTTL = 7 * 24 * time.Hour

// CartStore keeps each user's cart as one JSON value under cart:user:<id>.
type CartStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCartStore(client redis.Cmdable, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (s *CartStore) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.New(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart store: get: %w", err)
	}

	c := domain.New(userID)
	if err := json.Unmarshal([]byte(data), c); err != nil {
		return nil, fmt.Errorf("cart store: decode: %w", err)
	}
	c.UserID = userID
	return c, nil
}

// Save refreshes the TTL on every write; an empty cart removes the key.
func (s *CartStore) Save(ctx context.Context, c *domain.Cart) error {
	if c == nil {
		return nil
	}
	if c.Empty() {
		return s.Delete(ctx, c.UserID)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart store: encode: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(c.UserID), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("cart store: set: %w", err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("cart store: delete: %w", err)
	}
	return nil
}
