package order

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	// ListCreatedBetween returns orders with from <= CreatedAt < to.
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*Order, error)
	// Modify applies fn to the stored order and saves the result atomically. fn sees a
	// copy; when it returns an error nothing is written and that error is returned.
	Modify(ctx context.Context, number string, fn func(*Order) error) (*Order, error)
}
