package user

import (
	"context"
	"time"
)

type Repository interface {
	// Insert fails with ErrConflict when the email is already taken (exact match).
	Insert(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}
