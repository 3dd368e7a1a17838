package review

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRating = errors.New("review: rating must be between 1 and 5")

type Review struct {
	ID           string
	ProductID    int64
	CustomerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

func New(id string, productID int64, customerName string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	return &Review{
		ID:           id,
		ProductID:    productID,
		CustomerName: customerName,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type Repository interface {
	Insert(ctx context.Context, r *Review) error
	ListByProduct(ctx context.Context, productID int64) ([]*Review, error)
}

// SubmittedEvent is emitted for every accepted review.
type SubmittedEvent struct {
	ReviewID     string
	ProductID    int64
	ProductName  string
	CustomerName string
	Rating       int
	Comment      string
	OccurredAt   time.Time
}

func (SubmittedEvent) EventName() string { return "review.submitted" }

func NewSubmittedEvent(r *Review, productName string) SubmittedEvent {
	return SubmittedEvent{
		ReviewID:     r.ID,
		ProductID:    r.ProductID,
		ProductName:  productName,
		CustomerName: r.CustomerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		OccurredAt:   r.CreatedAt,
	}
}
