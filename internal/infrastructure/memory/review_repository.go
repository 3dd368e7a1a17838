package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/review"
)

type ReviewRepository struct {
	mu        sync.RWMutex
	byProduct map[int64][]domain.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{byProduct: make(map[int64][]domain.Review)}
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *domain.Review) error {
	_ = ctx
	if rv == nil || rv.ID == "" {
		return fmt.Errorf("review repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byProduct[rv.ProductID] = append(r.byProduct[rv.ProductID], *rv)
	return nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byProduct[productID]
	out := make([]*domain.Review, len(stored))
	for i := range stored {
		rv := stored[i]
		out[i] = &rv
	}
	return out, nil
}
