package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
)

// ProductRepository keeps the catalog in memory. Every stock mutation runs under the
// write lock, so Reserve's check and deduct are one critical section.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	order    []int64
}

func NewProductRepository(seed []*domain.Product) *ProductRepository {
	r := &ProductRepository{
		products: make(map[int64]*domain.Product, len(seed)),
	}
	for _, p := range seed {
		if p == nil {
			continue
		}
		if _, exists := r.products[p.ID]; !exists {
			r.order = append(r.order, p.ID)
		}
		r.products[p.ID] = p.Clone()
	}
	return r
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.products[id].Clone())
	}
	return out, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) Adjust(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Adjust(delta)
	return p.Clone(), nil
}

func (r *ProductRepository) Reserve(ctx context.Context, reqs []domain.StockRequest) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Sum per product first so duplicate lines are checked against the combined quantity.
	wanted := make(map[int64]int, len(reqs))
	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		p, ok := r.products[req.ProductID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		wanted[req.ProductID] += req.Quantity
		if wanted[req.ProductID] > p.Stock {
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: wanted[req.ProductID],
				Available: p.Stock,
			}
		}
	}

	out := make([]domain.Reservation, 0, len(reqs))
	for _, req := range reqs {
		p := r.products[req.ProductID]
		_ = p.Deduct(req.Quantity)
		out = append(out, domain.Reservation{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  req.Quantity,
		})
	}
	for i := range out {
		out[i].RemainingStock = r.products[out[i].ProductID].Stock
	}
	return out, nil
}

func (r *ProductRepository) Release(ctx context.Context, reqs []domain.StockRequest) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range reqs {
		if p, ok := r.products[req.ProductID]; ok && req.Quantity > 0 {
			p.Adjust(req.Quantity)
		}
	}
	return nil
}

// Upsert adds or replaces a product, keeping id order for new entries.
func (r *ProductRepository) Upsert(p *domain.Product) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; !exists {
		r.order = append(r.order, p.ID)
		sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	}
	r.products[p.ID] = p.Clone()
}
