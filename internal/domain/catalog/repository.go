package catalog

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	// Adjust applies delta to the product's stock and returns the updated product.
	Adjust(ctx context.Context, id int64, delta int) (*Product, error)
	// Reserve checks and deducts every request as one unit: either all lines are
	// deducted or none are.
	Reserve(ctx context.Context, reqs []StockRequest) ([]Reservation, error)
	// Release puts previously reserved quantities back.
	Release(ctx context.Context, reqs []StockRequest) error
}
