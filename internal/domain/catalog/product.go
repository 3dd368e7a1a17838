package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("catalog: product not found")
	ErrInvalidQuantity = errors.New("catalog: quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("catalog: unit price must be positive")
)

// InsufficientStockError names the first product that could not cover its requested quantity.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("catalog: product %q (#%d) has %d in stock, %d requested", e.Name, e.ProductID, e.Available, e.Requested)
}

type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
	Stock     int
	UpdatedAt time.Time
}

func NewProduct(id int64, name string, unitPrice decimal.Decimal, stock int) (*Product, error) {
	if !unitPrice.IsPositive() {
		return nil, ErrInvalidPrice
	}
	return &Product{
		ID:        id,
		Name:      name,
		UnitPrice: unitPrice,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Adjust applies delta without a lower bound; callers validate beforehand.
func (p *Product) Adjust(delta int) {
	p.Stock += delta
	p.touch()
}

// Deduct removes quantity when enough stock is available.
func (p *Product) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: quantity, Available: p.Stock}
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

func (p *Product) OutOfStock() bool { return p.Stock <= 0 }

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// StockRequest asks for quantity units of a product.
type StockRequest struct {
	ProductID int64
	Quantity  int
}

// Reservation is the priced snapshot of a fulfilled StockRequest.
type Reservation struct {
	ProductID      int64
	Name           string
	UnitPrice      decimal.Decimal
	Quantity       int
	RemainingStock int
}

func (r Reservation) LineTotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}
