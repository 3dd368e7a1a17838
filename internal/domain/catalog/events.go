package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductOutOfStockEvent is emitted when a product's stock reaches zero or below.
type ProductOutOfStockEvent struct {
	ProductID  int64
	Name       string
	UnitPrice  decimal.Decimal
	Stock      int
	OccurredAt time.Time
}

func (ProductOutOfStockEvent) EventName() string { return "catalog.out_of_stock" }

func NewProductOutOfStockEvent(id int64, name string, price decimal.Decimal, stock int) ProductOutOfStockEvent {
	return ProductOutOfStockEvent{
		ProductID:  id,
		Name:       name,
		UnitPrice:  price,
		Stock:      stock,
		OccurredAt: time.Now().UTC(),
	}
}
