package cart

import (
	"context"
	"errors"
)

var ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")

type Line struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

type Cart struct {
	UserID string `json:"-"`
	Lines  []Line `json:"items"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID}
}

// Add increments the line for productID, appending it when absent.
func (c *Cart) Add(productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
	return nil
}

// Set overwrites the quantity; zero or less removes the line.
func (c *Cart) Set(productID int64, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
}

func (c *Cart) Remove(productID int64) {
	out := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	c.Lines = out
}

func (c *Cart) Empty() bool { return len(c.Lines) == 0 }

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Store persists carts per user. Get returns an empty cart when none is stored.
type Store interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}
