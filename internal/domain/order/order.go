package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrConflict               = errors.New("order: already exists")
	ErrNoLines                = errors.New("order: at least one line is required")
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrInvalidStatus          = errors.New("order: unknown status")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusConfirmed  Status = "confirmed"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus accepts the lowercase wire form of a status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusProcessing, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Line is an immutable priced snapshot taken when the order was placed.
type Line struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID            string
	Number        string
	UserID        string
	Lines         []Line
	Subtotal      decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	TransactionID string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time

	state OrderState
}

// New builds a processing order; subtotal and total are derived from the lines.
func New(id, number, userID string, lines []Line, shipping decimal.Decimal, paymentMethod, transactionID string) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	subtotal := decimal.Zero
	snapshot := make([]Line, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		snapshot[i] = l
		subtotal = subtotal.Add(l.Total())
	}

	now := time.Now().UTC()
	return &Order{
		ID:            id,
		Number:        number,
		UserID:        userID,
		Lines:         snapshot,
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		Total:         subtotal.Add(shipping),
		PaymentMethod: paymentMethod,
		TransactionID: transactionID,
		Status:        StatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
		state:         processingState{},
	}, nil
}

// TransitionTo moves the order to target when the lifecycle allows it.
func (o *Order) TransitionTo(target Status) error {
	next, err := o.currentState().On(target)
	if err != nil {
		return fmt.Errorf("%w: %s -> %s", err, o.Status, target)
	}
	o.state = next
	o.Status = next.Status()
	o.touch()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

func (o *Order) currentState() OrderState {
	if o.state == nil || o.state.Status() != o.Status {
		o.state = stateFor(o.Status)
	}
	return o.state
}

// touch keeps UpdatedAt strictly increasing even on coarse clocks.
func (o *Order) touch() {
	now := time.Now().UTC()
	if !now.After(o.UpdatedAt) {
		now = o.UpdatedAt.Add(time.Microsecond)
	}
	o.UpdatedAt = now
}
