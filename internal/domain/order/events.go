package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the contact snapshot carried on order events for notification rendering.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	DiscordID string
}

// OrderCreatedEvent is emitted once a paid order has been persisted.
type OrderCreatedEvent struct {
	OrderID       string
	OrderNumber   string
	Customer      Customer
	Lines         []Line
	Subtotal      decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	TransactionID string
	OccurredAt    time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order, c Customer) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		Customer:      c,
		Lines:         append([]Line(nil), o.Lines...),
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		TransactionID: o.TransactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

// PaymentSucceededEvent is emitted after the gateway accepted the charge for an order.
type PaymentSucceededEvent struct {
	OrderNumber   string
	TransactionID string
	Amount        decimal.Decimal
	Method        string
	Customer      Customer
	OccurredAt    time.Time
}

func (PaymentSucceededEvent) EventName() string { return "order.payment_succeeded" }

func NewPaymentSucceededEvent(o *Order, c Customer) PaymentSucceededEvent {
	return PaymentSucceededEvent{
		OrderNumber:   o.Number,
		TransactionID: o.TransactionID,
		Amount:        o.Total,
		Method:        o.PaymentMethod,
		Customer:      c,
		OccurredAt:    time.Now().UTC(),
	}
}

// PaymentFailedEvent is emitted when the gateway declined or errored; no order exists.
type PaymentFailedEvent struct {
	Customer   Customer
	Amount     decimal.Decimal
	Method     string
	Reason     string
	OccurredAt time.Time
}

func (PaymentFailedEvent) EventName() string { return "order.payment_failed" }

func NewPaymentFailedEvent(c Customer, amount decimal.Decimal, method, reason string) PaymentFailedEvent {
	return PaymentFailedEvent{
		Customer:   c,
		Amount:     amount,
		Method:     method,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

// StatusChangedEvent is emitted after an explicit status update.
type StatusChangedEvent struct {
	OrderNumber string
	From        Status
	To          Status
	Customer    Customer
	OccurredAt  time.Time
}

func (StatusChangedEvent) EventName() string { return "order.status_changed" }

func NewStatusChangedEvent(o *Order, from Status, c Customer) StatusChangedEvent {
	return StatusChangedEvent{
		OrderNumber: o.Number,
		From:        from,
		To:          o.Status,
		Customer:    c,
		OccurredAt:  o.UpdatedAt,
	}
}
