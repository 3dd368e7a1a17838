package notification

import (
	"context"
	"time"
)

type Kind string

const (
	KindNewUser        Kind = "new_user"
	KindNewOrder       Kind = "new_order"
	KindOrderStatus    Kind = "order_status_change"
	KindSupportMessage Kind = "support_message"
	KindPaymentSuccess Kind = "payment_success"
	KindPaymentFailure Kind = "payment_failure"
	KindOutOfStock     Kind = "out_of_stock"
	KindDailyReport    Kind = "daily_report"
	KindNewReview      Kind = "new_review"
	KindSystemError    Kind = "system_error"
)

// Color is the embed side-bar color understood by the receiving channel.
type Color int

const (
	ColorSuccess Color = 5763719
	ColorInfo    Color = 3447003
	ColorWarning Color = 16776960
	ColorError   Color = 15548997
	ColorOrder   Color = 15844367
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Event is a rendered alert; it lives only for the duration of one dispatch.
type Event struct {
	Kind        Kind
	Title       string
	Description string
	Color       Color
	Fields      []Field
	Thumbnail   string
	Timestamp   time.Time
}

// Delivery describes a finished dispatch. Skipped means no channel is configured.
type Delivery struct {
	StatusCode int
	Attempts   int
	Skipped    bool
}

// Dispatcher sends a rendered event to the operations channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) (Delivery, error)
}
