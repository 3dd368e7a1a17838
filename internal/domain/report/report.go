package report

import (
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

type Daily struct {
	Date            time.Time
	TotalOrders     int
	TotalRevenue    decimal.Decimal
	NewCustomers    int
	CompletedOrders int
	PendingOrders   int
	CancelledOrders int
}

// Summarize folds the day's orders into a report. Completed means delivered and pending
// means still processing.
func Summarize(date time.Time, orders []*order.Order, newCustomers int) Daily {
	d := Daily{Date: date, TotalRevenue: decimal.Zero, NewCustomers: newCustomers}
	for _, o := range orders {
		d.TotalOrders++
		d.TotalRevenue = d.TotalRevenue.Add(o.Total)
		switch o.Status {
		case order.StatusDelivered:
			d.CompletedOrders++
		case order.StatusProcessing:
			d.PendingOrders++
		case order.StatusCancelled:
			d.CancelledOrders++
		}
	}
	return d
}

// DayBounds returns [start, end) of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// GeneratedEvent is emitted whenever a daily report is produced.
type GeneratedEvent struct {
	Report     Daily
	OccurredAt time.Time
}

func (GeneratedEvent) EventName() string { return "report.daily_generated" }

func NewGeneratedEvent(d Daily) GeneratedEvent {
	return GeneratedEvent{Report: d, OccurredAt: time.Now().UTC()}
}
