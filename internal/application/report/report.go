package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/report"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	reportService = "report-service"
	useCaseDaily  = "report.daily"
)

var ErrRepository = errors.New("report: repository failure")

type DailyInput struct {
	// Day is any instant within the requested day; zero means today.
	Day time.Time
}

// DailyUseCase summarises one calendar day in the configured location and announces it.
type DailyUseCase struct {
	orders    domorder.Repository
	users     domuser.Repository
	publisher domoutbox.Publisher
	loc       *time.Location
	now       func() time.Time
	in        application.Instruments
}

func NewDailyUseCase(
	orders domorder.Repository,
	users domuser.Repository,
	publisher domoutbox.Publisher,
	loc *time.Location,
	tel observability.Observability,
) *DailyUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyUseCase{
		orders:    orders,
		users:     users,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		in:        application.NewInstruments(tel, reportService),
	}
}

func (uc *DailyUseCase) Execute(ctx context.Context, cmd DailyInput) (_ domain.Daily, err error) {
	day := cmd.Day
	if day.IsZero() {
		day = uc.now()
	}
	from, to := domain.DayBounds(day, uc.loc)

	ctx, run := uc.in.Begin(ctx, useCaseDaily, "DailyReport", attribute.String("report.date", from.Format(time.DateOnly)))
	defer func() { run.End(err) }()

	orders, err := uc.orders.ListCreatedBetween(ctx, from, to)
	if err != nil {
		run.Fail("ORDER_LIST_FAILED")
		return domain.Daily{}, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	newCustomers, err := uc.users.CountCreatedBetween(ctx, from, to)
	if err != nil {
		run.Fail("USER_COUNT_FAILED")
		return domain.Daily{}, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	d := domain.Summarize(from, orders, newCustomers)
	run.With(
		observability.F("orders", d.TotalOrders),
		observability.F("revenue", d.TotalRevenue.String()),
	)
	run.Publish(ctx, uc.publisher, domain.NewGeneratedEvent(d))
	return d, nil
}
