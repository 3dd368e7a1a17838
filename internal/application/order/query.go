package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Service serves order reads and status changes.
type Service struct {
	orders    domain.Repository
	users     domuser.Repository
	publisher domoutbox.Publisher
	in        application.Instruments
}

func NewService(orders domain.Repository, users domuser.Repository, publisher domoutbox.Publisher, tel observability.Observability) *Service {
	return &Service{
		orders:    orders,
		users:     users,
		publisher: publisher,
		in:        application.NewInstruments(tel, orderService),
	}
}

func (s *Service) Get(ctx context.Context, number string) (_ *domain.Order, err error) {
	ctx, run := s.in.Begin(ctx, useCaseOrderGet, "GetOrder", attribute.String("order.number", number))
	defer func() { run.End(err) }()

	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		run.Fail("ORDER_LOAD_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) (_ []*domain.Order, err error) {
	ctx, run := s.in.Begin(ctx, useCaseOrderList, "ListUserOrders", attribute.String("order.user_id", userID))
	defer func() { run.End(err) }()

	// Unknown users simply have no orders.
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		run.Fail("ORDER_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(observability.F("count", len(list)))
	return list, nil
}

type UpdateStatusInput struct {
	OrderNumber string
	Status      string
}

// UpdateStatus moves an order along processing → confirmed → shipped → delivered, or
// cancels it while still processing.
func (s *Service) UpdateStatus(ctx context.Context, cmd UpdateStatusInput) (_ *domain.Order, err error) {
	ctx, run := s.in.Begin(ctx, useCaseOrderStatus, "UpdateOrderStatus",
		attribute.String("order.number", cmd.OrderNumber),
		attribute.String("order.target_status", cmd.Status),
	)
	defer func() { run.End(err) }()

	// The order is looked up before the status is parsed so a missing order reports
	// not found whatever status was sent.
	var from domain.Status
	o, err := s.orders.Modify(ctx, cmd.OrderNumber, func(o *domain.Order) error {
		target, err := domain.ParseStatus(cmd.Status)
		if err != nil {
			return err
		}
		from = o.Status
		return o.TransitionTo(target)
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidStatus):
		run.Fail("STATUS_INVALID")
		return nil, err
	case errors.Is(err, domain.ErrInvalidStateTransition):
		run.Fail("STATE_TRANSITION_FAILED")
		return nil, err
	default:
		run.Fail("ORDER_UPDATE_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(
		observability.F("from", string(from)),
		observability.F("to", string(o.Status)),
	)

	customer := domain.Customer{ID: o.UserID}
	if u, err := s.users.Get(ctx, o.UserID); err == nil {
		customer = customerOf(u)
	}
	run.Publish(ctx, s.publisher, domain.NewStatusChangedEvent(o, from, customer))
	return o, nil
}

func wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
