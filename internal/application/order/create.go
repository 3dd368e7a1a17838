package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	apppayment "github.com/Zhima-Mochi/minishop-storefront/internal/application/payment"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderCreate = "order.create"
	useCaseOrderStatus = "order.update_status"
	useCaseOrderGet    = "order.get"
	useCaseOrderList   = "order.list_by_user"
	releaseTimeout     = 2 * time.Second
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrUserNotFound      = domuser.ErrNotFound
	ErrProductNotFound   = domcatalog.ErrNotFound
	ErrInvalidStatus     = domain.ErrInvalidStatus
	ErrInvalidTransition = domain.ErrInvalidStateTransition
	ErrPaymentFailed     = errors.New("order: payment failed")
	ErrRepository        = errors.New("order: repository failure")
)

type LineInput struct {
	ProductID int64
	Quantity  int
}

type CreateOrderInput struct {
	UserID        string
	Lines         []LineInput
	PaymentMethod string
	Card          *dompayment.Card
}

type CreateOrderResult struct {
	Order *domain.Order
}

// CreateOrderUseCase reserves stock, charges the customer and records the order.
// Stock is reserved before charging and released again when the charge fails.
type CreateOrderUseCase struct {
	orders    domain.Repository
	products  domcatalog.Repository
	users     domuser.Repository
	payments  PaymentPort
	ids       IDGenerator
	numbers   NumberGenerator
	publisher domoutbox.Publisher
	shipping  decimal.Decimal
	now       func() time.Time
	in        application.Instruments
}

type Deps struct {
	Orders    domain.Repository
	Products  domcatalog.Repository
	Users     domuser.Repository
	Payments  PaymentPort
	IDs       IDGenerator
	Numbers   NumberGenerator
	Publisher domoutbox.Publisher
}

func NewCreateOrderUseCase(d Deps, shipping decimal.Decimal, tel observability.Observability) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orders:    d.Orders,
		products:  d.Products,
		users:     d.Users,
		payments:  d.Payments,
		ids:       d.IDs,
		numbers:   d.Numbers,
		publisher: d.Publisher,
		shipping:  shipping,
		now:       time.Now,
		in:        application.NewInstruments(tel, orderService),
	}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseOrderCreate, "CreateOrder",
		attribute.String("order.user_id", cmd.UserID),
		attribute.Int("order.lines", len(cmd.Lines)),
		attribute.String("payment.method", cmd.PaymentMethod),
	)
	defer func() { run.End(err) }()

	method, err := uc.validate(cmd)
	if err != nil {
		run.Fail("VALIDATION_FAILED")
		return nil, err
	}
	if err := run.Cancelled(ctx); err != nil {
		return nil, err
	}

	u, err := uc.users.Get(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, domuser.ErrNotFound) {
			run.Fail("USER_NOT_FOUND")
			return nil, ErrUserNotFound
		}
		run.Fail("USER_LOAD_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	customer := customerOf(u)

	reqs := make([]domcatalog.StockRequest, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		reqs = append(reqs, domcatalog.StockRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	reserved, err := uc.products.Reserve(ctx, reqs)
	if err != nil {
		var stockErr *domcatalog.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			run.Fail("INSUFFICIENT_STOCK")
			run.With(observability.F("product_id", stockErr.ProductID))
			return nil, err
		case errors.Is(err, domcatalog.ErrNotFound):
			run.Fail("PRODUCT_NOT_FOUND")
			return nil, ErrProductNotFound
		default:
			run.Fail("STOCK_RESERVE_FAILED")
			return nil, fmt.Errorf("%w: %w", ErrRepository, err)
		}
	}
	run.Span().AddEvent("stock.reserved")

	lines := make([]domain.Line, 0, len(reserved))
	for _, r := range reserved {
		lines = append(lines, domain.Line{ProductID: r.ProductID, Name: r.Name, UnitPrice: r.UnitPrice, Quantity: r.Quantity})
	}
	// Build once without identity to price the charge; the persisted order reuses the lines.
	priced, err := domain.New("", "", u.ID, lines, uc.shipping, string(method), "")
	if err != nil {
		uc.release(ctx, run, reqs)
		run.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, fmt.Errorf("order: construct: %w", err)
	}

	charge, err := uc.payments.Execute(ctx, dompayment.ChargeRequest{Amount: priced.Total, Method: method, Card: cmd.Card})
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		// The caller gave up; that is not a decline and raises no payment alert.
		uc.release(ctx, run, reqs)
		run.Fail("PAYMENT_ABORTED")
		return nil, err
	}
	if err != nil || !charge.Success {
		uc.release(ctx, run, reqs)
		reason := charge.Error
		if err != nil {
			reason = err.Error()
		}
		run.Fail("PAYMENT_FAILED")
		run.Publish(ctx, uc.publisher, domain.NewPaymentFailedEvent(customer, priced.Total, string(method), reason))
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, reason)
	}

	entity, err := domain.New(uc.ids.NewID(), uc.numbers.NewNumber(), u.ID, lines, uc.shipping, string(method), charge.TransactionID)
	if err != nil {
		uc.release(ctx, run, reqs)
		run.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, fmt.Errorf("order: construct: %w", err)
	}
	if err := uc.orders.Insert(ctx, entity); err != nil {
		uc.release(ctx, run, reqs)
		run.Fail("REPO_INSERT_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	events := []domoutbox.Event{
		domain.NewOrderCreatedEvent(entity, customer),
		domain.NewPaymentSucceededEvent(entity, customer),
	}
	soldOut := make(map[int64]bool)
	for _, r := range reserved {
		if r.RemainingStock <= 0 && !soldOut[r.ProductID] {
			soldOut[r.ProductID] = true
			events = append(events, domcatalog.NewProductOutOfStockEvent(r.ProductID, r.Name, r.UnitPrice, r.RemainingStock))
		}
	}
	run.Publish(ctx, uc.publisher, events...)

	run.With(
		observability.F("order_number", entity.Number),
		observability.F("total", entity.Total.String()),
	)
	run.Span().SetAttributes(attribute.String("order.status", string(entity.Status)))
	run.Span().AddEvent("order.created", trace.WithAttributes(attribute.String("order.number", entity.Number)))

	return &CreateOrderResult{Order: entity}, nil
}

func (uc *CreateOrderUseCase) validate(cmd CreateOrderInput) (dompayment.Method, error) {
	if cmd.UserID == "" {
		return "", application.Invalid("userId", "is required")
	}
	if len(cmd.Lines) == 0 {
		return "", application.Invalid("items", "at least one item is required")
	}
	for i, l := range cmd.Lines {
		if l.Quantity <= 0 {
			return "", application.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
	}
	method, err := dompayment.ParseMethod(cmd.PaymentMethod)
	if err != nil {
		return "", application.Invalid("paymentMethod", "%v", err)
	}
	if err := apppayment.Validate(method, cmd.Card, uc.now()); err != nil {
		return "", err
	}
	return method, nil
}

// release returns reserved stock on a context that survives request cancellation.
func (uc *CreateOrderUseCase) release(ctx context.Context, run *application.Run, reqs []domcatalog.StockRequest) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := uc.products.Release(rctx, reqs); err != nil {
		run.Logger().Error("stock_release_failed", observability.F("error", err))
		return
	}
	run.Span().AddEvent("stock.released")
}

func customerOf(u *domuser.User) domain.Customer {
	return domain.Customer{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		DiscordID: u.DiscordID,
	}
}
