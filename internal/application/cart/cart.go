package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	apporder "github.com/Zhima-Mochi/minishop-storefront/internal/application/order"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	dompayment "github.com/Zhima-Mochi/minishop-storefront/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const (
	cartService     = "cart-service"
	useCaseView     = "cart.view"
	useCaseAdd      = "cart.add_item"
	useCaseSet      = "cart.set_quantity"
	useCaseRemove   = "cart.remove_item"
	useCaseClear    = "cart.clear"
	useCaseCheckout = "cart.checkout"
)

var (
	ErrEmpty           = errors.New("cart: cart is empty")
	ErrProductNotFound = domcatalog.ErrNotFound
	ErrUserNotFound    = domuser.ErrNotFound
	ErrStore           = errors.New("cart: store failure")
)

// OrderCreator is the order workflow the cart checks out through.
type OrderCreator = application.UseCase[apporder.CreateOrderInput, *apporder.CreateOrderResult]

type Line struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Total     decimal.Decimal
	InStock   int
}

// View is a cart priced at current catalog prices.
type View struct {
	UserID    string
	Lines     []Line
	ItemCount int
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

type Service struct {
	store    domain.Store
	products domcatalog.Repository
	users    domuser.Repository
	orders   OrderCreator
	shipping decimal.Decimal
	in       application.Instruments
}

func NewService(
	store domain.Store,
	products domcatalog.Repository,
	users domuser.Repository,
	orders OrderCreator,
	shipping decimal.Decimal,
	tel observability.Observability,
) *Service {
	return &Service{
		store:    store,
		products: products,
		users:    users,
		orders:   orders,
		shipping: shipping,
		in:       application.NewInstruments(tel, cartService),
	}
}

func (s *Service) View(ctx context.Context, userID string) (_ *View, err error) {
	ctx, run := s.in.Begin(ctx, useCaseView, "ViewCart", attribute.String("cart.user_id", userID))
	defer func() { run.End(err) }()

	c, err := s.load(ctx, run, userID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, run, c)
}

func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (_ *View, err error) {
	ctx, run := s.in.Begin(ctx, useCaseAdd, "AddCartItem",
		attribute.String("cart.user_id", userID),
		attribute.Int64("product.id", productID),
	)
	defer func() { run.End(err) }()

	if quantity <= 0 {
		run.Fail("QUANTITY_INVALID")
		return nil, application.Invalid("quantity", "must be greater than zero")
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		run.Fail("PRODUCT_NOT_FOUND")
		return nil, ErrProductNotFound
	}
	c, err := s.load(ctx, run, userID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(productID, quantity); err != nil {
		run.Fail("QUANTITY_INVALID")
		return nil, application.Invalid("quantity", "%v", err)
	}
	if err := s.save(ctx, run, c); err != nil {
		return nil, err
	}
	return s.price(ctx, run, c)
}

// SetQuantity overwrites a line; zero removes it.
func (s *Service) SetQuantity(ctx context.Context, userID string, productID int64, quantity int) (_ *View, err error) {
	ctx, run := s.in.Begin(ctx, useCaseSet, "SetCartQuantity",
		attribute.String("cart.user_id", userID),
		attribute.Int64("product.id", productID),
	)
	defer func() { run.End(err) }()

	if quantity < 0 {
		run.Fail("QUANTITY_INVALID")
		return nil, application.Invalid("quantity", "must not be negative")
	}
	if quantity > 0 {
		if _, err := s.products.Get(ctx, productID); err != nil {
			run.Fail("PRODUCT_NOT_FOUND")
			return nil, ErrProductNotFound
		}
	}
	c, err := s.load(ctx, run, userID)
	if err != nil {
		return nil, err
	}
	c.Set(productID, quantity)
	if err := s.save(ctx, run, c); err != nil {
		return nil, err
	}
	return s.price(ctx, run, c)
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID int64) (_ *View, err error) {
	ctx, run := s.in.Begin(ctx, useCaseRemove, "RemoveCartItem",
		attribute.String("cart.user_id", userID),
		attribute.Int64("product.id", productID),
	)
	defer func() { run.End(err) }()

	c, err := s.load(ctx, run, userID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.save(ctx, run, c); err != nil {
		return nil, err
	}
	return s.price(ctx, run, c)
}

func (s *Service) Clear(ctx context.Context, userID string) (err error) {
	ctx, run := s.in.Begin(ctx, useCaseClear, "ClearCart", attribute.String("cart.user_id", userID))
	defer func() { run.End(err) }()

	if err := s.requireUser(ctx, run, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		run.Fail("STORE_DELETE_FAILED")
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

type CheckoutInput struct {
	UserID        string
	PaymentMethod string
	Card          *dompayment.Card
}

// Checkout places an order for the cart's lines and empties the cart once the order exists.
func (s *Service) Checkout(ctx context.Context, cmd CheckoutInput) (_ *apporder.CreateOrderResult, err error) {
	ctx, run := s.in.Begin(ctx, useCaseCheckout, "CheckoutCart", attribute.String("cart.user_id", cmd.UserID))
	defer func() { run.End(err) }()

	c, err := s.load(ctx, run, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		run.Fail("CART_EMPTY")
		return nil, ErrEmpty
	}

	lines := make([]apporder.LineInput, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, apporder.LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	res, err := s.orders.Execute(ctx, apporder.CreateOrderInput{
		UserID:        cmd.UserID,
		Lines:         lines,
		PaymentMethod: cmd.PaymentMethod,
		Card:          cmd.Card,
	})
	if err != nil {
		run.Fail("ORDER_FAILED")
		return nil, err
	}

	if err := s.store.Delete(context.WithoutCancel(ctx), cmd.UserID); err != nil {
		run.Note("CART_CLEAR_FAILED")
		run.Logger().Warn("cart_clear_failed", observability.F("error", err))
	}
	run.With(observability.F("order_number", res.Order.Number))
	return res, nil
}

func (s *Service) requireUser(ctx context.Context, run *application.Run, userID string) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		if errors.Is(err, domuser.ErrNotFound) {
			run.Fail("USER_NOT_FOUND")
			return ErrUserNotFound
		}
		run.Fail("USER_LOAD_FAILED")
		return err
	}
	return nil
}

func (s *Service) load(ctx context.Context, run *application.Run, userID string) (*domain.Cart, error) {
	if err := s.requireUser(ctx, run, userID); err != nil {
		return nil, err
	}
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		run.Fail("STORE_GET_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, run *application.Run, c *domain.Cart) error {
	if err := s.store.Save(ctx, c); err != nil {
		run.Fail("STORE_SAVE_FAILED")
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

// price drops lines whose product has left the catalog; shipping applies to non-empty carts.
func (s *Service) price(ctx context.Context, run *application.Run, c *domain.Cart) (*View, error) {
	v := &View{UserID: c.UserID, Subtotal: decimal.Zero, Shipping: decimal.Zero, Total: decimal.Zero}
	for _, l := range c.Lines {
		p, err := s.products.Get(ctx, l.ProductID)
		if errors.Is(err, domcatalog.ErrNotFound) {
			continue
		}
		if err != nil {
			run.Fail("PRODUCT_LOAD_FAILED")
			return nil, err
		}
		total := p.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		v.Lines = append(v.Lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  l.Quantity,
			Total:     total,
			InStock:   p.Stock,
		})
		v.ItemCount += l.Quantity
		v.Subtotal = v.Subtotal.Add(total)
	}
	if len(v.Lines) > 0 {
		v.Shipping = s.shipping
	}
	v.Total = v.Subtotal.Add(v.Shipping)
	return v, nil
}
