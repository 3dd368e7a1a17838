package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogService     = "catalog-service"
	useCaseList        = "catalog.list"
	useCaseGet         = "catalog.get"
	useCaseAdjustStock = "catalog.adjust_stock"
)

var (
	ErrNotFound   = domain.ErrNotFound
	ErrRepository = errors.New("catalog: repository failure")
)

// Service groups the catalog use cases; each method is instrumented like a UseCase.
type Service struct {
	repo      domain.Repository
	publisher domoutbox.Publisher
	in        application.Instruments
}

func NewService(repo domain.Repository, publisher domoutbox.Publisher, tel observability.Observability) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		in:        application.NewInstruments(tel, catalogService),
	}
}

func (s *Service) List(ctx context.Context) (_ []*domain.Product, err error) {
	ctx, run := s.in.Begin(ctx, useCaseList, "ListProducts")
	defer func() { run.End(err) }()

	products, err := s.repo.List(ctx)
	if err != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(observability.F("count", len(products)))
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (_ *domain.Product, err error) {
	ctx, run := s.in.Begin(ctx, useCaseGet, "GetProduct", attribute.Int64("product.id", id))
	defer func() { run.End(err) }()

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		run.Fail("PRODUCT_LOAD_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return p, nil
}

type AdjustStockInput struct {
	ProductID int64
	Delta     int
}

// AdjustStockUseCase applies a signed stock delta; reaching zero or below announces the
// product as out of stock.
type AdjustStockUseCase struct {
	svc *Service
}

func NewAdjustStockUseCase(svc *Service) *AdjustStockUseCase {
	return &AdjustStockUseCase{svc: svc}
}

func (uc *AdjustStockUseCase) Execute(ctx context.Context, cmd AdjustStockInput) (_ *domain.Product, err error) {
	s := uc.svc
	ctx, run := s.in.Begin(ctx, useCaseAdjustStock, "AdjustStock",
		attribute.Int64("product.id", cmd.ProductID),
		attribute.Int("stock.delta", cmd.Delta),
	)
	defer func() { run.End(err) }()

	if err := run.Cancelled(ctx); err != nil {
		return nil, err
	}

	p, err := s.repo.Adjust(ctx, cmd.ProductID, cmd.Delta)
	if err != nil {
		run.Fail("STOCK_ADJUST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(observability.F("stock", p.Stock))

	if p.OutOfStock() {
		run.Publish(ctx, s.publisher, domain.NewProductOutOfStockEvent(p.ID, p.Name, p.UnitPrice, p.Stock))
	}
	return p, nil
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
