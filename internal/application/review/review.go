package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/review"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	reviewService = "review-service"
	useCaseSubmit = "review.submit"
	useCaseList   = "review.list"
)

var (
	ErrProductNotFound = domcatalog.ErrNotFound
	ErrRepository      = errors.New("review: repository failure")
)

type IDGenerator interface {
	NewID() string
}

type Service struct {
	reviews   domain.Repository
	products  domcatalog.Repository
	ids       IDGenerator
	publisher domoutbox.Publisher
	in        application.Instruments
}

func NewService(
	reviews domain.Repository,
	products domcatalog.Repository,
	ids IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	return &Service{
		reviews:   reviews,
		products:  products,
		ids:       ids,
		publisher: publisher,
		in:        application.NewInstruments(tel, reviewService),
	}
}

type SubmitInput struct {
	ProductID    int64
	CustomerName string
	Rating       int
	Comment      string
}

func (s *Service) Submit(ctx context.Context, cmd SubmitInput) (_ *domain.Review, err error) {
	ctx, run := s.in.Begin(ctx, useCaseSubmit, "SubmitReview",
		attribute.Int64("product.id", cmd.ProductID),
		attribute.Int("review.rating", cmd.Rating),
	)
	defer func() { run.End(err) }()

	name := strings.TrimSpace(cmd.CustomerName)
	if name == "" {
		run.Fail("VALIDATION_FAILED")
		return nil, application.Invalid("customerName", "is required")
	}

	p, err := s.products.Get(ctx, cmd.ProductID)
	if err != nil {
		if errors.Is(err, domcatalog.ErrNotFound) {
			run.Fail("PRODUCT_NOT_FOUND")
			return nil, ErrProductNotFound
		}
		run.Fail("PRODUCT_LOAD_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	r, err := domain.New(s.ids.NewID(), p.ID, name, cmd.Rating, strings.TrimSpace(cmd.Comment))
	if err != nil {
		run.Fail("VALIDATION_FAILED")
		return nil, application.Invalid("rating", "%v", err)
	}
	if err := s.reviews.Insert(ctx, r); err != nil {
		run.Fail("REPO_INSERT_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	run.Publish(ctx, s.publisher, domain.NewSubmittedEvent(r, p.Name))
	return r, nil
}

func (s *Service) List(ctx context.Context, productID int64) (_ []*domain.Review, err error) {
	ctx, run := s.in.Begin(ctx, useCaseList, "ListReviews", attribute.Int64("product.id", productID))
	defer func() { run.End(err) }()

	if _, err := s.products.Get(ctx, productID); err != nil {
		run.Fail("PRODUCT_NOT_FOUND")
		return nil, ErrProductNotFound
	}
	list, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	return list, nil
}
