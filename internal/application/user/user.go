package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	userService         = "user-service"
	useCaseRegister     = "user.register"
	useCaseAuthenticate = "user.authenticate"
	useCaseGet          = "user.get"
	minPasswordLength   = 6
)

var (
	ErrConflict           = domain.ErrConflict
	ErrNotFound           = domain.ErrNotFound
	ErrInvalidCredentials = domain.ErrInvalidCredentials
	ErrRepository         = errors.New("user: repository failure")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^05\d{8}$`)
)

type IDGenerator interface {
	NewID() string
}

type Service struct {
	repo      domain.Repository
	hasher    domain.PasswordHasher
	ids       IDGenerator
	publisher domoutbox.Publisher
	in        application.Instruments
}

func NewService(
	repo domain.Repository,
	hasher domain.PasswordHasher,
	ids IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		ids:       ids,
		publisher: publisher,
		in:        application.NewInstruments(tel, userService),
	}
}

type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	DiscordID string
}

func (s *Service) Register(ctx context.Context, cmd RegisterInput) (_ *domain.User, err error) {
	ctx, run := s.in.Begin(ctx, useCaseRegister, "RegisterUser")
	defer func() { run.End(err) }()

	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.Phone = strings.TrimSpace(cmd.Phone)
	cmd.DiscordID = strings.TrimSpace(cmd.DiscordID)

	if err := validateRegistration(cmd); err != nil {
		run.Fail("VALIDATION_FAILED")
		return nil, err
	}
	if err := run.Cancelled(ctx); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		run.Fail("PASSWORD_HASH_FAILED")
		return nil, err
	}

	u := domain.New(s.ids.NewID(), cmd.Name, cmd.Email, cmd.Phone, digest, cmd.DiscordID)
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			run.Fail("EMAIL_TAKEN")
			return nil, ErrConflict
		}
		run.Fail("REPO_INSERT_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	run.Span().SetAttributes(attribute.String("user.id", u.ID))
	run.With(observability.F("user_id", u.ID))

	run.Publish(ctx, s.publisher, domain.NewRegisteredEvent(u))
	return u, nil
}

func validateRegistration(cmd RegisterInput) error {
	switch {
	case cmd.Name == "":
		return application.Invalid("name", "is required")
	case cmd.Email == "":
		return application.Invalid("email", "is required")
	case cmd.Phone == "":
		return application.Invalid("phone", "is required")
	case cmd.Password == "":
		return application.Invalid("password", "is required")
	case !emailPattern.MatchString(cmd.Email):
		return application.Invalid("email", "is not a valid address")
	case !phonePattern.MatchString(cmd.Phone):
		return application.Invalid("phone", "must be 10 digits starting with 05")
	case len([]rune(cmd.Password)) < minPasswordLength:
		return application.Invalid("password", "must be at least %d characters", minPasswordLength)
	}
	return nil
}

type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate reports ErrInvalidCredentials for both unknown emails and wrong passwords.
func (s *Service) Authenticate(ctx context.Context, cmd AuthenticateInput) (_ *domain.User, err error) {
	ctx, run := s.in.Begin(ctx, useCaseAuthenticate, "AuthenticateUser")
	defer func() { run.End(err) }()

	email := strings.TrimSpace(cmd.Email)
	if email == "" || cmd.Password == "" {
		run.Fail("VALIDATION_FAILED")
		return nil, application.Invalid("", "email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		run.Fail("INVALID_CREDENTIALS")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		run.Fail("USER_LOAD_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	if err := s.hasher.Verify(u.PasswordDigest, cmd.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			run.Fail("INVALID_CREDENTIALS")
			return nil, ErrInvalidCredentials
		}
		run.Fail("PASSWORD_VERIFY_FAILED")
		return nil, err
	}
	run.With(observability.F("user_id", u.ID))
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (_ *domain.User, err error) {
	ctx, run := s.in.Begin(ctx, useCaseGet, "GetUser", attribute.String("user.id", id))
	defer func() { run.End(err) }()

	u, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		run.Fail("USER_NOT_FOUND")
		return nil, ErrNotFound
	}
	if err != nil {
		run.Fail("USER_LOAD_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	return u, nil
}
