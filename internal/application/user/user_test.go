package user

import (
	"context"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/apptest"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/security"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*Service, *apptest.Recorder) {
	t.Helper()
	rec := &apptest.Recorder{}
	svc := NewService(
		memory.NewUserRepository(),
		security.NewBcryptHasher(bcrypt.MinCost),
		&apptest.Sequence{Prefix: "user"},
		rec,
		observability.Nop(),
	)
	return svc, rec
}

func sara() RegisterInput {
	return RegisterInput{
		Name:      "Sara",
		Email:     "sara@example.com",
		Phone:     "0512345678",
		Password:  "secret1",
		DiscordID: "123456789",
	}
}

func TestRegisterThenAuthenticate(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, sara())
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.NotEqual(t, "secret1", u.PasswordDigest)

	events := apptest.Of[domain.RegisteredEvent](rec)
	require.Len(t, events, 1)
	assert.Equal(t, "sara@example.com", events[0].Email)
	assert.Equal(t, "123456789", events[0].DiscordID)

	got, err := svc.Authenticate(ctx, AuthenticateInput{Email: "sara@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, AuthenticateInput{Email: "sara@example.com", Password: "wrong!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, AuthenticateInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, sara())
	require.NoError(t, err)

	second := sara()
	second.Name = "Other"
	_, err = svc.Register(ctx, second)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, rec.Events(), 1)
}

func TestRegisterValidation(t *testing.T) {
	cases := map[string]func(*RegisterInput){
		"missing name":   func(in *RegisterInput) { in.Name = " " },
		"missing email":  func(in *RegisterInput) { in.Email = "" },
		"bad email":      func(in *RegisterInput) { in.Email = "sara.example.com" },
		"bad phone":      func(in *RegisterInput) { in.Phone = "0612345678" },
		"short phone":    func(in *RegisterInput) { in.Phone = "05123" },
		"short password": func(in *RegisterInput) { in.Password = "12345" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, rec := newService(t)
			in := sara()
			mutate(&in)

			_, err := svc.Register(context.Background(), in)
			var verr *application.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Empty(t, rec.Events())
		})
	}
}

func TestRegisterWithoutDiscordID(t *testing.T) {
	svc, _ := newService(t)
	in := sara()
	in.DiscordID = ""

	u, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, u.DiscordID)
}

func TestGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, sara())
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sara", got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
