package support

import (
	"context"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/apptest"
	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/support"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPublishesMessage(t *testing.T) {
	rec := &apptest.Recorder{}
	_, err := NewSubmitUseCase(rec, nil).Execute(context.Background(), domain.Message{
		Name: " Sara ", Email: "sara@example.com", Type: "payment", Message: "charged twice",
	})
	require.NoError(t, err)

	got := apptest.Of[domain.MessageReceivedEvent](rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Sara", got[0].Name)
	assert.Empty(t, got[0].Phone)
}

func TestSubmitValidation(t *testing.T) {
	rec := &apptest.Recorder{}
	uc := NewSubmitUseCase(rec, nil)

	for _, m := range []domain.Message{
		{Email: "a@b.co", Type: "t", Message: "m"},
		{Name: "n", Email: "not-an-email", Type: "t", Message: "m"},
		{Name: "n", Email: "a@b.co", Message: "m"},
		{Name: "n", Email: "a@b.co", Type: "t", Message: "  "},
	} {
		_, err := uc.Execute(context.Background(), m)
		var verr *application.ValidationError
		assert.True(t, errors.As(err, &verr), "message %+v", m)
	}
	assert.Empty(t, rec.Events())
}
