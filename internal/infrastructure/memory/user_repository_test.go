package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryEmailIsUnique(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, domain.New("u1", "Sara", "sara@example.com", "0512345678", "digest", "")))
	err := repo.Insert(ctx, domain.New("u2", "Sara 2", "sara@example.com", "0512345679", "digest", ""))
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.GetByEmail(ctx, "sara@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = repo.GetByEmail(ctx, "SARA@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.Get(ctx, "u9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepositoryConcurrentRegistrationsWithOneEmail(t *testing.T) {
	repo := NewUserRepository()

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := domain.New(uuid.NewString(), "n", "same@example.com", "0500000000", "d", "")
			if repo.Insert(context.Background(), u) == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
}

func TestUserRepositoryCountCreatedBetween(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	old := domain.New("u0", "old", "old@example.com", "0500000000", "d", "")
	old.CreatedAt = time.Now().Add(-72 * time.Hour)
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Insert(ctx, domain.New("u1", "new", "new@example.com", "0500000001", "d", "")))

	n, err := repo.CountCreatedBetween(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
