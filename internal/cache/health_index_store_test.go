package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthindex/internal/cache"
	"healthindex/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthIndexStore_PutGet(t *testing.T) {
	store := cache.NewHealthIndexStore(newFakeKVStore())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Put(ctx, &domain.HealthIndex{ProfileID: "p-1", Score: 78, Source: "userInput", UpdatedAt: now}))

	got, err := store.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 78, got.Score)
	assert.Equal(t, "userInput", got.Source)
	assert.True(t, now.Equal(got.UpdatedAt))
}

func TestHealthIndexStore_Rejects(t *testing.T) {
	store := cache.NewHealthIndexStore(newFakeKVStore())
	ctx := context.Background()

	err := store.Put(ctx, &domain.HealthIndex{ProfileID: "p-1", Score: 101})
	assert.True(t, errors.Is(err, domain.ErrInvalidScore))

	err = store.Put(ctx, &domain.HealthIndex{Score: 50})
	assert.True(t, errors.Is(err, domain.ErrMissingProfile))

	_, err = store.Get(ctx, "nobody")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}
