package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthindex/internal/cache"
	"healthindex/internal/domain"
	"healthindex/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaxonomyService_ViewFillsCacheFromRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTaxonomyRepo()
	require.NoError(t, repo.CreateCategory(ctx, &domain.BiomarkerCategory{Name: domain.CategoryWellness}))

	kv := cache.NewMemoryKVStore()
	svc := NewTaxonomyService(repo, cache.NewTaxonomyCache(kv, time.Minute, zap.NewNop()), zap.NewNop())

	view, err := svc.View(ctx)
	require.NoError(t, err)
	require.Len(t, view.Categories, 1)

	_, err = kv.Get(ctx, cache.TaxonomyKey)
	require.NoError(t, err)

	// 缓存命中时不再反映 repository 的新写入，直到 Warm
	require.NoError(t, repo.CreateCategory(ctx, &domain.BiomarkerCategory{Name: domain.CategoryBlood}))
	view, err = svc.View(ctx)
	require.NoError(t, err)
	assert.Len(t, view.Categories, 1)

	require.NoError(t, svc.Warm(ctx))
	view, err = svc.View(ctx)
	require.NoError(t, err)
	assert.Len(t, view.Categories, 2)
}

type failingRepo struct {
	repository.TaxonomyRepository
}

func (failingRepo) ListCategories(context.Context) ([]*domain.BiomarkerCategory, error) {
	return nil, errors.New("connection refused")
}

func TestTaxonomyService_WarmPropagatesRepositoryError(t *testing.T) {
	svc := NewTaxonomyService(failingRepo{}, cache.NewTaxonomyCache(cache.NewMemoryKVStore(), 0, zap.NewNop()), zap.NewNop())
	err := svc.Warm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
