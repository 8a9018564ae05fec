package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"healthindex/internal/cache"
	"healthindex/internal/domain"
	"healthindex/internal/repository"
	"healthindex/internal/seeder"
	"healthindex/internal/taxonomy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededView(t *testing.T) *taxonomy.View {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemoryTaxonomyRepo()
	cat, err := taxonomy.DefaultCatalog()
	require.NoError(t, err)
	_, err = seeder.NewSeeder(repo, cat, nil, zap.NewNop()).SeedIfNeeded(ctx)
	require.NoError(t, err)

	view, err := taxonomy.BuildView(ctx, repo)
	require.NoError(t, err)
	return view
}

func TestTaxonomyCache_PutWritesJSONWithTTL(t *testing.T) {
	kv := newFakeKVStore()
	tc := cache.NewTaxonomyCache(kv, 5*time.Minute, zap.NewNop())

	view := seededView(t)
	require.NoError(t, tc.Put(context.Background(), view))

	raw, err := kv.Get(context.Background(), cache.TaxonomyKey)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, kv.ttls[cache.TaxonomyKey])

	var decoded taxonomy.View
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Len(t, decoded.Categories, 3)
	assert.InDelta(t, 1.15, decoded.TotalWeight, 1e-9)

	blood, ok := decoded.Category(domain.CategoryBlood)
	require.True(t, ok)
	require.Len(t, blood.Biomarkers, 2)
	assert.Equal(t, domain.CodeGLUC, blood.Biomarkers[0].Code)
	assert.Equal(t, 0.15, blood.Biomarkers[0].Weight)
}

func TestTaxonomyCache_GetOrBuild_FillsOnMiss(t *testing.T) {
	kv := newFakeKVStore()
	tc := cache.NewTaxonomyCache(kv, time.Minute, zap.NewNop())
	view := seededView(t)

	calls := 0
	build := func(ctx context.Context) (*taxonomy.View, error) {
		calls++
		return view, nil
	}

	got, err := tc.GetOrBuild(context.Background(), build)
	require.NoError(t, err)
	assert.Len(t, got.Categories, 3)

	got, err = tc.GetOrBuild(context.Background(), build)
	require.NoError(t, err)
	assert.Len(t, got.DataSources, 4)
	assert.Equal(t, 1, calls)
}

func TestTaxonomyCache_GetOrBuild_KVErrorFallsBack(t *testing.T) {
	kv := newFakeKVStore()
	kv.getErr = errKVDown
	kv.setErr = errKVDown
	tc := cache.NewTaxonomyCache(kv, time.Minute, zap.NewNop())
	view := seededView(t)

	got, err := tc.GetOrBuild(context.Background(), func(ctx context.Context) (*taxonomy.View, error) {
		return view, nil
	})
	require.NoError(t, err)
	assert.Same(t, view, got)
}

func TestTaxonomyCache_GetOrBuild_BuildError(t *testing.T) {
	tc := cache.NewTaxonomyCache(newFakeKVStore(), time.Minute, zap.NewNop())
	boom := errors.New("db gone")

	_, err := tc.GetOrBuild(context.Background(), func(ctx context.Context) (*taxonomy.View, error) {
		return nil, boom
	})
	assert.True(t, errors.Is(err, boom))
}

func TestTaxonomyCache_CorruptEntryIsMiss(t *testing.T) {
	kv := newFakeKVStore()
	require.NoError(t, kv.Set(context.Background(), cache.TaxonomyKey, "{not json", 0))
	tc := cache.NewTaxonomyCache(kv, time.Minute, zap.NewNop())

	_, err := tc.Get(context.Background())
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
	_, err = kv.Get(context.Background(), cache.TaxonomyKey)
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestTaxonomyCache_Invalidate(t *testing.T) {
	kv := newFakeKVStore()
	tc := cache.NewTaxonomyCache(kv, time.Minute, zap.NewNop())
	require.NoError(t, tc.Put(context.Background(), seededView(t)))
	require.NoError(t, tc.Invalidate(context.Background()))

	_, err := tc.Get(context.Background())
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}
