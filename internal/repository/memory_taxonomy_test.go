package repository

import (
	"context"
	"errors"
	"testing"

	"healthindex/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTaxonomyRepo_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaxonomyRepo()

	blood := &domain.BiomarkerCategory{Name: domain.CategoryBlood}
	require.NoError(t, repo.CreateCategory(ctx, blood))
	err := repo.CreateCategory(ctx, &domain.BiomarkerCategory{Name: domain.CategoryBlood})
	assert.True(t, errors.Is(err, ErrDuplicate))

	hdl := &domain.BiomarkerDefinition{CategoryID: blood.CategoryID, Code: domain.CodeHDL, NormalRange: domain.NormalRange{Min: 40, Max: 60}}
	require.NoError(t, repo.CreateBiomarker(ctx, hdl))
	err = repo.CreateBiomarker(ctx, &domain.BiomarkerDefinition{CategoryID: blood.CategoryID, Code: domain.CodeHDL})
	assert.True(t, errors.Is(err, ErrDuplicate))

	require.NoError(t, repo.CreateScoreWeight(ctx, &domain.ScoreWeight{BiomarkerID: hdl.BiomarkerID, Weight: 0.15}))
	err = repo.CreateScoreWeight(ctx, &domain.ScoreWeight{BiomarkerID: hdl.BiomarkerID, Weight: 0.2})
	assert.True(t, errors.Is(err, ErrDuplicate))

	require.NoError(t, repo.CreateDataSource(ctx, &domain.DataSource{Name: "lab"}))
	err = repo.CreateDataSource(ctx, &domain.DataSource{Name: "lab"})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestMemoryTaxonomyRepo_ReferentialChecks(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaxonomyRepo()

	err := repo.CreateBiomarker(ctx, &domain.BiomarkerDefinition{CategoryID: "missing", Code: domain.CodeBMI})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = repo.CreateScoreWeight(ctx, &domain.ScoreWeight{BiomarkerID: "missing", Weight: 0.1})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryTaxonomyRepo_ListAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaxonomyRepo()

	wellness := &domain.BiomarkerCategory{Name: domain.CategoryWellness}
	blood := &domain.BiomarkerCategory{Name: domain.CategoryBlood}
	require.NoError(t, repo.CreateCategory(ctx, wellness))
	require.NoError(t, repo.CreateCategory(ctx, blood))

	require.NoError(t, repo.CreateBiomarker(ctx, &domain.BiomarkerDefinition{CategoryID: wellness.CategoryID, Code: domain.CodeSTEPS}))
	require.NoError(t, repo.CreateBiomarker(ctx, &domain.BiomarkerDefinition{CategoryID: blood.CategoryID, Code: domain.CodeHDL}))
	require.NoError(t, repo.CreateBiomarker(ctx, &domain.BiomarkerDefinition{CategoryID: blood.CategoryID, Code: domain.CodeGLUC}))

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, domain.CategoryBlood, cats[0].Name)

	all, err := repo.ListBiomarkers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.CodeGLUC, all[0].Code)

	bloodOnly, err := repo.ListBiomarkersByCategory(ctx, blood.CategoryID)
	require.NoError(t, err)
	assert.Len(t, bloodOnly, 2)

	got, err := repo.GetBiomarkerByCode(ctx, domain.CodeSTEPS)
	require.NoError(t, err)
	assert.Equal(t, wellness.CategoryID, got.CategoryID)

	_, err = repo.GetCategoryByName(ctx, "Mental")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryTaxonomyRepo_WithinTxRestoresOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaxonomyRepo()

	boom := errors.New("boom")
	err := repo.WithinTx(ctx, func(tx TaxonomyRepository) error {
		if err := tx.CreateCategory(ctx, &domain.BiomarkerCategory{Name: domain.CategoryPhysical}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	n, err := repo.CountCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, repo.WithinTx(ctx, func(tx TaxonomyRepository) error {
		return tx.CreateCategory(ctx, &domain.BiomarkerCategory{Name: domain.CategoryPhysical})
	}))
	n, _ = repo.CountCategories(ctx)
	assert.Equal(t, 1, n)
}
