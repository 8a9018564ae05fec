package taxonomy_test

import (
	"context"
	"testing"

	"healthindex/internal/domain"
	"healthindex/internal/repository"
	"healthindex/internal/seeder"
	"healthindex/internal/taxonomy"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
)

type bioRow struct {
	Code   domain.BiomarkerCode
	Unit   string
	Range  domain.NormalRange
	Weight float64
}

func TestBuildView_GroupsBiomarkersByCategory(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTaxonomyRepo()
	cat, err := taxonomy.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	if _, err := seeder.NewSeeder(repo, cat, nil, zap.NewNop()).SeedIfNeeded(ctx); err != nil {
		t.Fatalf("SeedIfNeeded: %v", err)
	}

	view, err := taxonomy.BuildView(ctx, repo)
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}

	got := map[domain.CategoryName][]bioRow{}
	for _, c := range view.Categories {
		for _, b := range c.Biomarkers {
			got[c.Name] = append(got[c.Name], bioRow{Code: b.Code, Unit: b.Unit, Range: b.NormalRange, Weight: b.Weight})
		}
	}

	want := map[domain.CategoryName][]bioRow{
		domain.CategoryPhysical: {
			{domain.CodeBMI, "kg/m²", domain.NormalRange{Min: 18.5, Max: 24.9}, 0.15},
			{domain.CodeRHR, "bpm", domain.NormalRange{Min: 60, Max: 100}, 0.10},
			{domain.CodeWHR, "ratio", domain.NormalRange{Min: 0.8, Max: 0.9}, 0.10},
		},
		domain.CategoryBlood: {
			{domain.CodeGLUC, "mg/dL", domain.NormalRange{Min: 70, Max: 100}, 0.15},
			{domain.CodeHDL, "mg/dL", domain.NormalRange{Min: 40, Max: 60}, 0.15},
		},
		domain.CategoryWellness: {
			{domain.CodeACTIVE, "kcal", domain.NormalRange{Min: 300, Max: 600}, 0.20},
			{domain.CodeDIET, "score", domain.NormalRange{Min: 0, Max: 100}, 0.10},
			{domain.CodeSTEPS, "count", domain.NormalRange{Min: 7000, Max: 10000}, 0.20},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}

	var sourceNames []string
	for _, s := range view.DataSources {
		sourceNames = append(sourceNames, s.Name)
	}
	wantSources := []string{"appleWatch", "checkup", "lab", "userInput"}
	if diff := cmp.Diff(wantSources, sourceNames, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("data sources mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildView_EmptyRepository(t *testing.T) {
	view, err := taxonomy.BuildView(context.Background(), repository.NewMemoryTaxonomyRepo())
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	if len(view.Categories) != 0 || len(view.DataSources) != 0 || view.TotalWeight != 0 {
		t.Errorf("expected empty view, got %+v", view)
	}
	if _, ok := view.Category(domain.CategoryBlood); ok {
		t.Errorf("expected no Blood category")
	}
}
