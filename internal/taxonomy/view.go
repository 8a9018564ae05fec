package taxonomy

import (
	"context"
	"fmt"
	"time"

	"healthindex/internal/domain"
	"healthindex/internal/repository"
)

// BiomarkerView 定义 + 权重
type BiomarkerView struct {
	domain.BiomarkerDefinition
	Weight float64 `json:"weight"`
}

// CategoryView 分类及其拥有的生物标志物
type CategoryView struct {
	domain.BiomarkerCategory
	Biomarkers []BiomarkerView `json:"biomarkers"`
}

// View 完整目录视图（用于 API 返回和 Redis 缓存）
type View struct {
	Categories  []CategoryView       `json:"categories"`
	DataSources []*domain.DataSource `json:"data_sources"`
	TotalWeight float64              `json:"total_weight"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// BuildView 从 repository 组装完整视图
// 没有存储权重的定义不出现在 TotalWeight 中，Weight 为 0
func BuildView(ctx context.Context, repo repository.TaxonomyRepository) (*View, error) {
	categories, err := repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	biomarkers, err := repo.ListBiomarkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list biomarkers: %w", err)
	}
	weights, err := repo.ListScoreWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list score weights: %w", err)
	}
	sources, err := repo.ListDataSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}

	weightByBiomarker := make(map[string]float64, len(weights))
	for _, w := range weights {
		weightByBiomarker[w.BiomarkerID] = w.Weight
	}

	byCategory := make(map[string][]BiomarkerView, len(categories))
	for _, b := range biomarkers {
		byCategory[b.CategoryID] = append(byCategory[b.CategoryID], BiomarkerView{
			BiomarkerDefinition: *b,
			Weight:              weightByBiomarker[b.BiomarkerID],
		})
	}

	view := &View{
		Categories:  make([]CategoryView, 0, len(categories)),
		DataSources: sources,
		TotalWeight: TotalWeight(weights),
		GeneratedAt: time.Now().UTC(),
	}
	if view.DataSources == nil {
		view.DataSources = []*domain.DataSource{}
	}
	for _, c := range categories {
		owned := byCategory[c.CategoryID]
		if owned == nil {
			owned = []BiomarkerView{}
		}
		view.Categories = append(view.Categories, CategoryView{
			BiomarkerCategory: *c,
			Biomarkers:        owned,
		})
	}
	return view, nil
}

// Category 按名称查找分类视图
func (v *View) Category(name domain.CategoryName) (*CategoryView, bool) {
	for i := range v.Categories {
		if v.Categories[i].Name == name {
			return &v.Categories[i], true
		}
	}
	return nil, false
}
