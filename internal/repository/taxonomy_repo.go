package repository

import (
	"context"
	"errors"

	"healthindex/internal/domain"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束（分类名称、编码、数据来源名称、一对一权重）
	ErrDuplicate = errors.New("duplicate record")
)

// TaxonomyRepository 生物标志物目录 Repository 接口
type TaxonomyRepository interface {
	// CountCategories 分类数量（种子存在性探测）
	CountCategories(ctx context.Context) (int, error)

	CreateCategory(ctx context.Context, category *domain.BiomarkerCategory) error
	// GetCategoryByName 按名称查找分类，不存在返回 ErrNotFound
	GetCategoryByName(ctx context.Context, name domain.CategoryName) (*domain.BiomarkerCategory, error)
	ListCategories(ctx context.Context) ([]*domain.BiomarkerCategory, error)

	CreateBiomarker(ctx context.Context, biomarker *domain.BiomarkerDefinition) error
	GetBiomarkerByCode(ctx context.Context, code domain.BiomarkerCode) (*domain.BiomarkerDefinition, error)
	ListBiomarkers(ctx context.Context) ([]*domain.BiomarkerDefinition, error)
	ListBiomarkersByCategory(ctx context.Context, categoryID string) ([]*domain.BiomarkerDefinition, error)

	CreateScoreWeight(ctx context.Context, weight *domain.ScoreWeight) error
	ListScoreWeights(ctx context.Context) ([]*domain.ScoreWeight, error)

	CreateDataSource(ctx context.Context, source *domain.DataSource) error
	ListDataSources(ctx context.Context) ([]*domain.DataSource, error)

	// WithinTx 在事务中执行 fn；fn 返回错误时全部回滚
	WithinTx(ctx context.Context, fn func(repo TaxonomyRepository) error) error
}
