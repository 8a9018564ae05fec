package service

import (
	"context"

	"healthindex/internal/cache"
	"healthindex/internal/repository"
	"healthindex/internal/taxonomy"

	"go.uber.org/zap"
)

// TaxonomyService 目录读取：缓存优先，未命中时从 repository 组装并回填
type TaxonomyService struct {
	repo   repository.TaxonomyRepository
	cache  *cache.TaxonomyCache
	logger *zap.Logger
}

func NewTaxonomyService(repo repository.TaxonomyRepository, c *cache.TaxonomyCache, logger *zap.Logger) *TaxonomyService {
	return &TaxonomyService{repo: repo, cache: c, logger: logger}
}

// View 完整目录视图
func (s *TaxonomyService) View(ctx context.Context) (*taxonomy.View, error) {
	return s.cache.GetOrBuild(ctx, s.build)
}

// Warm 重新组装并写入缓存（种子完成后调用）
func (s *TaxonomyService) Warm(ctx context.Context) error {
	view, err := s.build(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.Put(ctx, view); err != nil {
		return err
	}
	s.logger.Info("Taxonomy cache warmed",
		zap.Int("categories", len(view.Categories)),
		zap.Int("data_sources", len(view.DataSources)),
		zap.Float64("total_weight", view.TotalWeight),
	)
	return nil
}

func (s *TaxonomyService) build(ctx context.Context) (*taxonomy.View, error) {
	return taxonomy.BuildView(ctx, s.repo)
}
