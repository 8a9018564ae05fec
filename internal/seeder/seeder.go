package seeder

import (
	"context"
	"errors"
	"fmt"

	"healthindex/internal/domain"
	"healthindex/internal/repository"
	"healthindex/internal/taxonomy"

	"go.uber.org/zap"
)

// ErrCategoryNotFound 目录中的生物标志物引用了不存在的分类（配置错误，服务无法继续）
var ErrCategoryNotFound = errors.New("biomarker category not found")

// EventTypeSeeded 种子完成事件类型
const EventTypeSeeded = "taxonomy.seeded"

// EventPublisher 种子完成事件发布接口（Redis Streams）
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// SeedResult 种子执行结果
type SeedResult struct {
	Seeded      bool    `json:"seeded"`
	Categories  int     `json:"categories"`
	DataSources int     `json:"data_sources"`
	Biomarkers  int     `json:"biomarkers"`
	Weights     int     `json:"weights"`
	TotalWeight float64 `json:"total_weight"`
}

// Seeder 目录种子
type Seeder struct {
	repo      repository.TaxonomyRepository
	catalog   *taxonomy.Catalog
	publisher EventPublisher
	logger    *zap.Logger
}

// NewSeeder 创建种子（publisher 可为 nil）
func NewSeeder(repo repository.TaxonomyRepository, catalog *taxonomy.Catalog, publisher EventPublisher, logger *zap.Logger) *Seeder {
	return &Seeder{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
	}
}

// SeedIfNeeded 分类表为空时写入完整目录（一个事务内完成）
// 已有分类时不做任何写入，返回 Seeded=false
func (s *Seeder) SeedIfNeeded(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	err := s.repo.WithinTx(ctx, func(tx repository.TaxonomyRepository) error {
		count, err := tx.CountCategories(ctx)
		if err != nil {
			return fmt.Errorf("failed to probe existing categories: %w", err)
		}
		if count > 0 {
			s.logger.Debug("Taxonomy already seeded, skipping", zap.Int("category_count", count))
			return nil
		}

		if err := s.seedCategories(ctx, tx, result); err != nil {
			return err
		}
		if err := s.seedDataSources(ctx, tx, result); err != nil {
			return err
		}
		if err := s.seedBiomarkers(ctx, tx, result); err != nil {
			return err
		}
		if err := s.seedScoreWeights(ctx, tx, result); err != nil {
			return err
		}
		result.Seeded = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Seeded {
		return result, nil
	}

	s.logger.Info("Initial taxonomy seeding complete",
		zap.Int("categories", result.Categories),
		zap.Int("data_sources", result.DataSources),
		zap.Int("biomarkers", result.Biomarkers),
		zap.Int("weights", result.Weights),
	)
	if !taxonomy.SumIsUnit(result.TotalWeight) {
		s.logger.Warn("Score weights do not sum to 1",
			zap.Float64("total_weight", result.TotalWeight),
		)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, EventTypeSeeded, result); err != nil {
			s.logger.Warn("Failed to publish taxonomy seeded event", zap.Error(err))
		}
	}
	return result, nil
}

func (s *Seeder) seedCategories(ctx context.Context, tx repository.TaxonomyRepository, result *SeedResult) error {
	for _, spec := range s.catalog.Categories {
		c := &domain.BiomarkerCategory{
			Name:        spec.Name,
			Description: spec.Description,
		}
		if err := tx.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", spec.Name, err)
		}
		result.Categories++
	}
	return nil
}

func (s *Seeder) seedDataSources(ctx context.Context, tx repository.TaxonomyRepository, result *SeedResult) error {
	for _, spec := range s.catalog.DataSources {
		src := &domain.DataSource{
			Name:         spec.Name,
			Organization: spec.Organization,
			Description:  spec.Description,
		}
		if err := tx.CreateDataSource(ctx, src); err != nil {
			return fmt.Errorf("failed to seed data source %s: %w", spec.Name, err)
		}
		result.DataSources++
	}
	return nil
}

// seedBiomarkers 按分类名称查找分类后写入定义
func (s *Seeder) seedBiomarkers(ctx context.Context, tx repository.TaxonomyRepository, result *SeedResult) error {
	categoryIDs := make(map[domain.CategoryName]string)

	for _, spec := range s.catalog.Biomarkers {
		categoryID, ok := categoryIDs[spec.Category]
		if !ok {
			category, err := tx.GetCategoryByName(ctx, spec.Category)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: %q (referenced by biomarker %s)", ErrCategoryNotFound, spec.Category, spec.Code)
				}
				return fmt.Errorf("failed to look up category %s: %w", spec.Category, err)
			}
			categoryID = category.CategoryID
			categoryIDs[spec.Category] = categoryID
		}

		b := &domain.BiomarkerDefinition{
			CategoryID:  categoryID,
			Code:        spec.Code,
			DisplayName: spec.DisplayName,
			Unit:        spec.Unit,
			IsDependent: spec.IsDependent,
			NormalRange: spec.NormalRange,
		}
		if err := tx.CreateBiomarker(ctx, b); err != nil {
			return fmt.Errorf("failed to seed biomarker %s: %w", spec.Code, err)
		}
		result.Biomarkers++
	}
	return nil
}

// seedScoreWeights 为当前存在的每个定义分配权重
func (s *Seeder) seedScoreWeights(ctx context.Context, tx repository.TaxonomyRepository, result *SeedResult) error {
	biomarkers, err := tx.ListBiomarkers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list biomarkers for weight assignment: %w", err)
	}

	for _, b := range biomarkers {
		w := &domain.ScoreWeight{
			BiomarkerID: b.BiomarkerID,
			Weight:      taxonomy.WeightForCode(b.Code),
		}
		if err := tx.CreateScoreWeight(ctx, w); err != nil {
			return fmt.Errorf("failed to seed weight for %s: %w", b.Code, err)
		}
		result.Weights++
		result.TotalWeight += w.Weight
	}
	return nil
}
