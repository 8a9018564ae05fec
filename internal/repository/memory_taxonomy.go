package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"healthindex/internal/domain"

	"github.com/google/uuid"
)

// MemoryTaxonomyRepo: DB 未启用或连接失败时使用的内存实现
// - 与 PostgreSQL 实现相同的唯一约束（名称、编码、一对一权重）
// - WithinTx 失败时恢复到事务开始前的快照
type MemoryTaxonomyRepo struct {
	txMu sync.Mutex // 串行化事务
	mu   sync.RWMutex

	categories map[string]domain.BiomarkerCategory   // categoryID -> category
	biomarkers map[string]domain.BiomarkerDefinition // biomarkerID -> definition
	weights    map[string]domain.ScoreWeight         // weightID -> weight
	sources    map[string]domain.DataSource          // sourceID -> source
}

func NewMemoryTaxonomyRepo() *MemoryTaxonomyRepo {
	return &MemoryTaxonomyRepo{
		categories: map[string]domain.BiomarkerCategory{},
		biomarkers: map[string]domain.BiomarkerDefinition{},
		weights:    map[string]domain.ScoreWeight{},
		sources:    map[string]domain.DataSource{},
	}
}

var _ TaxonomyRepository = (*MemoryTaxonomyRepo)(nil)

type memorySnapshot struct {
	categories map[string]domain.BiomarkerCategory
	biomarkers map[string]domain.BiomarkerDefinition
	weights    map[string]domain.ScoreWeight
	sources    map[string]domain.DataSource
}

func (r *MemoryTaxonomyRepo) snapshot() memorySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return memorySnapshot{
		categories: copyMap(r.categories),
		biomarkers: copyMap(r.biomarkers),
		weights:    copyMap(r.weights),
		sources:    copyMap(r.sources),
	}
}

func (r *MemoryTaxonomyRepo) restore(s memorySnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = s.categories
	r.biomarkers = s.biomarkers
	r.weights = s.weights
	r.sources = s.sources
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *MemoryTaxonomyRepo) WithinTx(ctx context.Context, fn func(repo TaxonomyRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snap := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *MemoryTaxonomyRepo) CountCategories(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.categories), nil
}

func (r *MemoryTaxonomyRepo) CreateCategory(_ context.Context, c *domain.BiomarkerCategory) error {
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("category %s: %w", c.Name, ErrDuplicate)
		}
	}
	if c.CategoryID == "" {
		c.CategoryID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.categories[c.CategoryID] = *c
	return nil
}

func (r *MemoryTaxonomyRepo) GetCategoryByName(_ context.Context, name domain.CategoryName) (*domain.BiomarkerCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Name == name {
			out := c
			return &out, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
}

func (r *MemoryTaxonomyRepo) ListCategories(_ context.Context) ([]*domain.BiomarkerCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.BiomarkerCategory, 0, len(r.categories))
	for _, c := range r.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryTaxonomyRepo) CreateBiomarker(_ context.Context, b *domain.BiomarkerDefinition) error {
	if err := b.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[b.CategoryID]; !ok {
		return fmt.Errorf("biomarker %s references missing category %s: %w", b.Code, b.CategoryID, ErrNotFound)
	}
	for _, existing := range r.biomarkers {
		if existing.Code == b.Code {
			return fmt.Errorf("biomarker %s: %w", b.Code, ErrDuplicate)
		}
	}
	if b.BiomarkerID == "" {
		b.BiomarkerID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	r.biomarkers[b.BiomarkerID] = *b
	return nil
}

func (r *MemoryTaxonomyRepo) GetBiomarkerByCode(_ context.Context, code domain.BiomarkerCode) (*domain.BiomarkerDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.biomarkers {
		if b.Code == code {
			out := b
			return &out, nil
		}
	}
	return nil, fmt.Errorf("biomarker %q: %w", code, ErrNotFound)
}

func (r *MemoryTaxonomyRepo) ListBiomarkers(_ context.Context) ([]*domain.BiomarkerDefinition, error) {
	return r.filterBiomarkers(func(domain.BiomarkerDefinition) bool { return true }), nil
}

func (r *MemoryTaxonomyRepo) ListBiomarkersByCategory(_ context.Context, categoryID string) ([]*domain.BiomarkerDefinition, error) {
	return r.filterBiomarkers(func(b domain.BiomarkerDefinition) bool { return b.CategoryID == categoryID }), nil
}

func (r *MemoryTaxonomyRepo) filterBiomarkers(keep func(domain.BiomarkerDefinition) bool) []*domain.BiomarkerDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.BiomarkerDefinition, 0, len(r.biomarkers))
	for _, b := range r.biomarkers {
		if !keep(b) {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (r *MemoryTaxonomyRepo) CreateScoreWeight(_ context.Context, w *domain.ScoreWeight) error {
	if err := w.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.biomarkers[w.BiomarkerID]; !ok {
		return fmt.Errorf("score weight references missing biomarker %s: %w", w.BiomarkerID, ErrNotFound)
	}
	for _, existing := range r.weights {
		if existing.BiomarkerID == w.BiomarkerID {
			return fmt.Errorf("score weight for biomarker %s: %w", w.BiomarkerID, ErrDuplicate)
		}
	}
	if w.WeightID == "" {
		w.WeightID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	r.weights[w.WeightID] = *w
	return nil
}

func (r *MemoryTaxonomyRepo) ListScoreWeights(_ context.Context) ([]*domain.ScoreWeight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ScoreWeight, 0, len(r.weights))
	for _, w := range r.weights {
		w := w
		out = append(out, &w)
	}
	// 与 PostgreSQL 实现一致：按定义编码排序
	sort.Slice(out, func(i, j int) bool {
		return r.biomarkers[out[i].BiomarkerID].Code < r.biomarkers[out[j].BiomarkerID].Code
	})
	return out, nil
}

func (r *MemoryTaxonomyRepo) CreateDataSource(_ context.Context, s *domain.DataSource) error {
	if s.Name == "" {
		return fmt.Errorf("data source name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sources {
		if existing.Name == s.Name {
			return fmt.Errorf("data source %s: %w", s.Name, ErrDuplicate)
		}
	}
	if s.SourceID == "" {
		s.SourceID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.sources[s.SourceID] = *s
	return nil
}

func (r *MemoryTaxonomyRepo) ListDataSources(_ context.Context) ([]*domain.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.DataSource, 0, len(r.sources))
	for _, s := range r.sources {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
