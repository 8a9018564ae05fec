package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"healthindex/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// dbtx *sql.DB 和 *sql.Tx 的公共子集
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresTaxonomyRepository 目录 Repository 的 PostgreSQL 实现
type PostgresTaxonomyRepository struct {
	db     *sql.DB
	q      dbtx
	inTx   bool
	logger *zap.Logger
}

// NewPostgresTaxonomyRepository 创建目录 Repository
func NewPostgresTaxonomyRepository(db *sql.DB, logger *zap.Logger) *PostgresTaxonomyRepository {
	return &PostgresTaxonomyRepository{
		db:     db,
		q:      db,
		logger: logger,
	}
}

// 确保实现了接口
var _ TaxonomyRepository = (*PostgresTaxonomyRepository)(nil)

// EnsureSchema 创建目录表（幂等）
func (r *PostgresTaxonomyRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.ExecContext(ctx, taxonomySchema); err != nil {
		return fmt.Errorf("failed to ensure taxonomy schema: %w", err)
	}
	return nil
}

// taxonomyLockKey 目录事务使用的 advisory lock 键
const taxonomyLockKey int64 = 0x6869_7478 // "hitx"

// WithinTx 在事务中执行 fn（嵌套调用复用外层事务）
// 事务开始后先取 advisory lock，多实例并发写目录时串行执行
func (r *PostgresTaxonomyRepository) WithinTx(ctx context.Context, fn func(repo TaxonomyRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, taxonomyLockKey); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to rollback taxonomy transaction", zap.Error(rbErr))
		}
		return fmt.Errorf("failed to acquire taxonomy lock: %w", err)
	}

	txRepo := &PostgresTaxonomyRepository{db: r.db, q: tx, inTx: true, logger: r.logger}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to rollback taxonomy transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountCategories 分类数量
func (r *PostgresTaxonomyRepository) CountCategories(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM biomarker_categories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

// CreateCategory 创建分类（CategoryID/CreatedAt 为空时自动生成）
func (r *PostgresTaxonomyRepository) CreateCategory(ctx context.Context, category *domain.BiomarkerCategory) error {
	if category.Name == "" {
		return fmt.Errorf("category name is required")
	}
	if category.CategoryID == "" {
		category.CategoryID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO biomarker_categories (category_id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.q.ExecContext(ctx, query,
		category.CategoryID,
		string(category.Name),
		category.Description,
		category.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("category %s", category.Name))
	}
	return nil
}

// GetCategoryByName 按名称查找分类
func (r *PostgresTaxonomyRepository) GetCategoryByName(ctx context.Context, name domain.CategoryName) (*domain.BiomarkerCategory, error) {
	query := `
		SELECT category_id::text, name, description, created_at
		FROM biomarker_categories
		WHERE name = $1
	`

	var c domain.BiomarkerCategory
	var catName string
	err := r.q.QueryRowContext(ctx, query, string(name)).Scan(
		&c.CategoryID,
		&catName,
		&c.Description,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	c.Name = domain.CategoryName(catName)
	return &c, nil
}

// ListCategories 列出全部分类（按名称排序）
func (r *PostgresTaxonomyRepository) ListCategories(ctx context.Context) ([]*domain.BiomarkerCategory, error) {
	query := `
		SELECT category_id::text, name, description, created_at
		FROM biomarker_categories
		ORDER BY name
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []*domain.BiomarkerCategory
	for rows.Next() {
		var c domain.BiomarkerCategory
		var name string
		if err := rows.Scan(&c.CategoryID, &name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Name = domain.CategoryName(name)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return out, nil
}

// CreateBiomarker 创建生物标志物定义
func (r *PostgresTaxonomyRepository) CreateBiomarker(ctx context.Context, b *domain.BiomarkerDefinition) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.BiomarkerID == "" {
		b.BiomarkerID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO biomarker_definitions (
			biomarker_id, category_id, code, display_name, unit,
			is_dependent, normal_range_min, normal_range_max, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		b.BiomarkerID,
		b.CategoryID,
		string(b.Code),
		b.DisplayName,
		b.Unit,
		b.IsDependent,
		b.NormalRange.Min,
		b.NormalRange.Max,
		b.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("biomarker %s", b.Code))
	}
	return nil
}

const biomarkerColumns = `
	biomarker_id::text, category_id::text, code, display_name, unit,
	is_dependent, normal_range_min, normal_range_max, created_at
`

// GetBiomarkerByCode 按编码查找定义
func (r *PostgresTaxonomyRepository) GetBiomarkerByCode(ctx context.Context, code domain.BiomarkerCode) (*domain.BiomarkerDefinition, error) {
	query := `SELECT ` + biomarkerColumns + ` FROM biomarker_definitions WHERE code = $1`

	b, err := scanBiomarker(r.q.QueryRowContext(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("biomarker %q: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get biomarker: %w", err)
	}
	return b, nil
}

// ListBiomarkers 列出全部定义（按编码排序）
func (r *PostgresTaxonomyRepository) ListBiomarkers(ctx context.Context) ([]*domain.BiomarkerDefinition, error) {
	query := `SELECT ` + biomarkerColumns + ` FROM biomarker_definitions ORDER BY code`
	return r.queryBiomarkers(ctx, query)
}

// ListBiomarkersByCategory 列出某分类下的定义
func (r *PostgresTaxonomyRepository) ListBiomarkersByCategory(ctx context.Context, categoryID string) ([]*domain.BiomarkerDefinition, error) {
	query := `SELECT ` + biomarkerColumns + ` FROM biomarker_definitions WHERE category_id = $1 ORDER BY code`
	return r.queryBiomarkers(ctx, query, categoryID)
}

func (r *PostgresTaxonomyRepository) queryBiomarkers(ctx context.Context, query string, args ...any) ([]*domain.BiomarkerDefinition, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query biomarkers: %w", err)
	}
	defer rows.Close()

	var out []*domain.BiomarkerDefinition
	for rows.Next() {
		b, err := scanBiomarker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan biomarker: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate biomarkers: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBiomarker(row rowScanner) (*domain.BiomarkerDefinition, error) {
	var b domain.BiomarkerDefinition
	var code string
	if err := row.Scan(
		&b.BiomarkerID,
		&b.CategoryID,
		&code,
		&b.DisplayName,
		&b.Unit,
		&b.IsDependent,
		&b.NormalRange.Min,
		&b.NormalRange.Max,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.Code = domain.BiomarkerCode(code)
	return &b, nil
}

// CreateScoreWeight 创建权重（每个定义只能有一个）
func (r *PostgresTaxonomyRepository) CreateScoreWeight(ctx context.Context, w *domain.ScoreWeight) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.WeightID == "" {
		w.WeightID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO score_weights (weight_id, biomarker_id, weight, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.q.ExecContext(ctx, query, w.WeightID, w.BiomarkerID, w.Weight, w.CreatedAt); err != nil {
		return mapWriteError(err, fmt.Sprintf("score weight for biomarker %s", w.BiomarkerID))
	}
	return nil
}

// ListScoreWeights 列出全部权重
func (r *PostgresTaxonomyRepository) ListScoreWeights(ctx context.Context) ([]*domain.ScoreWeight, error) {
	query := `
		SELECT w.weight_id::text, w.biomarker_id::text, w.weight, w.created_at
		FROM score_weights w
		JOIN biomarker_definitions b ON b.biomarker_id = w.biomarker_id
		ORDER BY b.code
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query score weights: %w", err)
	}
	defer rows.Close()

	var out []*domain.ScoreWeight
	for rows.Next() {
		var w domain.ScoreWeight
		if err := rows.Scan(&w.WeightID, &w.BiomarkerID, &w.Weight, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score weight: %w", err)
		}
		out = append(out, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score weights: %w", err)
	}
	return out, nil
}

// CreateDataSource 创建数据来源
func (r *PostgresTaxonomyRepository) CreateDataSource(ctx context.Context, s *domain.DataSource) error {
	if s.Name == "" {
		return fmt.Errorf("data source name is required")
	}
	if s.SourceID == "" {
		s.SourceID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO data_sources (source_id, name, organization, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.q.ExecContext(ctx, query, s.SourceID, s.Name, s.Organization, s.Description, s.CreatedAt); err != nil {
		return mapWriteError(err, fmt.Sprintf("data source %s", s.Name))
	}
	return nil
}

// ListDataSources 列出全部数据来源（按名称排序）
func (r *PostgresTaxonomyRepository) ListDataSources(ctx context.Context) ([]*domain.DataSource, error) {
	query := `
		SELECT source_id::text, name, organization, description, created_at
		FROM data_sources
		ORDER BY name
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query data sources: %w", err)
	}
	defer rows.Close()

	var out []*domain.DataSource
	for rows.Next() {
		var s domain.DataSource
		if err := rows.Scan(&s.SourceID, &s.Name, &s.Organization, &s.Description, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan data source: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate data sources: %w", err)
	}
	return out, nil
}

// mapWriteError 唯一约束冲突映射为 ErrDuplicate
func mapWriteError(err error, what string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}
