package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthindex/internal/taxonomy"

	"go.uber.org/zap"
)

// TaxonomyKey 完整目录视图的缓存 key
const TaxonomyKey = "healthindex:taxonomy:full"

// TaxonomyCache 目录视图缓存
type TaxonomyCache struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewTaxonomyCache 创建目录缓存（ttl<=0 表示不过期）
func NewTaxonomyCache(kv KVStore, ttl time.Duration, logger *zap.Logger) *TaxonomyCache {
	return &TaxonomyCache{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

// Get 读取缓存视图，不存在时返回 ErrCacheMiss
func (c *TaxonomyCache) Get(ctx context.Context) (*taxonomy.View, error) {
	raw, err := c.kv.Get(ctx, TaxonomyKey)
	if err != nil {
		return nil, err
	}

	var view taxonomy.View
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		// 损坏的缓存按未命中处理
		c.logger.Warn("Discarding undecodable taxonomy cache entry", zap.Error(err))
		_ = c.kv.Del(ctx, TaxonomyKey)
		return nil, ErrCacheMiss
	}
	return &view, nil
}

// Put 写入视图
func (c *TaxonomyCache) Put(ctx context.Context, view *taxonomy.View) error {
	jsonData, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal taxonomy view: %w", err)
	}
	if err := c.kv.Set(ctx, TaxonomyKey, string(jsonData), c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated taxonomy cache",
		zap.String("key", TaxonomyKey),
		zap.Int("categories", len(view.Categories)),
	)
	return nil
}

// Invalidate 删除缓存
func (c *TaxonomyCache) Invalidate(ctx context.Context) error {
	return c.kv.Del(ctx, TaxonomyKey)
}

// GetOrBuild 命中直接返回；未命中调用 build 并回填
// 回填失败只记录日志
func (c *TaxonomyCache) GetOrBuild(ctx context.Context, build func(ctx context.Context) (*taxonomy.View, error)) (*taxonomy.View, error) {
	view, err := c.Get(ctx)
	if err == nil {
		return view, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("Taxonomy cache read failed, falling back to repository", zap.Error(err))
	}

	view, err = build(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, view); err != nil {
		c.logger.Warn("Failed to refill taxonomy cache", zap.Error(err))
	}
	return view, nil
}
