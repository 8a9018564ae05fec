package healthdata

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot 当天健康数据快照
type Snapshot struct {
	StepCount    float64   `json:"step_count"`
	HeartRate    float64   `json:"heart_rate"`
	ActiveEnergy float64   `json:"active_energy"`
	RefreshedAt  time.Time `json:"refreshed_at"`
}

// SnapshotPublisher 快照刷新后的推送目标
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snap Snapshot) error
}

// Collector 并发读取三项数据并维护最新快照
type Collector struct {
	provider  Provider
	publisher SnapshotPublisher
	logger    *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewCollector 创建采集器（publisher 可为 nil）
func NewCollector(provider Provider, publisher SnapshotPublisher, logger *zap.Logger) *Collector {
	return &Collector{
		provider:  provider,
		publisher: publisher,
		logger:    logger,
	}
}

// Refresh 三项读取相互独立，完成顺序不固定
// 单项失败只记录日志，该字段保留上一次成功的值（初始为 0）
// ctx 已取消时不更新快照也不推送
func (c *Collector) Refresh(ctx context.Context) Snapshot {
	next := c.Snapshot()
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	for _, q := range Quantities {
		q := q
		eg.Go(func() error {
			v, err := c.provider.DailySum(egCtx, q)
			if err != nil {
				c.logger.Warn("Failed to fetch health quantity",
					zap.String("quantity", string(q)),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			next.set(q, v)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	if ctx.Err() != nil {
		c.logger.Debug("Health refresh cancelled, keeping previous snapshot")
		return c.Snapshot()
	}

	next.RefreshedAt = time.Now().UTC()

	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	c.logger.Debug("Health snapshot refreshed",
		zap.Float64("steps", next.StepCount),
		zap.Float64("heart_rate", next.HeartRate),
		zap.Float64("active_energy", next.ActiveEnergy),
	)

	if c.publisher != nil {
		if err := c.publisher.PublishSnapshot(ctx, next); err != nil {
			c.logger.Warn("Failed to publish health snapshot", zap.Error(err))
		}
	}
	return next
}

// Snapshot 返回最新快照的拷贝
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Run 立即刷新一次，之后按 interval 周期刷新，直到 ctx 取消
// interval<=0 时只刷新一次
func (c *Collector) Run(ctx context.Context, interval time.Duration) {
	c.Refresh(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Health collector stopped")
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

func (s *Snapshot) set(q Quantity, v float64) {
	switch q {
	case QuantitySteps:
		s.StepCount = v
	case QuantityHeartRate:
		s.HeartRate = v
	case QuantityActiveEnergy:
		s.ActiveEnergy = v
	}
}
