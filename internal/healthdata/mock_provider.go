package healthdata

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

type valueRange struct {
	min, max float64
}

var mockRanges = map[Quantity]valueRange{
	QuantitySteps:        {min: 6000, max: 12000},
	QuantityHeartRate:    {min: 60, max: 85},
	QuantityActiveEnergy: {min: 250, max: 450},
}

// MockProvider 模拟数据源：延迟后返回范围内的随机值
type MockProvider struct {
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockProvider 创建模拟数据源
func NewMockProvider(delay time.Duration, seed int64) *MockProvider {
	return &MockProvider{
		delay: delay,
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

// DailySum 返回 [min, max) 区间内的连续随机值
func (p *MockProvider) DailySum(ctx context.Context, q Quantity) (float64, error) {
	r, ok := mockRanges[q]
	if !ok {
		return 0, fmt.Errorf("unknown health quantity: %q", q)
	}

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	f := p.rnd.Float64()
	p.mu.Unlock()
	return r.min + f*(r.max-r.min), nil
}
