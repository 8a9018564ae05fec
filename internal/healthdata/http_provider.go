package healthdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// dailySumResponse 上游返回；sum 为 null 表示当天没有样本
type dailySumResponse struct {
	Sum *float64 `json:"sum"`
}

// HTTPProvider 通过 HTTP 读取健康数据（失败不重试，由 Collector 记录后置 0）
type HTTPProvider struct {
	httpClient *resty.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewHTTPProvider 创建 HTTP 数据源
// rps<=0 表示不限速
func NewHTTPProvider(baseURL string, timeout time.Duration, rps float64, logger *zap.Logger) *HTTPProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &HTTPProvider{
		httpClient: client,
		limiter:    rate.NewLimiter(limit, len(Quantities)),
		logger:     logger,
	}
}

// DailySum GET /v1/quantities/{q}/daily-sum
func (p *HTTPProvider) DailySum(ctx context.Context, q Quantity) (float64, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait for %s: %w", q, err)
	}

	var body dailySumResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetPathParam("quantity", string(q)).
		SetResult(&body).
		Get("/v1/quantities/{quantity}/daily-sum")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", q, err)
	}
	if resp.IsError() {
		p.logger.Debug("Health provider returned error status",
			zap.String("quantity", string(q)),
			zap.Int("status_code", resp.StatusCode()),
		)
		return 0, fmt.Errorf("health provider error for %s: status %d", q, resp.StatusCode())
	}

	if body.Sum == nil {
		return 0, nil
	}
	return *body.Sum, nil
}
