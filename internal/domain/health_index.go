package domain

import (
	"errors"
	"time"
)

// ErrInvalidScore 健康指数超出 0-100
var ErrInvalidScore = errors.New("health index score must be within 0..100")

// ErrMissingProfile 保存健康指数时缺少 profile_id
var ErrMissingProfile = errors.New("health index profile_id is required")

// HealthIndex 外部提供的健康指数
// 当前没有评分算法：Score 由调用方给出，服务只负责校验和保存
type HealthIndex struct {
	ProfileID string    `json:"profile_id"`
	Score     int       `json:"score"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate 校验分数范围
func (h *HealthIndex) Validate() error {
	if h.Score < 0 || h.Score > 100 {
		return ErrInvalidScore
	}
	return nil
}
