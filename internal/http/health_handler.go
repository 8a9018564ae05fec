package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"healthindex/internal/cache"
	"healthindex/internal/display"
	"healthindex/internal/domain"
	"healthindex/internal/healthdata"

	"go.uber.org/zap"
)

// maxScore 健康指数满分
const maxScore = 100

// SnapshotSource 最新健康数据快照
type SnapshotSource interface {
	Snapshot() healthdata.Snapshot
}

// HealthIndexStore 外部健康指数存取
type HealthIndexStore interface {
	Get(ctx context.Context, profileID string) (*domain.HealthIndex, error)
	Put(ctx context.Context, idx *domain.HealthIndex) error
}

// SnapshotDisplay 展示字符串
type SnapshotDisplay struct {
	HeartRate    string `json:"heart_rate"`
	Steps        string `json:"steps"`
	ActiveEnergy string `json:"active_energy"`
	HealthScore  string `json:"health_score,omitempty"`
}

// SnapshotResponse GET /api/v1/health/snapshot 返回
type SnapshotResponse struct {
	Snapshot    healthdata.Snapshot `json:"snapshot"`
	HealthIndex *domain.HealthIndex `json:"health_index,omitempty"`
	Display     SnapshotDisplay     `json:"display"`
}

// putIndexRequest PUT /api/v1/health/index 请求体
type putIndexRequest struct {
	ProfileID string `json:"profile_id"`
	Score     *int   `json:"score"`
	Source    string `json:"source"`
}

type HealthHandler struct {
	snapshots SnapshotSource
	indexes   HealthIndexStore
	logger    *zap.Logger
}

func NewHealthHandler(snapshots SnapshotSource, indexes HealthIndexStore, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{snapshots: snapshots, indexes: indexes, logger: logger}
}

// GetSnapshot GET /api/v1/health/snapshot?profile_id=
// profile_id 可选；有保存的健康指数时一并返回
func (h *HealthHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshots.Snapshot()
	resp := SnapshotResponse{
		Snapshot: snap,
		Display: SnapshotDisplay{
			HeartRate:    display.HeartRate(snap.HeartRate),
			Steps:        display.Steps(snap.StepCount),
			ActiveEnergy: display.ActiveEnergy(snap.ActiveEnergy),
		},
	}

	if profileID := r.URL.Query().Get("profile_id"); profileID != "" {
		idx, err := h.indexes.Get(r.Context(), profileID)
		switch {
		case err == nil:
			resp.HealthIndex = idx
			resp.Display.HealthScore = display.Score(idx.Score, maxScore)
		case errors.Is(err, cache.ErrCacheMiss):
			// 尚未设置
		default:
			h.logger.Warn("Failed to read health index",
				zap.String("profile_id", profileID),
				zap.Error(err),
			)
		}
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// GetIndex GET /api/v1/health/index?profile_id=
func (h *HealthHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profile_id")
	if profileID == "" {
		writeJSON(w, http.StatusOK, Fail("profile_id is required"))
		return
	}

	idx, err := h.indexes.Get(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			writeJSON(w, http.StatusOK, Fail("health index not found"))
			return
		}
		h.logger.Error("Failed to read health index", zap.String("profile_id", profileID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to read health index"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(idx))
}

// PutIndex PUT /api/v1/health/index
// 分数由外部给出，这里只校验并保存
func (h *HealthHandler) PutIndex(w http.ResponseWriter, r *http.Request) {
	var req putIndexRequest
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if req.Score == nil {
		writeJSON(w, http.StatusOK, Fail("score is required"))
		return
	}

	idx := &domain.HealthIndex{
		ProfileID: req.ProfileID,
		Score:     *req.Score,
		Source:    req.Source,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.indexes.Put(r.Context(), idx); err != nil {
		if errors.Is(err, domain.ErrInvalidScore) || errors.Is(err, domain.ErrMissingProfile) {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		h.logger.Error("Failed to store health index", zap.String("profile_id", req.ProfileID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to store health index"))
		return
	}

	h.logger.Info("Health index updated",
		zap.String("profile_id", idx.ProfileID),
		zap.Int("score", idx.Score),
	)
	writeJSON(w, http.StatusOK, Ok(idx))
}
