package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"healthindex/internal/domain"
)

func healthIndexKey(profileID string) string {
	return fmt.Sprintf("healthindex:index:%s", profileID)
}

// HealthIndexStore 外部提供的健康指数存储（不计算，只保存）
type HealthIndexStore struct {
	kv KVStore
}

func NewHealthIndexStore(kv KVStore) *HealthIndexStore {
	return &HealthIndexStore{kv: kv}
}

// Put 校验后保存，不过期
func (s *HealthIndexStore) Put(ctx context.Context, idx *domain.HealthIndex) error {
	if idx.ProfileID == "" {
		return domain.ErrMissingProfile
	}
	if err := idx.Validate(); err != nil {
		return err
	}
	jsonData, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to marshal health index: %w", err)
	}
	return s.kv.Set(ctx, healthIndexKey(idx.ProfileID), string(jsonData), 0)
}

// Get 读取；不存在时返回 ErrCacheMiss
func (s *HealthIndexStore) Get(ctx context.Context, profileID string) (*domain.HealthIndex, error) {
	raw, err := s.kv.Get(ctx, healthIndexKey(profileID))
	if err != nil {
		return nil, err
	}
	var idx domain.HealthIndex
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		return nil, fmt.Errorf("failed to decode health index for %s: %w", profileID, err)
	}
	return &idx, nil
}
