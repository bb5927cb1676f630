package cache

import (
	"context"
	"errors"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const statusKeyPrefix = "inventory:status:"

// StatusCache stores derived inventory status snapshots. Cache errors are
// logged and reported as misses; the repository stays authoritative.
type StatusCache struct {
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatusCache(cache Cache, ttl time.Duration, logger *zap.Logger) *StatusCache {
	return &StatusCache{cache: cache, ttl: ttl, logger: logger}
}

func statusKey(id uuid.UUID) string {
	return statusKeyPrefix + id.String()
}

// Get returns the cached snapshot and whether it was found
func (s *StatusCache) Get(ctx context.Context, id uuid.UUID) (domain.StatusSnapshot, bool) {
	var snapshot domain.StatusSnapshot
	if err := GetJSON(ctx, s.cache, statusKey(id), &snapshot); err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Failed to read cached inventory status", zap.String("item_id", id.String()), zap.Error(err))
		}
		return domain.StatusSnapshot{}, false
	}
	return snapshot, true
}

func (s *StatusCache) Put(ctx context.Context, snapshot domain.StatusSnapshot) {
	if err := SetJSON(ctx, s.cache, statusKey(snapshot.ItemID), snapshot, s.ttl); err != nil {
		s.logger.Warn("Failed to cache inventory status", zap.String("item_id", snapshot.ItemID.String()), zap.Error(err))
	}
}

// Invalidate drops the snapshot of one item
func (s *StatusCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, statusKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate inventory status", zap.String("item_id", id.String()), zap.Error(err))
	}
}

// InvalidateAll drops every cached snapshot
func (s *StatusCache) InvalidateAll(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, statusKeyPrefix+"*"); err != nil {
		s.logger.Warn("Failed to invalidate inventory statuses", zap.Error(err))
	}
}
