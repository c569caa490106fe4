package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	discountModel "repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/metrics"
	"repairhub-backend/pkg/cache"
	"repairhub-backend/pkg/logger"
)

const modelCacheKeyPrefix = "catalog:model:"

// Model cache lookup results
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// CachedModelSource puts a cache-aside layer in front of a ModelSource.
// Missing models are not cached. Cache failures fall through to the source.
type CachedModelSource struct {
	source ModelSource
	cache  cache.Cache
	ttl    time.Duration
}

func NewCachedModelSource(source ModelSource, c cache.Cache, ttl time.Duration) *CachedModelSource {
	return &CachedModelSource{source: source, cache: c, ttl: ttl}
}

func modelCacheKey(modelID uuid.UUID) string {
	return modelCacheKeyPrefix + modelID.String()
}

func (s *CachedModelSource) GetModelRef(ctx context.Context, modelID uuid.UUID) (*discountModel.ModelRef, error) {
	key := modelCacheKey(modelID)

	// 1. Đọc cache; Redis lỗi thì log rồi đi tiếp xuống DB
	var cached discountModel.ModelRef
	found, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.ModelCacheResults.WithLabelValues(cacheError).Inc()
		logger.Warn("Model cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	case found:
		metrics.ModelCacheResults.WithLabelValues(cacheHit).Inc()
		return &cached, nil
	default:
		metrics.ModelCacheResults.WithLabelValues(cacheMiss).Inc()
	}

	// 2. Cache miss -> query DB
	ref, err := s.source.GetModelRef(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("load model ref: %w", err)
	}
	if ref == nil {
		return nil, nil
	}

	// 3. Ghi lại cache (model không tồn tại thì không cache)
	if err := s.cache.Set(ctx, key, ref, s.ttl); err != nil {
		logger.Warn("Model cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return ref, nil
}
