package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/studyflow/feed-service/internal/models"
)

// cacheTTL bounds how long an unrefreshed cache document survives. Every
// write renews it, so only abandoned learners expire.
const cacheTTL = 30 * 24 * time.Hour

type cacheRepository struct {
	client *redis.Client
}

// NewCacheRepository creates a new progress cache repository
func NewCacheRepository(client *redis.Client) *cacheRepository {
	return &cacheRepository{
		client: client,
	}
}

func (r *cacheRepository) key(learnerID int) string {
	return fmt.Sprintf("progress:%d", learnerID)
}

// Read loads the learner's cache document. A missing or unreadable
// document is an empty snapshot, not an error: the cache is a recovery
// tier, never a source of failures.
func (r *cacheRepository) Read(ctx context.Context, learnerID int) (models.CacheSnapshot, error) {
	data, err := r.client.Get(ctx, r.key(learnerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.CacheSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress cache: %w", err)
	}

	var snapshot models.CacheSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return models.CacheSnapshot{}, nil
	}
	return snapshot, nil
}

// Write stores the learner's cache document as one JSON value
func (r *cacheRepository) Write(ctx context.Context, learnerID int, snapshot models.CacheSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode progress cache: %w", err)
	}

	if err := r.client.Set(ctx, r.key(learnerID), data, cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write progress cache: %w", err)
	}
	return nil
}
