package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/studyflow/feed-service/internal/models"
	"github.com/studyflow/feed-service/internal/tasks"
)

// ProgressLedgerRepository defines the interface for the durable progress
// ledger
type ProgressLedgerRepository interface {
	// Upsert writes one record with merge-on-write semantics
	Upsert(ctx context.Context, learnerID int, feedID string, record models.ProgressRecord) error
}

// SeenLedgerRepository defines the interface for the seen ledger
type SeenLedgerRepository interface {
	// Upsert records a seen entry; the percentage only ratchets upward
	Upsert(ctx context.Context, learnerID int, feedID string, entry models.SeenEntry) error
}

// ProgressCacheRepository defines the interface for the progress cache tier
type ProgressCacheRepository interface {
	// Read loads one learner's cache document
	Read(ctx context.Context, learnerID int) (models.CacheSnapshot, error)
}

// Worker handles progress side effect processing
type Worker struct {
	logger         *zap.Logger
	progressLedger ProgressLedgerRepository
	seenLedger     SeenLedgerRepository
	cache          ProgressCacheRepository
	rdb            *redis.Client
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	progressLedger ProgressLedgerRepository,
	seenLedger SeenLedgerRepository,
	cache ProgressCacheRepository,
	rdb *redis.Client,
) *Worker {
	return &Worker{
		logger:         logger,
		progressLedger: progressLedger,
		seenLedger:     seenLedger,
		cache:          cache,
		rdb:            rdb,
	}
}

// HandleSeenUpsert handles a durable seen ledger write. Returning an error
// requeues the task, so a database outage delays the write instead of
// losing it.
func (w *Worker) HandleSeenUpsert(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseSeenUpsertPayload(t)
	if err != nil {
		return err
	}

	entry := models.SeenEntry{Seen: true, ProgressPct: payload.ProgressPct}
	if err := w.seenLedger.Upsert(ctx, payload.LearnerID, payload.FeedID, entry); err != nil {
		w.logger.Error("failed to upsert seen entry",
			zap.Int("learner_id", payload.LearnerID),
			zap.String("feed_id", payload.FeedID),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("seen entry recorded",
		zap.Int("learner_id", payload.LearnerID),
		zap.String("feed_id", payload.FeedID),
	)
	return nil
}

// RunSyncSweep pushes every cached progress document to the durable
// ledger. The ledger upsert merges, so re-writing records that already
// made it through the throttled flush is harmless; what the sweep is for
// is records stranded in the cache by a transient ledger outage.
func (w *Worker) RunSyncSweep(ctx context.Context) error {
	swept := 0
	iter := w.rdb.Scan(ctx, 0, "progress:*", 100).Iterator()
	for iter.Next(ctx) {
		var learnerID int
		if _, err := fmt.Sscanf(iter.Val(), "progress:%d", &learnerID); err != nil {
			continue
		}

		snapshot, err := w.cache.Read(ctx, learnerID)
		if err != nil {
			w.logger.Warn("failed to read progress cache during sweep",
				zap.Int("learner_id", learnerID),
				zap.Error(err),
			)
			continue
		}

		for feedID, record := range snapshot {
			if err := w.progressLedger.Upsert(ctx, learnerID, feedID, record); err != nil {
				w.logger.Warn("failed to sweep progress record",
					zap.Int("learner_id", learnerID),
					zap.String("feed_id", feedID),
					zap.Error(err),
				)
			}
		}
		swept++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan progress cache keys: %w", err)
	}

	w.logger.Info("sync sweep finished", zap.Int("learners", swept))
	return nil
}
