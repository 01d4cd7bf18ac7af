// Package engagement coordinates the contention-prone per-unit counters
// (likes) and the append-only social data (comments) without blocking
// playback: mutations are optimistic against an in-memory view and
// compensated when the durable write fails.
package engagement

import (
	"context"
	"fmt"
	"sync"

	"github.com/studyflow/feed-service/internal/models"
	"go.uber.org/zap"
)

// LikeRepository defines methods for like data access
type LikeRepository interface {
	// Toggle atomically flips the learner's like marker and adjusts the
	// unit counter in one transaction, retrying on conflict. Returns the
	// authoritative state after the toggle.
	Toggle(ctx context.Context, learnerID int, feedID string) (models.LikeState, error)
	// State returns the learner's like marker and the unit counter
	State(ctx context.Context, learnerID int, feedID string) (models.LikeState, error)
}

// LikeService applies like toggles as an explicit two-phase operation:
// a tentative view change first, the durable transaction second, and a
// compensating rollback when the transaction fails
type LikeService struct {
	repo   LikeRepository
	logger *zap.Logger

	mu   sync.Mutex
	view map[string]models.LikeState // key: learnerID-feedID
}

// NewLikeService creates a new like service
func NewLikeService(repo LikeRepository, logger *zap.Logger) *LikeService {
	return &LikeService{
		repo:   repo,
		logger: logger,
		view:   make(map[string]models.LikeState),
	}
}

func likeKey(learnerID int, feedID string) string {
	return fmt.Sprintf("%d-%s", learnerID, feedID)
}

// State returns the current like view for the learner and unit, loading it
// from the repository on first access
func (s *LikeService) State(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	k := likeKey(learnerID, feedID)

	s.mu.Lock()
	state, ok := s.view[k]
	s.mu.Unlock()
	if ok {
		return state, nil
	}

	state, err := s.repo.State(ctx, learnerID, feedID)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("failed to load like state: %w", err)
	}

	s.mu.Lock()
	s.view[k] = state
	s.mu.Unlock()
	return state, nil
}

// Toggle flips the learner's like. The view is updated optimistically so
// the UI reflects the change immediately; on transaction failure it is
// rolled back exactly to its pre-toggle value.
func (s *LikeService) Toggle(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	before, err := s.State(ctx, learnerID, feedID)
	if err != nil {
		return models.LikeState{}, err
	}

	k := likeKey(learnerID, feedID)

	// Phase one: tentative flip.
	optimistic := models.LikeState{Liked: !before.Liked}
	if optimistic.Liked {
		optimistic.Count = before.Count + 1
	} else {
		optimistic.Count = before.Count - 1
		if optimistic.Count < 0 {
			optimistic.Count = 0
		}
	}
	s.mu.Lock()
	s.view[k] = optimistic
	s.mu.Unlock()

	// Phase two: durable commit.
	authoritative, err := s.repo.Toggle(ctx, learnerID, feedID)
	if err != nil {
		// Compensating transition: back to the pre-toggle value.
		s.mu.Lock()
		s.view[k] = before
		s.mu.Unlock()
		s.logger.Warn("like toggle failed, rolled back",
			zap.Int("learner_id", learnerID),
			zap.String("feed_id", feedID),
			zap.Error(err),
		)
		return before, fmt.Errorf("failed to toggle like: %w", err)
	}

	s.mu.Lock()
	s.view[k] = authoritative
	s.mu.Unlock()
	return authoritative, nil
}
