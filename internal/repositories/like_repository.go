package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/studyflow/feed-service/internal/models"
)

// deadlockRetries bounds how often a toggle transaction is retried after
// losing a lock conflict to a concurrent toggle on the same unit
const deadlockRetries = 3

type likeRepository struct {
	db *sql.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *sql.DB) *likeRepository {
	return &likeRepository{
		db: db,
	}
}

// Toggle atomically flips the learner's like marker inside one
// transaction and returns the authoritative state after the flip. The
// counter is derived from the marker rows, so it can never drift under
// concurrent toggles.
func (r *likeRepository) Toggle(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	var state models.LikeState
	var err error
	for attempt := 0; attempt <= deadlockRetries; attempt++ {
		state, err = r.toggleOnce(ctx, learnerID, feedID)
		if err == nil || !isDeadlock(err) {
			return state, err
		}
	}
	return models.LikeState{}, fmt.Errorf("failed to toggle like after retries: %w", err)
}

func (r *likeRepository) toggleOnce(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var liked bool
	lockQuery := `SELECT EXISTS(SELECT 1 FROM unit_likes WHERE learner_id = ? AND feed_id = ? FOR UPDATE)`
	if err := tx.QueryRowContext(ctx, lockQuery, learnerID, feedID).Scan(&liked); err != nil {
		return models.LikeState{}, fmt.Errorf("failed to lock like marker: %w", err)
	}

	if liked {
		_, err = tx.ExecContext(ctx, `DELETE FROM unit_likes WHERE learner_id = ? AND feed_id = ?`, learnerID, feedID)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO unit_likes (learner_id, feed_id) VALUES (?, ?)`, learnerID, feedID)
	}
	if err != nil {
		return models.LikeState{}, fmt.Errorf("failed to flip like marker: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM unit_likes WHERE feed_id = ?`, feedID).Scan(&count); err != nil {
		return models.LikeState{}, fmt.Errorf("failed to count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.LikeState{}, fmt.Errorf("failed to commit like toggle: %w", err)
	}

	return models.LikeState{Liked: !liked, Count: count}, nil
}

// State returns the learner's like marker and the unit counter
func (r *likeRepository) State(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	query := `
		SELECT
			EXISTS(SELECT 1 FROM unit_likes WHERE learner_id = ? AND feed_id = ?),
			(SELECT COUNT(*) FROM unit_likes WHERE feed_id = ?)
	`

	var state models.LikeState
	err := r.db.QueryRowContext(ctx, query, learnerID, feedID, feedID).Scan(&state.Liked, &state.Count)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("failed to get like state: %w", err)
	}

	return state, nil
}

// isDeadlock reports MySQL error 1213 (deadlock) or 1205 (lock wait timeout)
func isDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
}
