package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studyflow/feed-service/internal/models"
)

type progressLedgerRepository struct {
	db *sql.DB
}

// NewProgressLedgerRepository creates a new progress ledger repository
func NewProgressLedgerRepository(db *sql.DB) *progressLedgerRepository {
	return &progressLedgerRepository{
		db: db,
	}
}

// GetByLearner retrieves all progress records for a learner, keyed by feed id
func (r *progressLedgerRepository) GetByLearner(ctx context.Context, learnerID int) (map[string]models.ProgressRecord, error) {
	query := `
		SELECT feed_id, progress_pct, completed, completed_at
		FROM learner_progress
		WHERE learner_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]models.ProgressRecord)
	for rows.Next() {
		var feedID string
		var record models.ProgressRecord
		var completedAt sql.NullTime
		if err := rows.Scan(&feedID, &record.ProgressPct, &record.Completed, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			record.CompletedAt = &t
		}
		records[feedID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress records: %w", err)
	}

	return records, nil
}

// Upsert writes one record with merge-on-write semantics. The stored
// percentage never decreases, the completed flag is never cleared and the
// first completion timestamp sticks, so a stale writer cannot regress a
// row committed by a newer one.
func (r *progressLedgerRepository) Upsert(ctx context.Context, learnerID int, feedID string, record models.ProgressRecord) error {
	query := `
		INSERT INTO learner_progress (learner_id, feed_id, progress_pct, completed, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			progress_pct = GREATEST(progress_pct, VALUES(progress_pct)),
			completed = completed OR VALUES(completed),
			completed_at = COALESCE(completed_at, VALUES(completed_at))
	`

	var completedAt sql.NullTime
	if record.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *record.CompletedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		learnerID,
		feedID,
		record.ProgressPct,
		record.Completed,
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress record: %w", err)
	}

	return nil
}
