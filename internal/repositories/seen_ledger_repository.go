package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studyflow/feed-service/internal/models"
)

type seenLedgerRepository struct {
	db *sql.DB
}

// NewSeenLedgerRepository creates a new seen ledger repository
func NewSeenLedgerRepository(db *sql.DB) *seenLedgerRepository {
	return &seenLedgerRepository{
		db: db,
	}
}

// GetByLearner retrieves the learner's seen entries, keyed by feed id. The
// ledger outlives enrollments: entries survive course archival and
// re-enrollment.
func (r *seenLedgerRepository) GetByLearner(ctx context.Context, learnerID int) (map[string]models.SeenEntry, error) {
	query := `
		SELECT feed_id, progress_pct
		FROM learner_seen
		WHERE learner_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seen entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]models.SeenEntry)
	for rows.Next() {
		var feedID string
		var pct float64
		if err := rows.Scan(&feedID, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan seen entry: %w", err)
		}
		entries[feedID] = models.SeenEntry{Seen: true, ProgressPct: pct}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seen entries: %w", err)
	}

	return entries, nil
}

// Upsert records a seen entry. A row, once written, is never deleted; the
// percentage only ratchets upward.
func (r *seenLedgerRepository) Upsert(ctx context.Context, learnerID int, feedID string, entry models.SeenEntry) error {
	query := `
		INSERT INTO learner_seen (learner_id, feed_id, progress_pct)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			progress_pct = GREATEST(progress_pct, VALUES(progress_pct))
	`

	_, err := r.db.ExecContext(ctx, query, learnerID, feedID, entry.ProgressPct)
	if err != nil {
		return fmt.Errorf("failed to upsert seen entry: %w", err)
	}

	return nil
}
