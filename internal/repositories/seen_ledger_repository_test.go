package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/feed-service/internal/models"
)

func TestSeenLedgerRepository_GetByLearner(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewSeenLedgerRepository(db)

	rows := sqlmock.NewRows([]string{"feed_id", "progress_pct"}).
		AddRow("1-10", 100.0).
		AddRow("2-50", 84.0)
	mock.ExpectQuery(`SELECT feed_id, progress_pct FROM learner_seen WHERE learner_id = \?`).
		WithArgs(7).
		WillReturnRows(rows)

	entries, err := repo.GetByLearner(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]models.SeenEntry{
		"1-10": {Seen: true, ProgressPct: 100},
		"2-50": {Seen: true, ProgressPct: 84},
	}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeenLedgerRepository_GetByLearner_Error(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewSeenLedgerRepository(db)

	mock.ExpectQuery(`SELECT feed_id, progress_pct FROM learner_seen`).
		WithArgs(7).
		WillReturnError(errors.New("connection lost"))

	_, err := repo.GetByLearner(context.Background(), 7)
	assert.Error(t, err)
}

func TestSeenLedgerRepository_Upsert(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewSeenLedgerRepository(db)

	mock.ExpectExec(`INSERT INTO learner_seen`).
		WithArgs(7, "1-10", 100.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), 7, "1-10", models.SeenEntry{Seen: true, ProgressPct: 100})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
