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

func feedColumns() []string {
	return []string{
		"course_id", "lesson_id", "content_id", "content_type", "title",
		"lesson_position", "content_position",
		"requires_forum", "forum_format",
		"has_assignment", "slide_count", "question_count", "duration_sec",
	}
}

func TestEnrollmentRepository_GetFeed(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows(feedColumns()).
		AddRow(1, 1, 10, "video", "Intro", 1, 1, true, "text", false, 0, 0, 300).
		AddRow(1, 1, 11, "quiz", "Checkpoint", 1, 2, false, "", false, 0, 5, 0).
		AddRow(2, 4, 50, "image", "Gallery", 1, 1, false, "", false, 8, 0, 0)
	mock.ExpectQuery(`SELECT`).
		WithArgs(7).
		WillReturnRows(rows)

	units, err := repo.GetFeed(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, models.ContentTypeVideo, units[0].Type)
	assert.Equal(t, "1-10", units[0].FeedID())
	assert.True(t, units[0].RequiresForum)
	assert.Equal(t, models.ForumFormatText, units[0].ForumFormat)
	assert.Equal(t, 300, units[0].DurationSec)

	assert.Equal(t, models.ContentTypeQuiz, units[1].Type)
	assert.Equal(t, 5, units[1].QuestionCount)

	assert.Equal(t, "2-50", units[2].FeedID())
	assert.Equal(t, 8, units[2].SlideCount)
}

func TestEnrollmentRepository_GetFeed_Empty(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(`SELECT`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(feedColumns()))

	units, err := repo.GetFeed(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestEnrollmentRepository_GetFeed_Error(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(`SELECT`).
		WithArgs(7).
		WillReturnError(errors.New("connection lost"))

	_, err := repo.GetFeed(context.Background(), 7)
	assert.Error(t, err)
}
