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

func TestForumRepository_HasContribution(t *testing.T) {
	tests := []struct {
		name     string
		exists   bool
		expected bool
	}{
		{name: "has post", exists: true, expected: true},
		{name: "no post", exists: false, expected: false},
	}

	unit := models.Unit{CourseID: 1, ContentID: 10}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupMockDB(t)
			defer cleanup()
			repo := NewForumRepository(db)

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(7, 1, 10, "audio").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			got, err := repo.HasContribution(context.Background(), 7, unit, models.ForumFormatAudio)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestForumRepository_HasContribution_Error(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewForumRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnError(errors.New("connection lost"))

	_, err := repo.HasContribution(context.Background(), 7, models.Unit{CourseID: 1, ContentID: 10}, models.ForumFormatText)
	assert.Error(t, err)
}

func TestForumRepository_CreatePost(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewForumRepository(db)

	mock.ExpectExec(`INSERT INTO forum_posts`).
		WithArgs(7, 1, 10, "text", "great lesson").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreatePost(context.Background(), 7, models.Unit{CourseID: 1, ContentID: 10}, models.ForumFormatText, "great lesson")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
