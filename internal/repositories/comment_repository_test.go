package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/feed-service/internal/models"
)

func TestCommentRepository_Insert(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec(`INSERT INTO unit_comments`).
		WithArgs("1-10", 7, "Mika", "nice explanation", nil).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Insert(context.Background(), "1-10", models.Comment{
		AuthorID:   7,
		AuthorName: "Mika",
		Text:       "nice explanation",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestCommentRepository_Insert_Reply(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	parent := "42"
	mock.ExpectExec(`INSERT INTO unit_comments`).
		WithArgs("1-10", 8, "Ren", "agreed", int64(42)).
		WillReturnResult(sqlmock.NewResult(43, 1))

	id, err := repo.Insert(context.Background(), "1-10", models.Comment{
		AuthorID:   8,
		AuthorName: "Ren",
		Text:       "agreed",
		ParentID:   &parent,
	})
	require.NoError(t, err)
	assert.Equal(t, "43", id)
}

func TestCommentRepository_Insert_InvalidParent(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	parent := "tmp-abc"
	_, err := repo.Insert(context.Background(), "1-10", models.Comment{ParentID: &parent})
	assert.Error(t, err)
}

func TestCommentRepository_ListByUnit(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "author_id", "author_name", "body", "parent_id", "created_at"}).
		AddRow(42, 7, "Mika", "nice explanation", nil, createdAt).
		AddRow(43, 8, "Ren", "agreed", 42, createdAt.Add(time.Minute))
	mock.ExpectQuery(`SELECT id, author_id, author_name, body, parent_id, created_at FROM unit_comments`).
		WithArgs("1-10").
		WillReturnRows(rows)

	comments, err := repo.ListByUnit(context.Background(), "1-10")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "42", comments[0].ID)
	assert.Nil(t, comments[0].ParentID)
	require.NotNil(t, comments[1].ParentID)
	assert.Equal(t, "42", *comments[1].ParentID)
}
