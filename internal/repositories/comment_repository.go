package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/studyflow/feed-service/internal/models"
)

type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{
		db: db,
	}
}

// Insert appends one comment and returns its canonical id
func (r *commentRepository) Insert(ctx context.Context, feedID string, comment models.Comment) (string, error) {
	query := `
		INSERT INTO unit_comments (feed_id, author_id, author_name, body, parent_id)
		VALUES (?, ?, ?, ?, ?)
	`

	var parentID sql.NullInt64
	if comment.ParentID != nil {
		parsed, err := strconv.ParseInt(*comment.ParentID, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid parent comment id %q: %w", *comment.ParentID, err)
		}
		parentID = sql.NullInt64{Int64: parsed, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		feedID,
		comment.AuthorID,
		comment.AuthorName,
		comment.Text,
		parentID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to get last insert id: %w", err)
	}

	return strconv.FormatInt(id, 10), nil
}

// ListByUnit retrieves all comments for the unit
func (r *commentRepository) ListByUnit(ctx context.Context, feedID string) ([]models.Comment, error) {
	query := `
		SELECT id, author_id, author_name, body, parent_id, created_at
		FROM unit_comments
		WHERE feed_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		var id int64
		var parentID sql.NullInt64
		if err := rows.Scan(&id, &comment.AuthorID, &comment.AuthorName, &comment.Text, &parentID, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.ID = strconv.FormatInt(id, 10)
		if parentID.Valid {
			parent := strconv.FormatInt(parentID.Int64, 10)
			comment.ParentID = &parent
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}
