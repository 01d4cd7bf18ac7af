package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studyflow/feed-service/internal/models"
)

type forumRepository struct {
	db *sql.DB
}

// NewForumRepository creates a new forum repository
func NewForumRepository(db *sql.DB) *forumRepository {
	return &forumRepository{
		db: db,
	}
}

// HasContribution reports whether the learner has at least one post in
// the required format for the unit
func (r *forumRepository) HasContribution(ctx context.Context, learnerID int, unit models.Unit, format models.ForumFormat) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM forum_posts
			WHERE learner_id = ? AND course_id = ? AND content_id = ? AND format = ?
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, learnerID, unit.CourseID, unit.ContentID, string(format)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check forum contribution: %w", err)
	}

	return exists, nil
}

// CreatePost records a contribution post for the unit
func (r *forumRepository) CreatePost(ctx context.Context, learnerID int, unit models.Unit, format models.ForumFormat, body string) error {
	query := `
		INSERT INTO forum_posts (learner_id, course_id, content_id, format, body)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, learnerID, unit.CourseID, unit.ContentID, string(format), body)
	if err != nil {
		return fmt.Errorf("failed to create forum post: %w", err)
	}

	return nil
}
