package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studyflow/feed-service/internal/models"
)

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// GetFeed retrieves the flattened unit sequence across the learner's
// active, non-archived enrollments: courses in enrollment order, lessons
// in course order, contents in lesson order.
func (r *enrollmentRepository) GetFeed(ctx context.Context, learnerID int) ([]models.Unit, error) {
	query := `
		SELECT
			c.id, l.id, ct.id, ct.content_type, ct.title,
			l.position, ct.position,
			ct.requires_forum, COALESCE(ct.forum_format, ''),
			ct.has_assignment, ct.slide_count, ct.question_count, ct.duration_sec
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN lessons l ON l.course_id = c.id
		JOIN contents ct ON ct.lesson_id = l.id
		WHERE e.learner_id = ? AND e.active = 1 AND c.archived = 0
		ORDER BY e.enrolled_at, c.id, l.position, ct.position
	`

	rows, err := r.db.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var unit models.Unit
		var contentType, forumFormat string
		if err := rows.Scan(
			&unit.CourseID,
			&unit.LessonID,
			&unit.ContentID,
			&contentType,
			&unit.Title,
			&unit.LessonOrder,
			&unit.FeedOrder,
			&unit.RequiresForum,
			&forumFormat,
			&unit.HasAssignment,
			&unit.SlideCount,
			&unit.QuestionCount,
			&unit.DurationSec,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feed unit: %w", err)
		}
		unit.Type = models.ContentType(contentType)
		unit.ForumFormat = models.ForumFormat(forumFormat)
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed units: %w", err)
	}

	return units, nil
}
