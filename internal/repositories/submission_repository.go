package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/studyflow/feed-service/internal/models"
)

// mysqlDuplicateEntry is the error number for a unique key violation
const mysqlDuplicateEntry = 1062

type submissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB) *submissionRepository {
	return &submissionRepository{
		db: db,
	}
}

// FindExisting retrieves the learner's submission for the unit, or
// models.ErrNotFound when none exists
func (r *submissionRepository) FindExisting(ctx context.Context, learnerID, courseID, contentID int) (*models.Submission, error) {
	query := `
		SELECT id, answers, score, status, submitted_at
		FROM quiz_submissions
		WHERE learner_id = ? AND course_id = ? AND content_id = ?
	`

	submission := &models.Submission{
		CourseID:  courseID,
		ContentID: contentID,
		LearnerID: learnerID,
	}
	var answersJSON []byte
	var score sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, learnerID, courseID, contentID).Scan(
		&submission.ID,
		&answersJSON,
		&score,
		&submission.Status,
		&submission.SubmittedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}

	if err := json.Unmarshal(answersJSON, &submission.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode submission answers: %w", err)
	}
	if score.Valid {
		s := int(score.Int64)
		submission.Score = &s
	}

	return submission, nil
}

// Create inserts one submission. The (learner, course, content) unique key
// makes the insert the arbiter between concurrent tabs: the loser gets
// models.ErrDuplicateSubmission.
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO quiz_submissions (learner_id, course_id, content_id, answers, score, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	answersJSON, err := json.Marshal(submission.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode submission answers: %w", err)
	}

	var score sql.NullInt64
	if submission.Score != nil {
		score = sql.NullInt64{Int64: int64(*submission.Score), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		submission.LearnerID,
		submission.CourseID,
		submission.ContentID,
		answersJSON,
		score,
		string(submission.Status),
		submission.SubmittedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return models.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	submission.ID = int(id)

	return nil
}
