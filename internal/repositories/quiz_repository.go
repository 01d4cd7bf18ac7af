package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studyflow/feed-service/internal/models"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// GetQuestions retrieves the quiz questions in display order. The correct
// option is null for question types graded manually.
func (r *quizRepository) GetQuestions(ctx context.Context, courseID, contentID int) ([]models.Question, error) {
	query := `
		SELECT id, question_type, correct_option
		FROM quiz_questions
		WHERE course_id = ? AND content_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, courseID, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var question models.Question
		var questionType string
		var correctOption sql.NullString
		if err := rows.Scan(&question.ID, &questionType, &correctOption); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		question.Type = models.QuestionType(questionType)
		if correctOption.Valid {
			option := correctOption.String
			question.CorrectOption = &option
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz questions: %w", err)
	}

	return questions, nil
}
