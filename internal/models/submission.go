package models

import "time"

// QuestionType represents the kind of quiz question
type QuestionType string

const (
	// QuestionTypeChoice has a canonical correct option and is auto-gradable
	QuestionTypeChoice QuestionType = "choice"
	// QuestionTypeOpen has no canonical answer and must be graded manually
	QuestionTypeOpen QuestionType = "open"
)

// Question represents one question of a quiz unit
type Question struct {
	ID            int          `json:"id"`
	Type          QuestionType `json:"type"`
	CorrectOption *string      `json:"-"`
}

// AutoGradable reports whether correctness data exists for the question
func (q Question) AutoGradable() bool {
	return q.Type == QuestionTypeChoice && q.CorrectOption != nil
}

// SubmissionStatus represents the grading state of a submission
type SubmissionStatus string

const (
	SubmissionStatusGraded  SubmissionStatus = "graded"
	SubmissionStatusPending SubmissionStatus = "pending"
)

// Answer represents one answered question in a submission
type Answer struct {
	QuestionID int    `json:"questionId"`
	Value      string `json:"value"`
}

// Submission represents one quiz submission, unique per (unit, learner)
type Submission struct {
	ID          int              `json:"id"`
	CourseID    int              `json:"courseId"`
	ContentID   int              `json:"contentId"`
	LearnerID   int              `json:"learnerId"`
	Answers     []Answer         `json:"answers"`
	Score       *int             `json:"score,omitempty"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

// SubmitQuizRequest represents a quiz submission request
type SubmitQuizRequest struct {
	Answers []Answer `json:"answers"`
}

// SubmitQuizResponse represents the outcome of a quiz submission
type SubmitQuizResponse struct {
	Submission       Submission `json:"submission"`
	AlreadySubmitted bool       `json:"alreadySubmitted"`
}
