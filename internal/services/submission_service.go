package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/studyflow/feed-service/internal/models"
)

// SubmissionRepository defines methods for quiz submission data access
type SubmissionRepository interface {
	// FindExisting retrieves the learner's submission for the unit, or
	// models.ErrNotFound when none exists
	FindExisting(ctx context.Context, learnerID, courseID, contentID int) (*models.Submission, error)
	// Create inserts one submission. A duplicate (unit, learner) insert
	// returns models.ErrDuplicateSubmission.
	Create(ctx context.Context, submission *models.Submission) error
}

// QuizRepository defines methods for quiz definition data access
type QuizRepository interface {
	// GetQuestions retrieves the quiz questions, including correctness
	// data where it exists
	GetQuestions(ctx context.Context, courseID, contentID int) ([]models.Question, error)
}

// QuizUnlocker removes the quiz adapter's pre-submission progress cap
type QuizUnlocker interface {
	// UnlockQuiz marks the quiz as submitted so its progress can reach 100
	UnlockQuiz(ctx context.Context, learnerID int, unit models.Unit)
}

type submissionService struct {
	repo     SubmissionRepository
	quizRepo QuizRepository
	unlocker QuizUnlocker
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(repo SubmissionRepository, quizRepo QuizRepository, unlocker QuizUnlocker) *submissionService {
	return &submissionService{
		repo:     repo,
		quizRepo: quizRepo,
		unlocker: unlocker,
	}
}

// Submit handles one quiz submission. Submission is idempotent per
// (unit, learner): a second attempt short-circuits to the existing record
// without re-grading. Only after the write commits does the quiz's
// progress cap unlock, so a failed write leaves the unit incomplete and
// resubmittable.
func (s *submissionService) Submit(ctx context.Context, learnerID int, unit models.Unit, answers []models.Answer) (*models.SubmitQuizResponse, error) {
	if unit.Type != models.ContentTypeQuiz {
		return nil, fmt.Errorf("unit %s is not a quiz", unit.FeedID())
	}

	existing, err := s.repo.FindExisting(ctx, learnerID, unit.CourseID, unit.ContentID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up existing submission: %w", err)
	}
	if existing != nil {
		return &models.SubmitQuizResponse{Submission: *existing, AlreadySubmitted: true}, nil
	}

	questions, err := s.quizRepo.GetQuestions(ctx, unit.CourseID, unit.ContentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz %s has no questions", unit.FeedID())
	}

	submission := &models.Submission{
		CourseID:    unit.CourseID,
		ContentID:   unit.ContentID,
		LearnerID:   learnerID,
		Answers:     answers,
		SubmittedAt: time.Now(),
	}
	grade(submission, questions)

	if err := s.repo.Create(ctx, submission); err != nil {
		if errors.Is(err, models.ErrDuplicateSubmission) {
			// Lost a race against another tab; the existing record wins.
			existing, findErr := s.repo.FindExisting(ctx, learnerID, unit.CourseID, unit.ContentID)
			if findErr != nil {
				return nil, fmt.Errorf("failed to load conflicting submission: %w", findErr)
			}
			return &models.SubmitQuizResponse{Submission: *existing, AlreadySubmitted: true}, nil
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	// The write committed; remove the adapter's cap so progress reaches
	// 100 and gating opens.
	s.unlocker.UnlockQuiz(ctx, learnerID, unit)

	return &models.SubmitQuizResponse{Submission: *submission}, nil
}

// grade fills in score and status. Some question types have no canonical
// correct answer and force manual grading; the whole quiz is auto-graded
// only when every question is gradable.
func grade(submission *models.Submission, questions []models.Question) {
	answered := make(map[int]string, len(submission.Answers))
	for _, a := range submission.Answers {
		answered[a.QuestionID] = a.Value
	}

	allGradable := true
	correct := 0
	for _, q := range questions {
		if !q.AutoGradable() {
			allGradable = false
			continue
		}
		if value, ok := answered[q.ID]; ok && value == *q.CorrectOption {
			correct++
		}
	}

	if !allGradable {
		submission.Status = models.SubmissionStatusPending
		return
	}

	score := int(math.Round(float64(correct) / float64(len(questions)) * 100))
	submission.Score = &score
	submission.Status = models.SubmissionStatusGraded
}
