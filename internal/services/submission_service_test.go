package services

import (
	"context"
	"errors"
	"testing"

	"github.com/studyflow/feed-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSubmissionRepo is a mock implementation of SubmissionRepository
type mockSubmissionRepo struct {
	existing  *models.Submission
	findErr   error
	createErr error
	created   []*models.Submission
	// raceWinner becomes visible as the existing row once a duplicate
	// insert is reported, simulating the concurrent tab's commit
	raceWinner *models.Submission
}

func (m *mockSubmissionRepo) FindExisting(ctx context.Context, learnerID, courseID, contentID int) (*models.Submission, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.existing == nil {
		return nil, models.ErrNotFound
	}
	return m.existing, nil
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if m.createErr != nil {
		if errors.Is(m.createErr, models.ErrDuplicateSubmission) {
			m.existing = m.raceWinner
		}
		return m.createErr
	}
	m.created = append(m.created, submission)
	return nil
}

// mockQuizRepo is a mock implementation of QuizRepository
type mockQuizRepo struct {
	questions []models.Question
	err       error
}

func (m *mockQuizRepo) GetQuestions(ctx context.Context, courseID, contentID int) ([]models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.questions, nil
}

// mockUnlocker is a mock implementation of QuizUnlocker
type mockUnlocker struct {
	unlocked []string
}

func (m *mockUnlocker) UnlockQuiz(ctx context.Context, learnerID int, unit models.Unit) {
	m.unlocked = append(m.unlocked, unit.FeedID())
}

func option(s string) *string { return &s }

func quizUnit() models.Unit {
	return models.Unit{CourseID: 1, ContentID: 11, Type: models.ContentTypeQuiz, QuestionCount: 3}
}

func choiceQuestions() []models.Question {
	return []models.Question{
		{ID: 1, Type: models.QuestionTypeChoice, CorrectOption: option("a")},
		{ID: 2, Type: models.QuestionTypeChoice, CorrectOption: option("b")},
		{ID: 3, Type: models.QuestionTypeChoice, CorrectOption: option("c")},
	}
}

func TestSubmissionService_Submit_AutoGraded(t *testing.T) {
	repo := &mockSubmissionRepo{}
	unlocker := &mockUnlocker{}
	svc := NewSubmissionService(repo, &mockQuizRepo{questions: choiceQuestions()}, unlocker)

	resp, err := svc.Submit(context.Background(), 7, quizUnit(), []models.Answer{
		{QuestionID: 1, Value: "a"},
		{QuestionID: 2, Value: "x"},
		{QuestionID: 3, Value: "c"},
	})
	require.NoError(t, err)
	assert.False(t, resp.AlreadySubmitted)
	assert.Equal(t, models.SubmissionStatusGraded, resp.Submission.Status)
	require.NotNil(t, resp.Submission.Score)
	assert.Equal(t, 67, *resp.Submission.Score)
	assert.Equal(t, []string{"1-11"}, unlocker.unlocked, "cap unlocks after the write commits")
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].SubmittedAt.IsZero())
}

func TestSubmissionService_Submit_OpenQuestionForcesManualGrading(t *testing.T) {
	questions := choiceQuestions()
	questions[2] = models.Question{ID: 3, Type: models.QuestionTypeOpen}
	repo := &mockSubmissionRepo{}
	unlocker := &mockUnlocker{}
	svc := NewSubmissionService(repo, &mockQuizRepo{questions: questions}, unlocker)

	resp, err := svc.Submit(context.Background(), 7, quizUnit(), []models.Answer{
		{QuestionID: 1, Value: "a"},
		{QuestionID: 2, Value: "b"},
		{QuestionID: 3, Value: "my essay"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPending, resp.Submission.Status)
	assert.Nil(t, resp.Submission.Score)
	assert.Len(t, unlocker.unlocked, 1, "a pending submission still unlocks the cap")
}

func TestSubmissionService_Submit_Idempotent(t *testing.T) {
	score := 100
	repo := &mockSubmissionRepo{existing: &models.Submission{
		ID: 42, CourseID: 1, ContentID: 11, LearnerID: 7,
		Score: &score, Status: models.SubmissionStatusGraded,
	}}
	unlocker := &mockUnlocker{}
	svc := NewSubmissionService(repo, &mockQuizRepo{questions: choiceQuestions()}, unlocker)

	resp, err := svc.Submit(context.Background(), 7, quizUnit(), []models.Answer{{QuestionID: 1, Value: "a"}})
	require.NoError(t, err)
	assert.True(t, resp.AlreadySubmitted)
	assert.Equal(t, 42, resp.Submission.ID)
	assert.Empty(t, repo.created, "second attempt never re-grades or re-writes")
	assert.Empty(t, unlocker.unlocked)
}

func TestSubmissionService_Submit_DuplicateRace(t *testing.T) {
	repo := &mockSubmissionRepo{
		createErr:  models.ErrDuplicateSubmission,
		raceWinner: &models.Submission{ID: 9, Status: models.SubmissionStatusGraded},
	}
	unlocker := &mockUnlocker{}
	svc := NewSubmissionService(repo, &mockQuizRepo{questions: choiceQuestions()}, unlocker)

	resp, err := svc.Submit(context.Background(), 7, quizUnit(), []models.Answer{{QuestionID: 1, Value: "a"}})
	require.NoError(t, err)
	assert.True(t, resp.AlreadySubmitted)
	assert.Equal(t, 9, resp.Submission.ID)
	assert.Empty(t, unlocker.unlocked, "losing the race must not unlock twice")
}

func TestSubmissionService_Submit_WriteFailureKeepsUnitResubmittable(t *testing.T) {
	repo := &mockSubmissionRepo{createErr: errors.New("db down")}
	unlocker := &mockUnlocker{}
	svc := NewSubmissionService(repo, &mockQuizRepo{questions: choiceQuestions()}, unlocker)

	_, err := svc.Submit(context.Background(), 7, quizUnit(), []models.Answer{{QuestionID: 1, Value: "a"}})
	assert.Error(t, err)
	assert.Empty(t, unlocker.unlocked, "a failed write leaves the cap in place")
}

func TestSubmissionService_Submit_NotAQuiz(t *testing.T) {
	svc := NewSubmissionService(&mockSubmissionRepo{}, &mockQuizRepo{}, &mockUnlocker{})

	unit := models.Unit{CourseID: 1, ContentID: 10, Type: models.ContentTypeVideo}
	_, err := svc.Submit(context.Background(), 7, unit, nil)
	assert.Error(t, err)
}

func TestSubmissionService_Submit_NoQuestions(t *testing.T) {
	svc := NewSubmissionService(&mockSubmissionRepo{}, &mockQuizRepo{}, &mockUnlocker{})

	_, err := svc.Submit(context.Background(), 7, quizUnit(), nil)
	assert.Error(t, err)
}
