package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyflow/feed-service/internal/models"
	authmw "github.com/studyflow/feed-service/libs/auth/middleware"
	authservice "github.com/studyflow/feed-service/libs/auth/service"
)

type stubFeedService struct{}

func (s *stubFeedService) Feed(ctx context.Context, learnerID int) (*models.FeedResponse, error) {
	return &models.FeedResponse{}, nil
}

func (s *stubFeedService) HandleEvent(ctx context.Context, learnerID int, feedID string, event models.PlaybackEvent) (*models.EventResponse, error) {
	return &models.EventResponse{}, nil
}

func (s *stubFeedService) Jump(ctx context.Context, learnerID int, req models.JumpRequest) (*models.GateDecision, error) {
	return &models.GateDecision{}, nil
}

func (s *stubFeedService) Flush(ctx context.Context, learnerID int) {}

type stubLikeService struct{}

func (s *stubLikeService) State(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	return models.LikeState{}, nil
}

func (s *stubLikeService) Toggle(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	return models.LikeState{}, nil
}

type stubCommentService struct{}

func (s *stubCommentService) List(ctx context.Context, feedID string) ([]models.CommentNode, error) {
	return nil, nil
}

func (s *stubCommentService) Add(ctx context.Context, learnerID int, authorName, feedID string, req models.CreateCommentRequest) ([]models.CommentNode, error) {
	return nil, nil
}

type stubSubmissionService struct{}

func (s *stubSubmissionService) Submit(ctx context.Context, learnerID int, unit models.Unit, answers []models.Answer) (*models.SubmitQuizResponse, error) {
	return &models.SubmitQuizResponse{}, nil
}

type stubUnitResolver struct{}

func (s *stubUnitResolver) Unit(ctx context.Context, learnerID int, feedID string) (models.Unit, error) {
	return models.Unit{
		CourseID:  1,
		ContentID: 10,
		Type:      models.ContentTypeQuiz,
	}, nil
}

type stubForumService struct{}

func (s *stubForumService) Satisfied(ctx context.Context, learnerID int, unit models.Unit) (bool, error) {
	return true, nil
}

func (s *stubForumService) Submit(ctx context.Context, learnerID int, unit models.Unit, format models.ForumFormat, body string) error {
	return nil
}

// setupTestRouter registers all handlers on one router the way the API
// binary does, behind the real auth middleware.
func setupTestRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()

	logger := zap.NewNop()
	tokens := authservice.NewTokenGenerator("test-secret", time.Hour, time.Hour)
	token, err := tokens.GenerateAccessToken(7, "Test Learner")
	require.NoError(t, err)

	middleware := authmw.AuthMiddleware(tokens)

	feedHandler := NewFeedHandler(&stubFeedService{}, logger)
	engagementHandler := NewEngagementHandler(&stubLikeService{}, &stubCommentService{}, logger)
	submissionHandler := NewSubmissionHandler(&stubSubmissionService{}, &stubUnitResolver{}, logger)
	forumHandler := NewForumHandler(&stubForumService{}, &stubUnitResolver{}, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		feedHandler.RegisterRoutes(r, middleware)
		engagementHandler.RegisterRoutes(r, middleware)
		submissionHandler.RegisterRoutes(r, middleware)
		forumHandler.RegisterRoutes(r, middleware)
	})

	return r, token
}

func TestRegisterRoutes_AllEndpointsResolve(t *testing.T) {
	router, token := setupTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"Get feed", http.MethodGet, "/api/v1/feed", "", http.StatusOK},
		{"Jump", http.MethodPost, "/api/v1/feed/jump", `{"targetIndex":1}`, http.StatusOK},
		{"Flush", http.MethodPost, "/api/v1/feed/flush", "", http.StatusNoContent},
		{"Playback event", http.MethodPost, "/api/v1/feed/1-10/events", `{"type":"pause","currentTime":10,"duration":100}`, http.StatusOK},
		{"Like state", http.MethodGet, "/api/v1/feed/1-10/like", "", http.StatusOK},
		{"Toggle like", http.MethodPost, "/api/v1/feed/1-10/like", "", http.StatusOK},
		{"List comments", http.MethodGet, "/api/v1/feed/1-10/comments", "", http.StatusOK},
		{"Add comment", http.MethodPost, "/api/v1/feed/1-10/comments", `{"text":"nice one"}`, http.StatusOK},
		{"Submit quiz", http.MethodPost, "/api/v1/feed/1-10/submission", `{"answers":[]}`, http.StatusOK},
		{"Forum status", http.MethodGet, "/api/v1/feed/1-10/forum", "", http.StatusOK},
		{"Forum post", http.MethodPost, "/api/v1/feed/1-10/forum", `{"format":"text","body":"hello"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRegisterRoutes_RequireAuth(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
