package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studyflow/feed-service/internal/models"
	authMiddleware "github.com/studyflow/feed-service/libs/auth/middleware"
	"github.com/studyflow/feed-service/libs/handlers"
)

// SubmissionService is the interface that wraps methods for quiz
// submission operations
type SubmissionService interface {
	// Submit handles one quiz submission, idempotent per (unit, learner)
	Submit(ctx context.Context, learnerID int, unit models.Unit, answers []models.Answer) (*models.SubmitQuizResponse, error)
}

// UnitResolver resolves a feed id to a unit within the learner's feed
type UnitResolver interface {
	// Unit returns the unit for the feed id, or models.ErrNotFound
	Unit(ctx context.Context, learnerID int, feedID string) (models.Unit, error)
}

// SubmissionHandler handles HTTP requests for quiz submissions
type SubmissionHandler struct {
	handlers.BaseHandler
	service SubmissionService
	units   UnitResolver
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(svc SubmissionService, units UnitResolver, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:     svc,
		units:       units,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all submission handler routes
func (h *SubmissionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Post("/feed/{feedID}/submission", h.Submit)
}

// Submit handles POST /feed/{feedID}/submission
// @Summary Submit quiz answers
// @Description Submit the learner's answers for a quiz unit. Submission is idempotent: a repeat returns the existing record with alreadySubmitted set.
// @Tags submissions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Param request body models.SubmitQuizRequest true "Answers"
// @Success 200 {object} models.SubmitQuizResponse "Submission outcome"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unit not in feed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/submission [post]
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	feedID := chi.URLParam(r, "feedID")

	var req models.SubmitQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	unit, err := h.units.Unit(r.Context(), learnerID, feedID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.RespondError(w, r, http.StatusNotFound, "unit not in feed")
			return
		}
		h.Logger.Error("failed to resolve unit", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to resolve unit")
		return
	}
	if unit.Type != models.ContentTypeQuiz {
		h.RespondError(w, r, http.StatusBadRequest, "unit is not a quiz")
		return
	}

	resp, err := h.service.Submit(r.Context(), learnerID, unit, req.Answers)
	if err != nil {
		h.Logger.Error("failed to submit quiz",
			zap.Int("learner_id", learnerID),
			zap.String("feed_id", feedID),
			zap.Error(err),
		)
		h.RespondError(w, r, http.StatusInternalServerError, "failed to submit quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
