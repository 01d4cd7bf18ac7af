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

// FeedService is the interface that wraps methods for feed operations
type FeedService interface {
	// Feed retrieves the learner's flattened feed with reconciled progress
	// and the starting position
	Feed(ctx context.Context, learnerID int) (*models.FeedResponse, error)
	// HandleEvent applies one raw playback event to the unit's adapter and
	// returns the merged progress
	HandleEvent(ctx context.Context, learnerID int, feedID string, event models.PlaybackEvent) (*models.EventResponse, error)
	// Jump performs a gated navigation request
	Jump(ctx context.Context, learnerID int, req models.JumpRequest) (*models.GateDecision, error)
	// Flush pushes the learner's dirty progress to the remote ledger
	Flush(ctx context.Context, learnerID int)
}

// FeedHandler handles HTTP requests for feed operations
type FeedHandler struct {
	handlers.BaseHandler
	service FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(svc FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all feed handler routes
func (h *FeedHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	auth := r.With(authMiddleware)
	auth.Get("/feed", h.GetFeed)
	auth.Post("/feed/jump", h.Jump)
	auth.Post("/feed/flush", h.Flush)
	auth.Post("/feed/{feedID}/events", h.HandleEvent)
}

// GetFeed handles GET /feed
// @Summary Get the learner's content feed
// @Description Get the flattened unit sequence across enrolled courses with reconciled progress and the starting position
// @Tags feed
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.FeedResponse "Feed with progress"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed [get]
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	feed, err := h.service.Feed(r.Context(), learnerID)
	if err != nil {
		h.Logger.Error("failed to get feed", zap.Int("learner_id", learnerID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to get feed")
		return
	}

	h.RespondJSON(w, http.StatusOK, feed)
}

// HandleEvent handles POST /feed/{feedID}/events
// @Summary Report a playback event
// @Description Apply one raw playback signal (time update, pause, seek, ended, slide, scroll, answered) to the unit and return the merged progress
// @Tags feed
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Param event body models.PlaybackEvent true "Playback event"
// @Success 200 {object} models.EventResponse "Merged progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unit not in feed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/events [post]
func (h *FeedHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	feedID := chi.URLParam(r, "feedID")

	var event models.PlaybackEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.HandleEvent(r.Context(), learnerID, feedID, event)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.RespondError(w, r, http.StatusNotFound, "unit not in feed")
			return
		}
		h.Logger.Error("failed to handle playback event",
			zap.Int("learner_id", learnerID),
			zap.String("feed_id", feedID),
			zap.Error(err),
		)
		h.RespondError(w, r, http.StatusInternalServerError, "failed to handle playback event")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Jump handles POST /feed/jump
// @Summary Request a feed navigation
// @Description Request a move to another unit, by target index or accumulated wheel delta. A refused jump returns the gate decision with the blocking unit.
// @Tags feed
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.JumpRequest true "Jump request"
// @Success 200 {object} models.GateDecision "Gate decision"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/jump [post]
func (h *FeedHandler) Jump(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req models.JumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetIndex == nil && req.WheelDelta == nil {
		h.RespondError(w, r, http.StatusBadRequest, "either targetIndex or wheelDelta is required")
		return
	}

	decision, err := h.service.Jump(r.Context(), learnerID, req)
	if err != nil {
		h.Logger.Error("failed to process jump", zap.Int("learner_id", learnerID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to process jump")
		return
	}

	h.RespondJSON(w, http.StatusOK, decision)
}

// Flush handles POST /feed/flush
// @Summary Flush pending progress
// @Description Push the learner's unflushed progress to the durable ledger. Sent on page hide and player teardown.
// @Tags feed
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 204 "Flushed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /feed/flush [post]
func (h *FeedHandler) Flush(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	h.service.Flush(r.Context(), learnerID)
	h.RespondNoContent(w)
}
