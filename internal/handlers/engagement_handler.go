package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studyflow/feed-service/internal/models"
	authMiddleware "github.com/studyflow/feed-service/libs/auth/middleware"
	"github.com/studyflow/feed-service/libs/handlers"
)

// LikeService is the interface that wraps methods for like operations
type LikeService interface {
	// State returns the learner's like marker and the unit counter
	State(ctx context.Context, learnerID int, feedID string) (models.LikeState, error)
	// Toggle flips the learner's like and returns the resulting state
	Toggle(ctx context.Context, learnerID int, feedID string) (models.LikeState, error)
}

// CommentService is the interface that wraps methods for comment operations
type CommentService interface {
	// List retrieves the unit's comment tree
	List(ctx context.Context, feedID string) ([]models.CommentNode, error)
	// Add appends a comment and returns the updated tree
	Add(ctx context.Context, learnerID int, authorName, feedID string, req models.CreateCommentRequest) ([]models.CommentNode, error)
}

// EngagementHandler handles HTTP requests for likes and comments
type EngagementHandler struct {
	handlers.BaseHandler
	likes    LikeService
	comments CommentService
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(likes LikeService, comments CommentService, logger *zap.Logger) *EngagementHandler {
	return &EngagementHandler{
		likes:       likes,
		comments:    comments,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all engagement handler routes
func (h *EngagementHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	auth := r.With(authMiddleware)
	auth.Get("/feed/{feedID}/like", h.GetLikeState)
	auth.Post("/feed/{feedID}/like", h.ToggleLike)
	auth.Get("/feed/{feedID}/comments", h.ListComments)
	auth.Post("/feed/{feedID}/comments", h.AddComment)
}

// GetLikeState handles GET /feed/{feedID}/like
// @Summary Get like state
// @Description Get the learner's like marker and the unit's like count
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Success 200 {object} models.LikeState "Like state"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/like [get]
func (h *EngagementHandler) GetLikeState(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	feedID := chi.URLParam(r, "feedID")

	state, err := h.likes.State(r.Context(), learnerID, feedID)
	if err != nil {
		h.Logger.Error("failed to get like state", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to get like state")
		return
	}

	h.RespondJSON(w, http.StatusOK, state)
}

// ToggleLike handles POST /feed/{feedID}/like
// @Summary Toggle a like
// @Description Flip the learner's like on the unit and return the resulting state
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Success 200 {object} models.LikeState "Like state after the toggle"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/like [post]
func (h *EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	feedID := chi.URLParam(r, "feedID")

	state, err := h.likes.Toggle(r.Context(), learnerID, feedID)
	if err != nil {
		h.Logger.Error("failed to toggle like", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to toggle like")
		return
	}

	h.RespondJSON(w, http.StatusOK, state)
}

// ListComments handles GET /feed/{feedID}/comments
// @Summary List comments
// @Description Get the unit's comment tree, newest root comments first with replies oldest first
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Success 200 {array} models.CommentNode "Comment tree"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/comments [get]
func (h *EngagementHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	_, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	feedID := chi.URLParam(r, "feedID")

	tree, err := h.comments.List(r.Context(), feedID)
	if err != nil {
		h.Logger.Error("failed to list comments", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to list comments")
		return
	}

	h.RespondJSON(w, http.StatusOK, tree)
}

// AddComment handles POST /feed/{feedID}/comments
// @Summary Add a comment
// @Description Append a comment or reply to the unit and return the updated tree
// @Tags engagement
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Param comment body models.CreateCommentRequest true "Comment"
// @Success 200 {array} models.CommentNode "Updated comment tree"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/comments [post]
func (h *EngagementHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	feedID := chi.URLParam(r, "feedID")
	authorName := authMiddleware.GetUserName(r.Context())

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.RespondError(w, r, http.StatusBadRequest, "comment text is required")
		return
	}

	tree, err := h.comments.Add(r.Context(), learnerID, authorName, feedID, req)
	if err != nil {
		h.Logger.Error("failed to add comment", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to add comment")
		return
	}

	h.RespondJSON(w, http.StatusOK, tree)
}
