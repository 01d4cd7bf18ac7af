package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studyflow/feed-service/internal/models"
	authMiddleware "github.com/studyflow/feed-service/libs/auth/middleware"
	"github.com/studyflow/feed-service/libs/handlers"
)

// ForumService is the interface that wraps methods for forum contribution
// operations
type ForumService interface {
	// Satisfied reports whether the unit's forum requirement is met
	Satisfied(ctx context.Context, learnerID int, unit models.Unit) (bool, error)
	// Submit records a contribution post for the unit
	Submit(ctx context.Context, learnerID int, unit models.Unit, format models.ForumFormat, body string) error
}

// CreateForumPostRequest represents a forum contribution request
type CreateForumPostRequest struct {
	Format models.ForumFormat `json:"format"`
	Body   string             `json:"body"`
}

// ForumStatusResponse represents the forum requirement status for a unit
type ForumStatusResponse struct {
	Required  bool               `json:"required"`
	Format    models.ForumFormat `json:"format,omitempty"`
	Satisfied bool               `json:"satisfied"`
}

// ForumHandler handles HTTP requests for forum contributions
type ForumHandler struct {
	handlers.BaseHandler
	service ForumService
	units   UnitResolver
}

// NewForumHandler creates a new forum handler
func NewForumHandler(svc ForumService, units UnitResolver, logger *zap.Logger) *ForumHandler {
	return &ForumHandler{
		service:     svc,
		units:       units,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all forum handler routes
func (h *ForumHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	auth := r.With(authMiddleware)
	auth.Get("/feed/{feedID}/forum", h.GetStatus)
	auth.Post("/feed/{feedID}/forum", h.SubmitPost)
}

// GetStatus handles GET /feed/{feedID}/forum
// @Summary Get forum requirement status
// @Description Get whether the unit requires a forum contribution and whether the learner has satisfied it
// @Tags forum
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Success 200 {object} ForumStatusResponse "Forum status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unit not in feed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/forum [get]
func (h *ForumHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	feedID := chi.URLParam(r, "feedID")

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

	satisfied, err := h.service.Satisfied(r.Context(), learnerID, unit)
	if err != nil {
		h.Logger.Error("failed to check forum status", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to check forum status")
		return
	}

	h.RespondJSON(w, http.StatusOK, ForumStatusResponse{
		Required:  unit.RequiresForum,
		Format:    unit.ForumFormat,
		Satisfied: satisfied,
	})
}

// SubmitPost handles POST /feed/{feedID}/forum
// @Summary Submit a forum contribution
// @Description Record a forum post for the unit. A post in the required format satisfies the unit's forum requirement.
// @Tags forum
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param feedID path string true "Feed unit ID (courseID-contentID)"
// @Param request body CreateForumPostRequest true "Post"
// @Success 200 {object} ForumStatusResponse "Forum status after the post"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unit not in feed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed/{feedID}/forum [post]
func (h *ForumHandler) SubmitPost(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, r, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	feedID := chi.URLParam(r, "feedID")

	var req CreateForumPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Format.Valid() {
		h.RespondError(w, r, http.StatusBadRequest, "invalid post format")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		h.RespondError(w, r, http.StatusBadRequest, "post body is required")
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

	if err := h.service.Submit(r.Context(), learnerID, unit, req.Format, req.Body); err != nil {
		h.Logger.Error("failed to submit forum post", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to submit forum post")
		return
	}

	satisfied, err := h.service.Satisfied(r.Context(), learnerID, unit)
	if err != nil {
		h.Logger.Error("failed to check forum status", zap.String("feed_id", feedID), zap.Error(err))
		h.RespondError(w, r, http.StatusInternalServerError, "failed to check forum status")
		return
	}

	h.RespondJSON(w, http.StatusOK, ForumStatusResponse{
		Required:  unit.RequiresForum,
		Format:    unit.ForumFormat,
		Satisfied: satisfied,
	})
}
