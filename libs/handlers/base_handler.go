package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/studyflow/feed-service/libs/middlewares"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondNoContent sends an empty 204 response
func (h *BaseHandler) RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondError sends an error JSON response carrying the request id, so a
// learner-reported failure can be matched to its log lines
func (h *BaseHandler) RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.RespondJSON(w, status, map[string]string{
		"error":     message,
		"requestId": middlewares.GetRequestID(r.Context()),
	})
}
