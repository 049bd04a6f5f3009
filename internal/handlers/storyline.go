package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/han-inventor/pkg/storyline"
)

// StorylineHandler serves the static chapter table
type StorylineHandler struct {
	logger *slog.Logger
}

func NewStorylineHandler(logger *slog.Logger) *StorylineHandler {
	return &StorylineHandler{logger: logger}
}

// ServeHTTP handles GET /v1/storyline
func (h *StorylineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for storyline endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, storyline.Storyline)
}
