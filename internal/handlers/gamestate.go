package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/han-inventor/internal/game"
	"github.com/jwebster45206/han-inventor/pkg/state"
)

// Actions addressed below /v1/gamestate/{id}/
const (
	actionInvent      = "invent"
	actionQuest       = "quest"
	actionGuide       = "guide"
	actionGuideInvent = "guide/invent"
	actionReset       = "reset"
)

type GameStateHandler struct {
	game   *game.Service
	logger *slog.Logger
}

func NewGameStateHandler(svc *game.Service, logger *slog.Logger) *GameStateHandler {
	return &GameStateHandler{
		game:   svc,
		logger: logger,
	}
}

// InventRequest is the body of POST /v1/gamestate/{id}/invent
type InventRequest struct {
	Idea string `json:"idea"`
}

// InventResponse is returned by both invent endpoints
type InventResponse struct {
	ID        string                    `json:"id"`
	Blueprint *state.InventionBlueprint `json:"blueprint"`
	ImageURL  string                    `json:"image_url"`
	GameState *state.GameState          `json:"gamestate"`
}

// QuestRequest is the body of POST /v1/gamestate/{id}/quest
type QuestRequest struct {
	Category string `json:"category"`
}

type QuestResponse struct {
	Quest     *state.QuestOffer `json:"quest"`
	Text      string            `json:"text"`
	GameState *state.GameState  `json:"gamestate"`
}

// GuideRequest is the body of POST /v1/gamestate/{id}/guide
type GuideRequest struct {
	Message string `json:"message"`
}

type GuideResponse struct {
	Question string `json:"question"`
	Done     bool   `json:"done"`
}

// ServeHTTP handles HTTP requests for game state operations
// Routes:
// POST /v1/gamestate                    - Create new game
// GET /v1/gamestate/{id}                - Read game state
// HEAD /v1/gamestate/{id}               - 200 if saved, 404 otherwise
// DELETE /v1/gamestate/{id}             - Clear save slot
// POST /v1/gamestate/{id}/invent        - Invent from an idea
// POST /v1/gamestate/{id}/quest         - Next quest
// POST /v1/gamestate/{id}/guide         - Start or continue guided Q&A
// POST /v1/gamestate/{id}/guide/invent  - Invent from the guided idea
// POST /v1/gamestate/{id}/reset         - Replace with a fresh game
func (h *GameStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/gamestate"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			h.logger.Warn("Method not allowed for game state collection", "method", r.Method)
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	gameStateID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid game state ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format")
		return
	}

	if action == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, gameStateID)
		case http.MethodHead:
			h.handleHead(w, r, gameStateID)
		case http.MethodDelete:
			h.handleDelete(w, r, gameStateID)
		default:
			h.logger.Warn("Method not allowed for game state endpoint", "method", r.Method)
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, HEAD, DELETE")
		}
		return
	}

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for game state action", "method", r.Method, "action", action)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	switch action {
	case actionInvent:
		h.handleInvent(w, r, gameStateID)
	case actionQuest:
		h.handleQuest(w, r, gameStateID)
	case actionGuide:
		h.handleGuide(w, r, gameStateID)
	case actionGuideInvent:
		h.handleGuideInvent(w, r, gameStateID)
	case actionReset:
		h.handleReset(w, r, gameStateID)
	default:
		h.logger.Warn("Unknown game state action", "action", action)
		writeError(w, h.logger, http.StatusNotFound, "Unknown action: "+action)
	}
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	gs := h.game.NewGame(r.Context())
	writeJSON(w, h.logger, http.StatusCreated, gs)
}

func (h *GameStateHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.game.Get(r.Context(), id)
	if err != nil {
		h.writeGameError(w, err, id)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GameStateHandler) handleHead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if h.game.Has(r.Context(), id) {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.game.Delete(r.Context(), id)
	h.logger.Debug("Game state deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameStateHandler) handleReset(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	writeJSON(w, h.logger, http.StatusOK, h.game.Reset(r.Context(), id))
}

func (h *GameStateHandler) handleInvent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req InventRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.game.Invent(r.Context(), id, req.Idea)
	if err != nil {
		h.writeGameError(w, err, id)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, inventResponse(out))
}

func (h *GameStateHandler) handleGuideInvent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	out, err := h.game.InventFromGuide(r.Context(), id)
	if err != nil {
		h.writeGameError(w, err, id)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, inventResponse(out))
}

func (h *GameStateHandler) handleQuest(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req QuestRequest
	if !h.decode(w, r, &req) {
		return
	}

	offer, gs, err := h.game.NextQuest(r.Context(), id, req.Category)
	if err != nil {
		h.writeGameError(w, err, id)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, QuestResponse{
		Quest:     offer,
		Text:      offer.Quest.Format(),
		GameState: gs,
	})
}

func (h *GameStateHandler) handleGuide(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req GuideRequest
	if !h.decode(w, r, &req) {
		return
	}

	step, err := h.game.Guide(r.Context(), id, req.Message)
	if err != nil {
		h.writeGameError(w, err, id)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, GuideResponse{Question: step.Question, Done: step.Done})
}

// decode reads a JSON body. An empty body is accepted as the zero value.
func (h *GameStateHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

func (h *GameStateHandler) writeGameError(w http.ResponseWriter, err error, id uuid.UUID) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, state.ErrInventionInProgress):
		status = http.StatusConflict
	case errors.Is(err, game.ErrEmptyIdea),
		errors.Is(err, game.ErrEmptyGuidedReply),
		errors.Is(err, game.ErrNoGuidedSession):
		status = http.StatusBadRequest
	}

	if status == http.StatusBadGateway {
		h.logger.Error("Game operation failed", "id", id, "error", err)
	} else {
		h.logger.Warn("Game request rejected", "id", id, "status", status, "error", err)
	}
	writeError(w, h.logger, status, err.Error())
}

func inventResponse(out *game.InventionOutcome) InventResponse {
	return InventResponse{
		ID:        out.ID,
		Blueprint: out.Blueprint,
		ImageURL:  out.ImageURL,
		GameState: out.State,
	}
}
