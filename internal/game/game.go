// Package game runs HanInventor turns: it loads a save slot, asks the AI
// gateway for inventions, quests and guided questions, applies the results
// and persists the slot again.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/han-inventor/pkg/chat"
	"github.com/jwebster45206/han-inventor/pkg/guided"
	"github.com/jwebster45206/han-inventor/pkg/state"
	"github.com/jwebster45206/han-inventor/pkg/storyline"
)

// recentInventionCount is how many invention names are offered to the quest
// prompt.
const recentInventionCount = 5

var (
	ErrGameNotFound     = errors.New("gamestate not found")
	ErrEmptyIdea        = errors.New("invention idea is required")
	ErrNoGuidedSession  = errors.New("no guided session in progress")
	ErrEmptyGuidedReply = errors.New("guided message is required")
)

// Gateway is the subset of the AI gateway the game needs
type Gateway interface {
	GenerateInvention(ctx context.Context, idea string) (*state.InventionBlueprint, error)
	GetNewQuest(ctx context.Context, chapter string, subStage int, category string, recentInventions []string) *state.QuestOffer
	GetNextInventionQuestion(ctx context.Context, messages []chat.ChatMessage) string
	GenerateImage(ctx context.Context, prompt string) string
}

// InventionOutcome is the result of a successful invention.
type InventionOutcome struct {
	ID        string                    `json:"id"`
	Blueprint *state.InventionBlueprint `json:"blueprint"`
	ImageURL  string                    `json:"image_url"`
	State     *state.GameState          `json:"gamestate"`
}

// GuideStep is the next move of a guided dialogue.
type GuideStep struct {
	Question string `json:"question"`
	Done     bool   `json:"done"`
}

// Service coordinates the store and the gateway
type Service struct {
	store   *Store
	gateway Gateway
	logger  *slog.Logger

	// mu serialises every load-modify-save of a slot within this process.
	// Gateway calls run outside it.
	mu sync.Mutex

	// inFlight holds the slots with an invention outstanding in this
	// process. A persisted busy flag without an entry here is stale.
	flightMu sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewService creates a game service
func NewService(store *Store, gateway Gateway, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		gateway:  gateway,
		logger:   logger,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// NewGame creates and persists a fresh save slot.
func (s *Service) NewGame(ctx context.Context) *state.GameState {
	gs := s.store.InitialState()
	s.store.Save(ctx, gs)
	s.logger.Info("New game created", "uuid", gs.ID)
	return gs
}

// Get returns the saved state for id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs := s.store.Load(ctx, id)
	if gs == nil {
		return nil, ErrGameNotFound
	}
	if gs.IsInventing && !s.inventing(id) {
		// Left behind by a call that never finished, e.g. a restart.
		s.logger.Warn("Clearing stale invention flag", "uuid", id)
		gs.EndInventing()
	}
	return gs, nil
}

// update applies fn to a freshly loaded copy of the slot and saves it.
func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(gs *state.GameState) error) (*state.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(gs); err != nil {
		return nil, err
	}
	s.store.Save(ctx, gs)
	return gs, nil
}

func (s *Service) inventing(id uuid.UUID) bool {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	_, ok := s.inFlight[id]
	return ok
}

func (s *Service) setInventing(id uuid.UUID, on bool) {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	if on {
		s.inFlight[id] = struct{}{}
	} else {
		delete(s.inFlight, id)
	}
}

// Has reports whether a save exists for id.
func (s *Service) Has(ctx context.Context, id uuid.UUID) bool {
	return s.store.HasSaved(ctx, id)
}

// Delete clears the save slot.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) {
	s.store.Clear(ctx, id)
}

// Reset replaces the slot with a fresh seed state under the same id.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Clear(ctx, id)
	gs := s.store.InitialState()
	gs.ID = id
	s.store.Save(ctx, gs)
	s.logger.Info("Game reset", "uuid", id)
	return gs
}

// Invent turns a free-text idea into a blueprint and applies it.
func (s *Service) Invent(ctx context.Context, id uuid.UUID, idea string) (*InventionOutcome, error) {
	if strings.TrimSpace(idea) == "" {
		return nil, ErrEmptyIdea
	}
	if err := s.beginInvention(ctx, id); err != nil {
		return nil, err
	}
	return s.finishInvention(ctx, id, idea, false)
}

// InventFromGuide invents from everything the player said during the
// guided dialogue, then discards the dialogue.
func (s *Service) InventFromGuide(ctx context.Context, id uuid.UUID) (*InventionOutcome, error) {
	peek, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if peek.GuidedSession == nil {
		return nil, ErrNoGuidedSession
	}
	idea := peek.GuidedSession.Idea()
	if idea == "" {
		return nil, ErrEmptyIdea
	}

	if err := s.beginInvention(ctx, id); err != nil {
		return nil, err
	}
	return s.finishInvention(ctx, id, idea, true)
}

// beginInvention claims the slot for this process and persists the busy
// flag.
func (s *Service) beginInvention(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.inventing(id) {
		return state.ErrInventionInProgress
	}
	if err := gs.BeginInventing(); err != nil {
		return err
	}
	s.setInventing(id, true)
	s.store.Save(ctx, gs)
	return nil
}

// finishInvention calls the gateway, then applies the outcome to a fresh
// copy of the slot so that quests and guided turns taken during the call
// survive. The busy flag is cleared whatever the outcome.
func (s *Service) finishInvention(ctx context.Context, id uuid.UUID, idea string, fromGuide bool) (*InventionOutcome, error) {
	bp, genErr := s.gateway.GenerateInvention(ctx, idea)

	// The slot must be released even if the caller has gone away.
	saveCtx := context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setInventing(id, false)

	gs, err := s.Get(saveCtx, id)
	if err != nil {
		return nil, err
	}
	gs.EndInventing()

	if genErr != nil {
		s.store.Save(saveCtx, gs)
		return nil, fmt.Errorf("invention failed: %w", genErr)
	}

	inventionID, err := gs.ApplyBlueprint(bp)
	if err != nil {
		s.store.Save(saveCtx, gs)
		return nil, fmt.Errorf("invention rejected: %w", err)
	}
	if fromGuide {
		gs.GuidedSession = nil
	}
	s.store.Save(saveCtx, gs)

	stored := gs.InventionResults[inventionID]
	s.logger.Info("Invention applied",
		"uuid", gs.ID,
		"invention", stored.Name,
		"power", gs.NationalPower,
		"sub_stage", gs.SubStage)

	return &InventionOutcome{
		ID:        inventionID,
		Blueprint: &stored,
		ImageURL:  s.gateway.GenerateImage(ctx, stored.Name),
		State:     gs,
	}, nil
}

// NextQuest sets a new current quest. Storyline seed tasks are served
// before the model is asked.
func (s *Service) NextQuest(ctx context.Context, id uuid.UUID, category string) (*state.QuestOffer, *state.GameState, error) {
	var offer *state.QuestOffer
	gs, err := s.update(ctx, id, func(gs *state.GameState) error {
		if task, ok := gs.NextSeedTask(); ok {
			offer = seedQuest(task)
			gs.CurrentQuest = offer
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if offer != nil {
		return offer, gs, nil
	}

	if matched, ok := state.MatchQuestCategory(strings.TrimSpace(category)); ok {
		category = matched
	}
	offer = s.gateway.GetNewQuest(ctx, gs.CurrentChapter, gs.SubStage, category, gs.RecentInventions(recentInventionCount))

	gs, err = s.update(ctx, id, func(gs *state.GameState) error {
		gs.CurrentQuest = offer
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return offer, gs, nil
}

// seedQuest presents a storyline task as a quest offer.
func seedQuest(description string) *state.QuestOffer {
	q := state.Quest{
		Title:       "机遇任务",
		Description: description,
		Difficulty:  state.DefaultDifficulty,
		Category:    state.DefaultCategory,
		Reward:      state.DefaultReward,
	}
	if task, ss, ok := storyline.FindTask(description); ok {
		q.Title = ss.Name
		q.Reward = task.Reward
		if task.Category == storyline.TaskLuxury {
			q.Category = "工艺"
		}
	}
	return &state.QuestOffer{Quest: q, InventionSuggestions: []string{}}
}

// StartGuide opens a guided dialogue with the player's first idea and
// returns the first question.
func (s *Service) StartGuide(ctx context.Context, id uuid.UUID, idea string) (*GuideStep, error) {
	if strings.TrimSpace(idea) == "" {
		return nil, ErrEmptyGuidedReply
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	session := guided.NewSession(idea)
	step := s.ask(ctx, session)
	if err := s.storeSession(ctx, id, session); err != nil {
		return nil, err
	}
	return step, nil
}

// AnswerGuide records the player's answer and returns the next question.
func (s *Service) AnswerGuide(ctx context.Context, id uuid.UUID, answer string) (*GuideStep, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyGuidedReply
	}
	gs, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session := gs.GuidedSession
	if session == nil {
		return nil, ErrNoGuidedSession
	}
	if session.Done() {
		return &GuideStep{Done: true}, nil
	}

	step := &GuideStep{Done: true}
	if session.Answer(answer) {
		step = s.ask(ctx, session)
	}
	if err := s.storeSession(ctx, id, session); err != nil {
		return nil, err
	}
	return step, nil
}

// storeSession writes the dialogue back onto a fresh copy of the slot.
func (s *Service) storeSession(ctx context.Context, id uuid.UUID, session *guided.Session) error {
	_, err := s.update(ctx, id, func(gs *state.GameState) error {
		gs.GuidedSession = session
		return nil
	})
	return err
}

// Guide starts a dialogue when none is open, otherwise answers the open one.
func (s *Service) Guide(ctx context.Context, id uuid.UUID, message string) (*GuideStep, error) {
	gs, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if gs.GuidedSession == nil || gs.GuidedSession.Done() {
		return s.StartGuide(ctx, id, message)
	}
	return s.AnswerGuide(ctx, id, message)
}

func (s *Service) ask(ctx context.Context, session *guided.Session) *GuideStep {
	reply := s.gateway.GetNextInventionQuestion(ctx, session.Recent())
	question, done := session.Apply(reply)
	return &GuideStep{Question: question, Done: done}
}
