package game

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/han-inventor/pkg/state"
	"github.com/jwebster45206/han-inventor/pkg/storage"
)

// Store applies the save-slot policy on top of a storage backend: loads
// never fail (a missing, unreadable or corrupt record is just absent) and
// save failures are logged rather than surfaced.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewStore wraps a storage backend
func NewStore(s storage.Storage, logger *slog.Logger) *Store {
	return &Store{storage: s, logger: logger}
}

// Load returns the saved state for id, or nil.
func (s *Store) Load(ctx context.Context, id uuid.UUID) *state.GameState {
	gs, err := s.storage.LoadGameState(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load gamestate, treating as absent", "uuid", id, "error", err)
		return nil
	}
	return gs
}

// Save persists gs. Failures are logged only.
func (s *Store) Save(ctx context.Context, gs *state.GameState) {
	if gs == nil {
		return
	}
	if err := s.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		s.logger.Error("Failed to save gamestate", "uuid", gs.ID, "error", err)
	}
}

// Clear removes the record for id.
func (s *Store) Clear(ctx context.Context, id uuid.UUID) {
	if err := s.storage.DeleteGameState(ctx, id); err != nil {
		s.logger.Error("Failed to clear gamestate", "uuid", id, "error", err)
	}
}

// InitialState returns a fresh seed state with a new save slot id.
func (s *Store) InitialState() *state.GameState {
	return state.NewGameState()
}

// HasSaved reports whether a record exists for id.
func (s *Store) HasSaved(ctx context.Context, id uuid.UUID) bool {
	ok, err := s.storage.HasGameState(ctx, id)
	if err != nil {
		s.logger.Error("Failed to check gamestate", "uuid", id, "error", err)
		return false
	}
	return ok
}
