package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/han-inventor/pkg/state"
)

// GameStateKeyPrefix is the fixed storage key under which save records live.
// Each save slot appends ":<uuid>".
const GameStateKeyPrefix = "hanInventor_gameState"

// GameStateKey returns the storage key for a save slot.
func GameStateKey(id uuid.UUID) string {
	return GameStateKeyPrefix + ":" + id.String()
}

// Storage defines the interface for save-slot persistence
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveGameState persists the whitelisted record of gs under id
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error

	// LoadGameState retrieves a gamestate by id.
	// Returns nil, nil if the gamestate doesn't exist.
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)

	// DeleteGameState removes a gamestate by id
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// HasGameState reports whether a record exists for id
	HasGameState(ctx context.Context, id uuid.UUID) (bool, error)
}

// EncodeRecord marshals the persisted subset of gs, stamping it with now.
func EncodeRecord(gs *state.GameState, now time.Time) ([]byte, error) {
	if gs == nil {
		return nil, fmt.Errorf("gamestate cannot be nil")
	}
	data, err := json.Marshal(state.ToRecord(gs, now))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a persisted record.
func DecodeRecord(data []byte) (*state.GameState, error) {
	var rec state.SaveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return state.FromRecord(&rec), nil
}
