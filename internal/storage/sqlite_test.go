package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/han-inventor/pkg/state"
)

func setupSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "han.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	gs := state.NewGameState()
	gs.NationalPower = 150
	gs.HistoricalEvents = append(gs.HistoricalEvents, "发明「连弩」问世，国力提升150")

	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, 150, loaded.NationalPower)
	assert.Equal(t, gs.HistoricalEvents, loaded.HistoricalEvents)
	assert.Equal(t, state.DefaultMaxNationalPower, loaded.MaxNationalPower)
}

func TestSQLiteStorage_Overwrite(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	gs := state.NewGameState()
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	gs.NationalPower = 300
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, loaded.NationalPower)
}

func TestSQLiteStorage_LoadMissing(t *testing.T) {
	s := setupSQLite(t)

	loaded, err := s.LoadGameState(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStorage_DeleteAndHas(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()
	gs := state.NewGameState()

	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	has, err := s.HasGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.DeleteGameState(ctx, gs.ID))
	has, err = s.HasGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.False(t, has)
	assert.NoError(t, s.Ping(ctx))
}

func TestSQLiteStorage_Pragmas(t *testing.T) {
	s := setupSQLite(t)

	var mode string
	require.NoError(t, s.conn.Get(&mode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, s.conn.Get(&timeout, "PRAGMA busy_timeout"))
	assert.Equal(t, 5000, timeout)
}
