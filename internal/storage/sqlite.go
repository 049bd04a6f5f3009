package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/han-inventor/pkg/state"
	"github.com/jwebster45206/han-inventor/pkg/storage"
)

// SQLiteStorage implements the Storage interface on a single SQLite file.
// Rows hold the same JSON record the Redis backend stores.
type SQLiteStorage struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Storage interface
var _ storage.Storage = (*SQLiteStorage)(nil)

type gameStateRow struct {
	ID        string `db:"id"`
	Record    string `db:"record"`
	UpdatedAt int64  `db:"updated_at"`
}

// NewSQLiteStorage opens or creates the database at path and migrates it.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	// modernc.org/sqlite applies each _pragma on every new connection
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStorage{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_states (
		id TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.conn.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", "error", err)
		return err
	}
	s.logger.Info("SQLite database closed")
	return nil
}

func (s *SQLiteStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	now := time.Now()
	data, err := storage.EncodeRecord(gs, now)
	if err != nil {
		s.logger.Error("Failed to marshal gamestate", "uuid", id, "error", err)
		return err
	}

	_, err = s.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO game_states (id, record, updated_at) VALUES (?, ?, ?)",
		id.String(), string(data), now.UnixMilli(),
	)
	if err != nil {
		s.logger.Error("Failed to save gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}
	gs.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	var row gameStateRow
	err := s.conn.GetContext(ctx, &row,
		"SELECT id, record, updated_at FROM game_states WHERE id = ?", id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("Gamestate not found", "uuid", id)
			return nil, nil
		}
		s.logger.Error("Failed to load gamestate", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}

	gs, err := storage.DecodeRecord([]byte(row.Record))
	if err != nil {
		s.logger.Error("Failed to unmarshal gamestate", "uuid", id, "error", err)
		return nil, err
	}
	gs.ID = id
	return gs, nil
}

func (s *SQLiteStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM game_states WHERE id = ?", id.String()); err != nil {
		s.logger.Error("Failed to delete gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) HasGameState(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int
	if err := s.conn.GetContext(ctx, &n, "SELECT COUNT(1) FROM game_states WHERE id = ?", id.String()); err != nil {
		return false, fmt.Errorf("failed to check gamestate: %w", err)
	}
	return n > 0, nil
}
