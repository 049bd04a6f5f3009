package handlers

import (
	"io"
	"log/slog"

	"github.com/jwebster45206/han-inventor/internal/game"
	"github.com/jwebster45206/han-inventor/internal/services"
	"github.com/jwebster45206/han-inventor/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

type fixture struct {
	handler *GameStateHandler
	storage *storage.MockStorage
	llm     *services.MockLLM
	service *game.Service
}

func newFixture(results ...services.Result) *fixture {
	logger := testLogger()
	mockStorage := storage.NewMockStorage()
	llm := services.NewMockLLM(results...)
	svc := game.NewService(game.NewStore(mockStorage, logger), services.NewGateway(llm, logger), logger)
	return &fixture{
		handler: NewGameStateHandler(svc, logger),
		storage: mockStorage,
		llm:     llm,
		service: svc,
	}
}
