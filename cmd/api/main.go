package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/han-inventor/internal/config"
	"github.com/jwebster45206/han-inventor/internal/game"
	"github.com/jwebster45206/han-inventor/internal/handlers"
	"github.com/jwebster45206/han-inventor/internal/logger"
	"github.com/jwebster45206/han-inventor/internal/middleware"
	"github.com/jwebster45206/han-inventor/internal/services"
	internalstorage "github.com/jwebster45206/han-inventor/internal/storage"
	"github.com/jwebster45206/han-inventor/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting HanInventor API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"model_name", cfg.ModelName)

	llmService := services.NewDashScopeService(cfg.DashScopeAPIKey, cfg.ModelName, cfg.LLMEndpoint, log)
	if !llmService.Configured() {
		// Quests and guided questions fall back to defaults; inventions fail.
		log.Warn("DASHSCOPE_API_KEY is not set; inventions will be rejected")
	}

	store, err := openStorage(cfg, log)
	if err != nil {
		log.Error("Failed to open storage", "error", err, "backend", cfg.StorageBackend)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	gateway := services.NewGateway(llmService, log)
	gameService := game.NewService(game.NewStore(store, log), gateway, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, llmService, log)
	mux.Handle("/health", healthHandler)

	storylineHandler := handlers.NewStorylineHandler(log)
	mux.Handle("/v1/storyline", storylineHandler)

	gameStateHandler := handlers.NewGameStateHandler(gameService, log)
	mux.Handle("/v1/gamestate", gameStateHandler)
	mux.Handle("/v1/gamestate/", gameStateHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // above the 90s upstream timeout
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Close storage connection after in-flight requests have finished
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

func openStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		return internalstorage.NewSQLiteStorage(cfg.SQLitePath, log)
	default:
		rs := internalstorage.NewRedisStorage(cfg.RedisURL, log)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := rs.WaitForConnection(ctx); err != nil {
			return nil, err
		}
		return rs, nil
	}
}
