package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// placeholderAPIKey ships in the sample .env and counts as unset
const placeholderAPIKey = "your_actual_api_key_here"

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DashScopeAPIKey string
	LLMEndpoint     string
	ModelName       string

	StorageBackend string
	RedisURL       string
	SQLitePath     string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DashScopeAPIKey: apiKey(),
		LLMEndpoint:     getEnv("LLM_ENDPOINT", "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"),
		ModelName:       getEnv("MODEL_NAME", "qwen-plus"),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", StorageRedis)),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		SQLitePath:      getEnv("SQLITE_PATH", "han-inventor.db"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis storage backend")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite storage backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q (supported: %s, %s)", c.StorageBackend, StorageRedis, StorageSQLite)
	}
	return nil
}

func apiKey() string {
	for _, key := range []string{"DASHSCOPE_API_KEY", "VITE_ALIYUN_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" && v != placeholderAPIKey {
			return v
		}
	}
	return ""
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
