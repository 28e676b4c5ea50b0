package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the settings read once at process start.
type Config struct {
	Addr        string
	DatabaseURL string
	CORSOrigin  string
	StaticDir   string
	LogLevel    string
	LogFormat   string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	return Config{
		Addr:        EnvOrDefault("TASKS_ADDR", ":8000"),
		DatabaseURL: EnvOrDefault("DATABASE_URL", "sqlite://data/tasks.db"),
		CORSOrigin:  EnvOrDefault("CORS_ORIGIN", "http://localhost:9898"),
		StaticDir:   os.Getenv("TASKS_STATIC_DIR"),
		LogLevel:    EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   EnvOrDefault("LOG_FORMAT", "json"),
	}, nil
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
