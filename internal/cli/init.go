// Package cli provides common initialization for the binaries under cmd/.
package cli

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"expansive/internal/config"
	applog "expansive/internal/log"
	"expansive/internal/storage"
)

// SetupLogger initializes structured logging with default settings and
// installs it as the process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the SQLite store and runs pending migrations.
// Returns the repository or exits the process on failure.
func InitStore(logger *applog.Logger, dbPath string, busyTimeout time.Duration) *storage.Repository {
	repo, err := storage.NewRepository(dbPath, busyTimeout)
	if err != nil {
		logger.Error("Failed to initialize store", applog.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return repo
}
