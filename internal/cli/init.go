// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/finanzas and cmd/finanzas-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/dejotaortega/finanzas-deiner/internal/config"
	"github.com/dejotaortega/finanzas-deiner/internal/core"
	applog "github.com/dejotaortega/finanzas-deiner/internal/log"
	"github.com/dejotaortega/finanzas-deiner/internal/storage"
)

// SetupLogger initializes structured logging with default settings
// and installs it as the process default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
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
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStorage opens the SQLite database and runs migrations.
// Returns the repository or exits the process on failure.
func InitStorage(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, applog.FieldPath, dbPath)
		os.Exit(1)
	}
	return repo
}

// LoadCatalog resolves the category catalog, falling back to the
// built-in one when no override file is configured.
func LoadCatalog(logger *applog.Logger, cfg *config.Config) core.Catalog {
	catalog, err := cfg.Catalog()
	if err != nil {
		logger.Error("Failed to load category catalog", applog.FieldError, err, applog.FieldPath, cfg.CategoryCatalogPath)
		os.Exit(1)
	}
	return catalog
}
