package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dejotaortega/finanzas-deiner/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	SnapshotInterval time.Duration

	// Category catalog override. When set, the file replaces the
	// built-in catalog ({"expense": [...], "income": [...]}).
	CategoryCatalogPath string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finanzas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finanzas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", 15*time.Minute),

		CategoryCatalogPath: getEnv("CATEGORY_CATALOG_PATH", ""),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SnapshotInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid snapshot interval %v: must be at least 1 second", c.SnapshotInterval))
	} else if c.SnapshotInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid snapshot interval %v: must be at most 24 hours", c.SnapshotInterval))
	}

	if c.CategoryCatalogPath != "" {
		if _, err := os.Stat(c.CategoryCatalogPath); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("category catalog file does not exist: %s", c.CategoryCatalogPath))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Catalog loads the category catalog, either the built-in default or
// the JSON file named by CATEGORY_CATALOG_PATH.
func (c *Config) Catalog() (core.Catalog, error) {
	if c.CategoryCatalogPath == "" {
		return core.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(c.CategoryCatalogPath)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("read category catalog: %w", err)
	}
	var file struct {
		Expense []string `json:"expense"`
		Income  []string `json:"income"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return core.Catalog{}, fmt.Errorf("parse category catalog: %w", err)
	}
	if len(file.Expense) == 0 || len(file.Income) == 0 {
		return core.Catalog{}, fmt.Errorf("category catalog must list both expense and income categories")
	}
	return core.Catalog{Expense: file.Expense, Income: file.Income}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
