// Package main contains the mercury CLI commands.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/llm"
	"github.com/mercuryedi/mercury/internal/retrieval"
	"github.com/mercuryedi/mercury/internal/storage"
)

// databasePath resolves the configured database location, defaulting to
// the user's data directory.
func databasePath() (string, error) {
	dbPath := viper.GetString("database.path")
	if dbPath != "" {
		return expandPath(dbPath), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "mercury", "mercury.db"), nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// openStorage opens the database and runs migrations.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if mkErr := os.MkdirAll(filepath.Dir(dbPath), 0o755); mkErr != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", mkErr)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// createExtractionClient creates an extraction client from configuration.
// This function is shared by the commands that need extraction.
func createExtractionClient() (llm.Client, error) {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = "openai"
	}

	cfg := llm.Config{
		Provider:          provider,
		BaseURL:           viper.GetString("llm.base_url"),
		Model:             viper.GetString("llm.model"),
		Temperature:       viper.GetFloat64("llm.temperature"),
		MaxTokens:         viper.GetInt("llm.max_tokens"),
		RequestsPerMinute: viper.GetInt("llm.rate_limit"),
		CacheTTL:          viper.GetInt("llm.cache_ttl"),
	}

	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, common.NewUserError(
			"API key not found; set llm.api_key or the OPENAI_API_KEY environment variable",
			common.ErrMissingConfig)
	}
	cfg.APIKey = apiKey

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction client: %w", err)
	}
	return client, nil
}

// createRetriever creates the optional chunk retriever. Returns nil when
// retrieval is not configured.
func createRetriever() (*retrieval.Retriever, error) {
	baseURL := viper.GetString("retrieval.base_url")
	if baseURL == "" {
		return nil, nil
	}

	collection := viper.GetString("retrieval.collection")
	if collection == "" {
		collection = "documents"
	}

	r, err := retrieval.NewRetriever(retrieval.Config{
		BaseURL:    baseURL,
		Collection: collection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}
	return r, nil
}
