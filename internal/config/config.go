// Package config loads process configuration from environment variables.
// Runtime-mutable settings live in the persisted settings store; this layer
// only covers bootstrap values and first-run seeds.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config aggregates the chat client's bootstrap configuration.
type Config struct {
	// OpenRouter credential and endpoint. APIKey seeds the persisted
	// settings on first run; BaseURL overrides the production endpoint.
	APIKey  string
	BaseURL string
	Model   string

	// Optional generation-parameter seeds.
	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	// DataDir holds snapshot files; DatabasePath, when set, switches
	// persistence to SQLite.
	DataDir      string
	DatabasePath string

	// RequestTimeout bounds a single generation including streaming.
	RequestTimeout time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	temperature, err := parseOptionalFloatEnv("VIETRP_TEMPERATURE")
	if err != nil {
		return nil, err
	}

	topP, err := parseOptionalFloatEnv("VIETRP_TOP_P")
	if err != nil {
		return nil, err
	}

	maxTokens, err := parseOptionalIntEnv("VIETRP_MAX_TOKENS")
	if err != nil {
		return nil, err
	}

	timeoutSeconds := 120
	if override, err := parseOptionalIntEnv("VIETRP_REQUEST_TIMEOUT"); err != nil {
		return nil, err
	} else if override != nil {
		if *override < 1 {
			return nil, fmt.Errorf("invalid VIETRP_REQUEST_TIMEOUT value %d: must be positive", *override)
		}
		timeoutSeconds = *override
	}

	dataDir := strings.TrimSpace(os.Getenv("VIETRP_DATA_DIR"))
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vietrp")
	}

	return &Config{
		APIKey:         strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		BaseURL:        strings.TrimSpace(os.Getenv("OPENROUTER_BASE_URL")),
		Model:          strings.TrimSpace(os.Getenv("OPENROUTER_MODEL")),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		DataDir:        dataDir,
		DatabasePath:   strings.TrimSpace(os.Getenv("VIETRP_DB")),
		RequestTimeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
