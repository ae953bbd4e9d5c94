package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamnguyen/vietrp/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("VIETRP_DATA_DIR", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.APIKey)
	assert.Nil(t, cfg.Temperature)
	assert.Nil(t, cfg.TopP)
	assert.Nil(t, cfg.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENROUTER_API_KEY", "sk-env")
	t.Setenv("OPENROUTER_MODEL", "openai/gpt-4o")
	t.Setenv("VIETRP_TEMPERATURE", "0.5")
	t.Setenv("VIETRP_MAX_TOKENS", "2048")
	t.Setenv("VIETRP_REQUEST_TIMEOUT", "30")
	t.Setenv("VIETRP_DATA_DIR", dir)
	t.Setenv("VIETRP_DB", dir+"/vietrp.db")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "openai/gpt-4o", cfg.Model)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.5, *cfg.Temperature)
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 2048, *cfg.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, dir+"/vietrp.db", cfg.DatabasePath)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("VIETRP_DATA_DIR", t.TempDir())

	t.Setenv("VIETRP_TEMPERATURE", "hot")
	_, err := config.Load()
	assert.Error(t, err)
	t.Setenv("VIETRP_TEMPERATURE", "")

	t.Setenv("VIETRP_REQUEST_TIMEOUT", "0")
	_, err = config.Load()
	assert.Error(t, err)
}
