package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamnguyen/vietrp/internal/model/pronoun"
	settingsmodel "github.com/lamnguyen/vietrp/internal/model/settings"
	"github.com/lamnguyen/vietrp/internal/service/settings"
	"github.com/lamnguyen/vietrp/internal/storage"
)

func newTestService(t *testing.T) *settings.Service {
	t.Helper()
	s, err := settings.NewService(storage.NewMemory())
	require.NoError(t, err)
	return s
}

func TestFirstRunUsesDefaults(t *testing.T) {
	s := newTestService(t)

	got := s.Get()
	assert.Equal(t, settingsmodel.Defaults(), got)
	assert.Equal(t, 0.8, got.Temperature)
	assert.Equal(t, 1024, got.MaxTokens)
	assert.Equal(t, 1.0, got.TopP)
	assert.Equal(t, "neutral", got.PronounPairID)
}

func TestApplyPartialUpdate(t *testing.T) {
	s := newTestService(t)

	temperature := 0.5
	s.Apply(settings.Update{Temperature: &temperature})

	got := s.Get()
	assert.Equal(t, 0.5, got.Temperature)
	// Untouched fields keep their defaults.
	assert.Equal(t, settingsmodel.Defaults().Model, got.Model)
	assert.Equal(t, settingsmodel.Defaults().MaxTokens, got.MaxTokens)
}

func TestSettersPersistAcrossRestart(t *testing.T) {
	backend := storage.NewMemory()

	s, err := settings.NewService(backend)
	require.NoError(t, err)
	s.SetAPIKey("sk-persisted")
	s.SetModel("openai/gpt-4o")

	restored, err := settings.NewService(backend)
	require.NoError(t, err)

	got := restored.Get()
	assert.Equal(t, "sk-persisted", got.APIKey)
	assert.Equal(t, "openai/gpt-4o", got.Model)
}

func TestPronounPairResolution(t *testing.T) {
	s := newTestService(t)

	// Default: catalog entry for the configured id.
	assert.Equal(t, "neutral", s.PronounPair().ID)

	id := "friends"
	s.Apply(settings.Update{PronounPairID: &id})
	assert.Equal(t, "friends", s.PronounPair().ID)

	// Custom pair overrides the catalog id.
	custom := pronoun.Pair{ID: "custom", UserPronoun: "ta", CharPronoun: "ngươi"}
	s.Apply(settings.Update{CustomPronounPair: &custom})
	assert.Equal(t, "custom", s.PronounPair().ID)

	// Clearing the override falls back to the catalog id.
	s.Apply(settings.Update{ClearCustomPair: true})
	assert.Equal(t, "friends", s.PronounPair().ID)
}

func TestPronounPairUnknownIDFallsBack(t *testing.T) {
	s := newTestService(t)

	id := "does-not-exist"
	s.Apply(settings.Update{PronounPairID: &id})

	assert.Equal(t, pronoun.Catalog()[0].ID, s.PronounPair().ID)
}

func TestResetRestoresDefaults(t *testing.T) {
	backend := storage.NewMemory()

	s, err := settings.NewService(backend)
	require.NoError(t, err)
	s.SetAPIKey("sk-temp")
	s.Reset()

	assert.Equal(t, settingsmodel.Defaults(), s.Get())

	// The reset is persisted, not just in-memory.
	restored, err := settings.NewService(backend)
	require.NoError(t, err)
	assert.Equal(t, settingsmodel.Defaults(), restored.Get())
}
