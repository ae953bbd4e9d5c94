// Package settings manages the persisted settings singleton.
package settings

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/lamnguyen/vietrp/internal/model/pronoun"
	"github.com/lamnguyen/vietrp/internal/model/settings"
	"github.com/lamnguyen/vietrp/internal/storage"
)

// Service owns the settings singleton: initialized to defaults on first run,
// mutated through partial updates, reset-to-defaults but never deleted.
type Service struct {
	mu       sync.RWMutex
	settings settings.Settings
	backend  storage.Backend
}

// NewService loads persisted settings, falling back to defaults.
func NewService(backend storage.Backend) (*Service, error) {
	s := &Service{backend: backend, settings: settings.Defaults()}

	data, err := backend.Load(storage.NamespaceSettings)
	if err != nil {
		return nil, fmt.Errorf("load settings snapshot: %w", err)
	}
	if data != nil {
		if err := json.Unmarshal(data, &s.settings); err != nil {
			return nil, fmt.Errorf("decode settings snapshot: %w", err)
		}
	}
	return s, nil
}

// Get returns a copy of the current settings.
func (s *Service) Get() settings.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update carries a partial settings mutation; nil fields are untouched.
type Update struct {
	APIKey            *string
	Model             *string
	Temperature       *float64
	MaxTokens         *int
	TopP              *float64
	PronounPairID     *string
	CustomPronounPair *pronoun.Pair
	ClearCustomPair   bool
	DarkMode          *bool
	SystemPrompt      *string
}

// Apply merges the partial update into the singleton.
func (s *Service) Apply(update Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.APIKey != nil {
		s.settings.APIKey = *update.APIKey
	}
	if update.Model != nil {
		s.settings.Model = *update.Model
	}
	if update.Temperature != nil {
		s.settings.Temperature = *update.Temperature
	}
	if update.MaxTokens != nil {
		s.settings.MaxTokens = *update.MaxTokens
	}
	if update.TopP != nil {
		s.settings.TopP = *update.TopP
	}
	if update.PronounPairID != nil {
		s.settings.PronounPairID = *update.PronounPairID
	}
	if update.CustomPronounPair != nil {
		pair := *update.CustomPronounPair
		s.settings.CustomPronounPair = &pair
	}
	if update.ClearCustomPair {
		s.settings.CustomPronounPair = nil
	}
	if update.DarkMode != nil {
		s.settings.DarkMode = *update.DarkMode
	}
	if update.SystemPrompt != nil {
		s.settings.SystemPrompt = *update.SystemPrompt
	}

	s.persistLocked()
}

// SetAPIKey replaces the API credential.
func (s *Service) SetAPIKey(key string) {
	s.Apply(Update{APIKey: &key})
}

// SetModel replaces the model identifier.
func (s *Service) SetModel(model string) {
	s.Apply(Update{Model: &model})
}

// PronounPair resolves the active convention: the custom override when set,
// then the catalog entry for PronounPairID, then the first catalog entry.
func (s *Service) PronounPair() pronoun.Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings.CustomPronounPair != nil {
		return *s.settings.CustomPronounPair
	}
	if pair, ok := pronoun.Find(s.settings.PronounPairID); ok {
		return pair
	}
	return pronoun.Catalog()[0]
}

// Reset restores the defaults.
func (s *Service) Reset() {
	s.mu.Lock()
	s.settings = settings.Defaults()
	s.persistLocked()
	s.mu.Unlock()
}

func (s *Service) persistLocked() {
	data, err := json.Marshal(s.settings)
	if err != nil {
		log.Printf("[store] failed to encode settings snapshot: %v", err)
		return
	}
	if err := s.backend.Save(storage.NamespaceSettings, data); err != nil {
		log.Printf("[store] failed to save settings snapshot: %v", err)
	}
}
