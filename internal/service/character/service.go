// Package character manages the character collection and the
// selected-character pointer.
package character

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lamnguyen/vietrp/internal/model/character"
	"github.com/lamnguyen/vietrp/internal/storage"
)

type snapshot struct {
	Characters []character.Character `json:"characters"`
	SelectedID string                `json:"selectedCharacterId,omitempty"`
}

// Service owns the character collection. Characters are referenced from
// chats and messages by id only; deleting one leaves those references
// dangling, and readers resolve them through Get's ok result.
type Service struct {
	mu         sync.RWMutex
	characters []character.Character
	selectedID string
	backend    storage.Backend
}

// NewService loads the persisted collection, seeding the built-in characters
// on first run.
func NewService(backend storage.Backend) (*Service, error) {
	s := &Service{backend: backend}

	data, err := backend.Load(storage.NamespaceCharacters)
	if err != nil {
		return nil, fmt.Errorf("load character snapshot: %w", err)
	}
	if data == nil {
		s.characters = character.Seed()
		s.persistLocked()
		return s, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode character snapshot: %w", err)
	}
	s.characters = snap.Characters
	s.selectedID = snap.SelectedID
	return s, nil
}

// List returns all characters.
func (s *Service) List() []character.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]character.Character(nil), s.characters...)
}

// Get resolves a character id. The ok result is false for dangling
// references; callers render those as "Unknown" rather than failing.
func (s *Service) Get(id string) (character.Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.characters {
		if c.ID == id {
			return c, true
		}
	}
	return character.Character{}, false
}

// Add appends an authored character.
func (s *Service) Add(c character.Character) {
	s.mu.Lock()
	s.characters = append(s.characters, c)
	s.persistLocked()
	s.mu.Unlock()
}

// Update carries a partial character mutation; nil fields are untouched.
type Update struct {
	Name             *string
	Avatar           *string
	Persona          *string
	Scenario         *string
	FirstMessage     *string
	ExampleDialogues *string
}

// UpdateCharacter merges the partial update and refreshes UpdatedAt. Unknown
// ids are a no-op.
func (s *Service) UpdateCharacter(id string, update Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.characters {
		if s.characters[i].ID != id {
			continue
		}
		if update.Name != nil {
			s.characters[i].Name = *update.Name
		}
		if update.Avatar != nil {
			s.characters[i].Avatar = *update.Avatar
		}
		if update.Persona != nil {
			s.characters[i].Persona = *update.Persona
		}
		if update.Scenario != nil {
			s.characters[i].Scenario = *update.Scenario
		}
		if update.FirstMessage != nil {
			s.characters[i].FirstMessage = *update.FirstMessage
		}
		if update.ExampleDialogues != nil {
			s.characters[i].ExampleDialogues = *update.ExampleDialogues
		}
		s.characters[i].UpdatedAt = time.Now().UTC()
		s.persistLocked()
		return
	}
}

// Delete removes a character, clearing the selection if it pointed there.
// Chats and messages referencing the id are not touched.
func (s *Service) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.characters[:0]
	for _, c := range s.characters {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.characters = kept
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.persistLocked()
}

// Select swaps the selected-character pointer; "" clears it.
func (s *Service) Select(id string) {
	s.mu.Lock()
	s.selectedID = id
	s.persistLocked()
	s.mu.Unlock()
}

// SelectedID returns the selected-character pointer.
func (s *Service) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Import builds a character from partial data, filling defaults and fresh
// identity, and adds it to the collection.
func (s *Service) Import(data character.Character) character.Character {
	now := time.Now().UTC()
	imported := character.Character{
		ID:               "char-" + uuid.NewString(),
		Name:             data.Name,
		Avatar:           data.Avatar,
		Persona:          data.Persona,
		Scenario:         data.Scenario,
		FirstMessage:     data.FirstMessage,
		ExampleDialogues: data.ExampleDialogues,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if imported.Name == "" {
		imported.Name = "Unnamed Character"
	}

	s.mu.Lock()
	s.characters = append(s.characters, imported)
	s.persistLocked()
	s.mu.Unlock()
	return imported
}

func (s *Service) persistLocked() {
	snap := snapshot{Characters: s.characters, SelectedID: s.selectedID}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[store] failed to encode character snapshot: %v", err)
		return
	}
	if err := s.backend.Save(storage.NamespaceCharacters, data); err != nil {
		log.Printf("[store] failed to save character snapshot: %v", err)
	}
}
