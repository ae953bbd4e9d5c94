// Package chat holds the persisted conversation state: every chat, every
// message, the active-chat pointer and the process-wide generating flag. It
// is the single source of truth the display layer renders.
package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lamnguyen/vietrp/internal/model/chat"
	"github.com/lamnguyen/vietrp/internal/storage"
)

// lastMessagePreviewLen bounds the denormalized chat preview.
const lastMessagePreviewLen = 100

// snapshot is the persisted form of the store. The generating flag is
// runtime-only; persisting it would wedge a restore taken mid-stream.
type snapshot struct {
	Chats        []chat.Chat    `json:"chats"`
	Messages     []chat.Message `json:"messages"`
	ActiveChatID string         `json:"activeChatId,omitempty"`
}

// Service is the conversation state store. All mutations run under one
// mutex and persist a full snapshot before returning, so callers observe
// them as atomic.
type Service struct {
	mu           sync.RWMutex
	chats        []chat.Chat
	messages     []chat.Message
	activeChatID string
	generating   bool
	backend      storage.Backend
}

// NewService loads any persisted conversation snapshot from the backend.
func NewService(backend storage.Backend) (*Service, error) {
	s := &Service{backend: backend}

	data, err := backend.Load(storage.NamespaceChats)
	if err != nil {
		return nil, fmt.Errorf("load chat snapshot: %w", err)
	}
	if data != nil {
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode chat snapshot: %w", err)
		}
		s.chats = snap.Chats
		s.messages = snap.Messages
		s.activeChatID = snap.ActiveChatID
	}

	return s, nil
}

// CreateChat appends a new chat and makes it active. An empty name defaults
// to a positional label.
func (s *Service) CreateChat(characterIDs []string, name string) chat.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = fmt.Sprintf("Chat %d", len(s.chats)+1)
	}

	now := time.Now().UTC()
	newChat := chat.Chat{
		ID:           uuid.NewString(),
		Name:         name,
		CharacterIDs: append([]string(nil), characterIDs...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.chats = append(s.chats, newChat)
	s.activeChatID = newChat.ID
	s.persistLocked()
	return newChat
}

// DeleteChat removes the chat and cascade-removes its messages. If the chat
// was active the pointer is cleared; no other chat is auto-selected.
func (s *Service) DeleteChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chats[:0]
	for _, c := range s.chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.chats = kept

	keptMsgs := s.messages[:0]
	for _, m := range s.messages {
		if m.ChatID != id {
			keptMsgs = append(keptMsgs, m)
		}
	}
	s.messages = keptMsgs

	if s.activeChatID == id {
		s.activeChatID = ""
	}
	s.persistLocked()
}

// SetActiveChat swaps the active pointer. Pass "" to clear. Callers
// guarantee the id refers to an existing chat.
func (s *Service) SetActiveChat(id string) {
	s.mu.Lock()
	s.activeChatID = id
	s.persistLocked()
	s.mu.Unlock()
}

// ActiveChatID returns the current active pointer, "" when none.
func (s *Service) ActiveChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeChatID
}

// ActiveChat resolves the active pointer to its chat.
func (s *Service) ActiveChat() (chat.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeChatID == "" {
		return chat.Chat{}, false
	}
	return s.chatByIDLocked(s.activeChatID)
}

// Chats returns all chats in creation order.
func (s *Service) Chats() []chat.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Chat(nil), s.chats...)
}

// ChatByID looks up a chat.
func (s *Service) ChatByID(id string) (chat.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatByIDLocked(id)
}

func (s *Service) chatByIDLocked(id string) (chat.Chat, bool) {
	for _, c := range s.chats {
		if c.ID == id {
			return c, true
		}
	}
	return chat.Chat{}, false
}

// ChatUpdate carries a partial chat mutation; nil fields are left untouched.
type ChatUpdate struct {
	Name         *string
	CharacterIDs []string
	LastMessage  *string
}

// UpdateChat merges the partial update and refreshes UpdatedAt. Unknown ids
// are a no-op.
func (s *Service) UpdateChat(id string, update ChatUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.chats {
		if s.chats[i].ID != id {
			continue
		}
		if update.Name != nil {
			s.chats[i].Name = *update.Name
		}
		if update.CharacterIDs != nil {
			s.chats[i].CharacterIDs = append([]string(nil), update.CharacterIDs...)
		}
		if update.LastMessage != nil {
			s.chats[i].LastMessage = *update.LastMessage
		}
		s.chats[i].UpdatedAt = time.Now().UTC()
		s.persistLocked()
		return
	}
}

// NewMessage is the caller-supplied part of a message; id and timestamp are
// stamped on append.
type NewMessage struct {
	ChatID      string
	Role        string
	Content     string
	CharacterID string
}

// AddMessage appends a message and refreshes the owning chat's LastMessage
// preview and UpdatedAt. The preview tracks appends only: a later edit or
// delete of this message leaves it stale.
func (s *Service) AddMessage(data NewMessage) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := chat.Message{
		ID:          uuid.NewString(),
		ChatID:      data.ChatID,
		Role:        data.Role,
		Content:     data.Content,
		CharacterID: data.CharacterID,
		Timestamp:   time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)

	for i := range s.chats {
		if s.chats[i].ID == data.ChatID {
			s.chats[i].LastMessage = truncateRunes(msg.Content, lastMessagePreviewLen)
			s.chats[i].UpdatedAt = msg.Timestamp
			break
		}
	}

	s.persistLocked()
	return msg
}

// UpdateMessage replaces a message's content in place and marks it edited.
// The flag is set even when the new content equals the old, and never reset.
func (s *Service) UpdateMessage(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = content
			s.messages[i].IsEdited = true
			s.persistLocked()
			return
		}
	}
}

// DeleteMessage removes a message. The owning chat's LastMessage preview is
// deliberately left alone.
func (s *Service) DeleteMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	s.persistLocked()
}

// Message looks up a single message by id.
func (s *Service) Message(id string) (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return chat.Message{}, false
}

// GetChatMessages returns the chat's messages in append order, which is also
// chronological order.
func (s *Service) GetChatMessages(chatID string) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []chat.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			result = append(result, m)
		}
	}
	return result
}

// IsGenerating reports whether a generation is in flight anywhere in the
// process. The flag is process-wide, not per-chat.
func (s *Service) IsGenerating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generating
}

// SetGenerating forces the generating flag.
func (s *Service) SetGenerating(generating bool) {
	s.mu.Lock()
	s.generating = generating
	s.mu.Unlock()
}

// BeginGeneration attempts to claim the single generation slot, reporting
// whether the claim succeeded. This is the enforcement point of the
// single-flight invariant.
func (s *Service) BeginGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return false
	}
	s.generating = true
	return true
}

// EndGeneration releases the generation slot.
func (s *Service) EndGeneration() {
	s.SetGenerating(false)
}

// persistLocked writes the full snapshot. Persistence failures are logged,
// not propagated: the in-memory store stays authoritative and usable.
func (s *Service) persistLocked() {
	snap := snapshot{
		Chats:        s.chats,
		Messages:     s.messages,
		ActiveChatID: s.activeChatID,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[store] failed to encode chat snapshot: %v", err)
		return
	}
	if err := s.backend.Save(storage.NamespaceChats, data); err != nil {
		log.Printf("[store] failed to save chat snapshot: %v", err)
	}
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
