package chat

import "time"

// Roles understood by the engine and forwarded to the completion API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn inside a chat. A message belongs to exactly one
// chat and is never reparented.
type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chatId"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	CharacterID string    `json:"characterId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsEdited    bool      `json:"isEdited,omitempty"`
}
