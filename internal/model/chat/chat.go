package chat

import "time"

// Chat is a conversation thread binding an ordered message history to one or
// more characters. The current design uses exactly one character per chat.
//
// LastMessage caches the first 100 runes of the most recently appended
// message for list previews. It is refreshed on append only; edits and
// deletes leave it stale.
type Chat struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CharacterIDs []string  `json:"characterIds"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastMessage  string    `json:"lastMessage,omitempty"`
}
