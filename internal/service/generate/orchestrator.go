// Package generate drives a single in-flight generation: send a user turn,
// stream the reply into the store fragment by fragment, or regenerate the
// last assistant turn.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lamnguyen/vietrp/internal/model/character"
	chatmodel "github.com/lamnguyen/vietrp/internal/model/chat"
	modelsettings "github.com/lamnguyen/vietrp/internal/model/settings"
	"github.com/lamnguyen/vietrp/internal/openrouter"
	"github.com/lamnguyen/vietrp/internal/prompt"
	characterservice "github.com/lamnguyen/vietrp/internal/service/character"
	chatservice "github.com/lamnguyen/vietrp/internal/service/chat"
	settingsservice "github.com/lamnguyen/vietrp/internal/service/settings"
)

// Precondition failures. These are refused before any state change.
var (
	ErrEmptyInput   = errors.New("generate: input is empty")
	ErrNoActiveChat = errors.New("generate: no active chat")
	ErrNoCharacter  = errors.New("generate: no character resolved for chat")
	ErrBusy         = errors.New("generate: a generation is already in progress")
)

// Orchestrator coordinates the prompt builder, the completion client and the
// conversation store for one generation cycle at a time.
type Orchestrator struct {
	chats      *chatservice.Service
	characters *characterservice.Service
	settings   *settingsservice.Service
	clients    *openrouter.Cache

	// OnFragment, when set, observes each streamed fragment as it is
	// applied to the store. The display boundary hooks in here.
	OnFragment func(fragment string)
}

// New wires an orchestrator over the shared services.
func New(chats *chatservice.Service, characters *characterservice.Service, settings *settingsservice.Service, clients *openrouter.Cache) *Orchestrator {
	return &Orchestrator{
		chats:      chats,
		characters: characters,
		settings:   settings,
		clients:    clients,
	}
}

// Send appends the user's message to the active chat and streams the
// assistant reply into a placeholder message. Failures after the stream
// opens are surfaced as an assistant-role error message in the history; the
// generating flag is always cleared.
func (o *Orchestrator) Send(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmptyInput
	}

	activeChat, ok := o.chats.ActiveChat()
	if !ok {
		return ErrNoActiveChat
	}
	char, ok := o.resolveCharacter(activeChat.CharacterIDs)
	if !ok {
		return ErrNoCharacter
	}

	cfg := o.settings.Get()
	if cfg.APIKey == "" {
		return openrouter.ErrMissingAPIKey
	}

	if !o.chats.BeginGeneration() {
		return ErrBusy
	}
	defer o.chats.EndGeneration()

	o.chats.AddMessage(chatservice.NewMessage{
		ChatID:  activeChat.ID,
		Role:    chatmodel.RoleUser,
		Content: input,
	})

	history := o.chats.GetChatMessages(activeChat.ID)
	messages := o.buildPrompt(history, char, cfg.SystemPrompt, cfg.Model)

	placeholder := o.chats.AddMessage(chatservice.NewMessage{
		ChatID:      activeChat.ID,
		Role:        chatmodel.RoleAssistant,
		Content:     "",
		CharacterID: char.ID,
	})

	stream, err := o.clients.Get(cfg.APIKey).ChatStream(ctx, messages, cfg.Model, requestOptions(cfg))
	if err != nil {
		o.appendErrorMessage(activeChat.ID, char.ID, err)
		return nil
	}
	defer stream.Close()

	var full strings.Builder
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The placeholder keeps whatever partial content streamed in.
			o.appendErrorMessage(activeChat.ID, char.ID, err)
			return nil
		}
		full.WriteString(fragment)
		o.chats.UpdateMessage(placeholder.ID, full.String())
		if o.OnFragment != nil {
			o.OnFragment(fragment)
		}
	}

	return nil
}

// Regenerate replays the most recent assistant turn: the prompt is rebuilt
// from the history strictly before that message and the fresh completion
// overwrites its content in place. Stream failures are logged, never
// appended to the history.
func (o *Orchestrator) Regenerate(ctx context.Context) error {
	activeChat, ok := o.chats.ActiveChat()
	if !ok {
		return ErrNoActiveChat
	}
	char, ok := o.resolveCharacter(activeChat.CharacterIDs)
	if !ok {
		return ErrNoCharacter
	}

	history := o.chats.GetChatMessages(activeChat.ID)
	lastAssistant := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == chatmodel.RoleAssistant {
			lastAssistant = i
			break
		}
	}
	if lastAssistant == -1 {
		return nil
	}

	if !o.chats.BeginGeneration() {
		return ErrBusy
	}
	defer o.chats.EndGeneration()

	cfg := o.settings.Get()
	messages := o.buildPrompt(history[:lastAssistant], char, cfg.SystemPrompt, cfg.Model)
	target := history[lastAssistant]

	stream, err := o.clients.Get(cfg.APIKey).ChatStream(ctx, messages, cfg.Model, requestOptions(cfg))
	if err != nil {
		log.Printf("[generate] regenerate failed: %v", err)
		return nil
	}
	defer stream.Close()

	var full strings.Builder
	received := false
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("[generate] regenerate stream failed: %v", err)
			return nil
		}
		received = true
		full.WriteString(fragment)
		o.chats.UpdateMessage(target.ID, full.String())
		if o.OnFragment != nil {
			o.OnFragment(fragment)
		}
	}

	if !received {
		// Distinguishes "nothing arrived" (content untouched) from a
		// successful short reply, which always overwrites.
		log.Printf("[generate] regenerate received no fragments for message %s", target.ID)
	}

	return nil
}

// SeedFirstMessage materializes the character's opening line into an empty
// chat, exactly once. Reports whether a message was appended.
func (o *Orchestrator) SeedFirstMessage(chatID string) bool {
	c, ok := o.chats.ChatByID(chatID)
	if !ok {
		return false
	}
	char, ok := o.resolveCharacter(c.CharacterIDs)
	if !ok || char.FirstMessage == "" {
		return false
	}
	// Gated on message count so re-rendering can call this freely.
	if len(o.chats.GetChatMessages(chatID)) > 0 {
		return false
	}

	o.chats.AddMessage(chatservice.NewMessage{
		ChatID:      chatID,
		Role:        chatmodel.RoleAssistant,
		Content:     char.FirstMessage,
		CharacterID: char.ID,
	})
	return true
}

// buildPrompt assembles and truncates the completion message list against
// the active model's context window.
func (o *Orchestrator) buildPrompt(history []chatmodel.Message, char character.Character, systemPrompt, model string) []openrouter.Message {
	messages := prompt.BuildMessages(history, char, o.settings.PronounPair(), systemPrompt)
	return prompt.TruncateToFit(messages, modelsettings.ContextLength(model))
}

// resolveCharacter picks the chat's first character, falling back to the
// globally selected one.
func (o *Orchestrator) resolveCharacter(characterIDs []string) (character.Character, bool) {
	if len(characterIDs) > 0 {
		if char, ok := o.characters.Get(characterIDs[0]); ok {
			return char, true
		}
	}
	if selected := o.characters.SelectedID(); selected != "" {
		return o.characters.Get(selected)
	}
	return character.Character{}, false
}

// appendErrorMessage writes a user-facing failure message into the history,
// which doubles as the error log for a failed send.
func (o *Orchestrator) appendErrorMessage(chatID, characterID string, err error) {
	reason := "Không thể tạo phản hồi"
	if err != nil && err.Error() != "" {
		reason = err.Error()
	}
	log.Printf("[generate] generation failed: %v", err)
	o.chats.AddMessage(chatservice.NewMessage{
		ChatID:      chatID,
		Role:        chatmodel.RoleAssistant,
		Content:     fmt.Sprintf("❌ Lỗi: %s", reason),
		CharacterID: characterID,
	})
}

// requestOptions maps settings onto request options.
func requestOptions(cfg modelsettings.Settings) openrouter.Options {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	topP := cfg.TopP
	return openrouter.Options{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		TopP:        &topP,
	}
}
