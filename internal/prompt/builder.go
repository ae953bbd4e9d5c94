// Package prompt assembles the role-tagged message list sent to the
// completion API. All functions are pure: same inputs, same output.
package prompt

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/lamnguyen/vietrp/internal/model/character"
	"github.com/lamnguyen/vietrp/internal/model/chat"
	"github.com/lamnguyen/vietrp/internal/model/pronoun"
	"github.com/lamnguyen/vietrp/internal/openrouter"
)

// ResponseReserve is the share of the token budget kept free for the reply
// when truncating history.
const ResponseReserve = 0.8

// BuildSystemPrompt concatenates, in fixed order, the base instructions, the
// pronoun-convention block, and the character block.
func BuildSystemPrompt(char character.Character, pair pronoun.Pair, baseSystemPrompt string) string {
	pronounInstruction := fmt.Sprintf(`Quy tắc xưng hô trong cuộc trò chuyện này:
- User tự xưng: %q
- User gọi bạn (nhân vật): %q
- Bạn (nhân vật) tự xưng: %q
- Bạn gọi User: %q

Hãy tuân thủ nghiêm ngặt cách xưng hô này trong suốt cuộc trò chuyện.`,
		pair.UserPronoun, pair.CharByUser, pair.CharPronoun, pair.UserByChar)

	characterInfo := fmt.Sprintf(`Thông tin nhân vật bạn đang nhập vai:
Tên: %s

Mô tả nhân vật (Persona):
%s

Bối cảnh (Scenario):
%s`, char.Name, char.Persona, char.Scenario)

	if char.ExampleDialogues != "" {
		characterInfo += fmt.Sprintf("\n\nVí dụ đối thoại tham khảo:\n%s", char.ExampleDialogues)
	}

	return baseSystemPrompt + "\n\n" + pronounInstruction + "\n\n" + characterInfo
}

// BuildMessages converts chat history into the completion message list. The
// first entry is always the freshly built system prompt; system-role entries
// found in history are never forwarded. An empty history for a character
// with a first message yields only the system entry: the opening line is
// materialized into persisted history by the caller, not into the prompt.
func BuildMessages(history []chat.Message, char character.Character, pair pronoun.Pair, baseSystemPrompt string) []openrouter.Message {
	messages := []openrouter.Message{
		{Role: chat.RoleSystem, Content: BuildSystemPrompt(char, pair, baseSystemPrompt)},
	}

	if len(history) == 0 && char.FirstMessage != "" {
		return messages
	}

	for _, msg := range history {
		if msg.Role == chat.RoleUser || msg.Role == chat.RoleAssistant {
			messages = append(messages, openrouter.Message{Role: msg.Role, Content: msg.Content})
		}
	}

	return messages
}

// EstimateTokens approximates the token cost of a text as ceil(runes/4).
// This is a deliberately rough, language-agnostic estimate, not a tokenizer.
func EstimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// TruncateToFit drops the oldest non-system entries until the estimated cost
// of the retained messages fits within ResponseReserve of maxTokens. The
// system entry is always kept and always counted first. Entries are dropped
// whole, never cut mid-content, and chronological order is preserved.
func TruncateToFit(messages []openrouter.Message, maxTokens int) []openrouter.Message {
	if len(messages) == 0 {
		return messages
	}

	system := messages[0]
	budget := float64(maxTokens) * ResponseReserve
	total := EstimateTokens(system.Content)

	included := make([]openrouter.Message, 0, len(messages)-1)
	for i := len(messages) - 1; i >= 1; i-- {
		cost := EstimateTokens(messages[i].Content)
		if float64(total+cost) > budget {
			break
		}
		total += cost
		included = append(included, messages[i])
	}

	result := make([]openrouter.Message, 0, len(included)+1)
	result = append(result, system)
	for i := len(included) - 1; i >= 0; i-- {
		result = append(result, included[i])
	}
	return result
}

var (
	userPlaceholder = regexp.MustCompile(`(?i)\{\{user\}\}`)
	charPlaceholder = regexp.MustCompile(`(?i)\{\{char\}\}`)
)

// FormatForDisplay substitutes the {{user}}/{{char}} placeholder markers that
// imported character cards commonly carry.
func FormatForDisplay(content string) string {
	content = userPlaceholder.ReplaceAllString(content, "Bạn")
	return charPlaceholder.ReplaceAllString(content, "Nhân vật")
}
