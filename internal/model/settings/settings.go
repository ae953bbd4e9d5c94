// Package settings defines the process-wide configuration singleton that the
// settings service persists and the generation pipeline reads.
package settings

import "github.com/lamnguyen/vietrp/internal/model/pronoun"

// Settings is the persisted application configuration. It is initialized to
// Defaults on first run and only ever mutated through partial updates or a
// reset, never deleted.
type Settings struct {
	APIKey            string        `json:"apiKey"`
	Model             string        `json:"model"`
	Temperature       float64       `json:"temperature"`
	MaxTokens         int           `json:"maxTokens"`
	TopP              float64       `json:"topP"`
	PronounPairID     string        `json:"pronounPairId"`
	CustomPronounPair *pronoun.Pair `json:"customPronounPair,omitempty"`
	DarkMode          bool          `json:"darkMode"`
	SystemPrompt      string        `json:"systemPrompt"`
}

// DefaultSystemPrompt is the base roleplay instruction block prepended to
// every generated prompt.
const DefaultSystemPrompt = `Bạn là một nhân vật trong cuộc roleplay. Hãy nhập vai hoàn toàn và phản hồi một cách tự nhiên bằng tiếng Việt.

Quy tắc:
- Luôn ở trong nhân vật, không bao giờ phá vỡ vai
- Sử dụng *hành động* cho mô tả hành động và "lời nói" cho đối thoại
- Phản hồi sáng tạo và chi tiết
- Giữ nguyên cách xưng hô đã được thiết lập`

// Defaults returns the first-run settings.
func Defaults() Settings {
	return Settings{
		APIKey:        "",
		Model:         "anthropic/claude-3.5-sonnet",
		Temperature:   0.8,
		MaxTokens:     1024,
		TopP:          1,
		PronounPairID: "neutral",
		DarkMode:      true,
		SystemPrompt:  DefaultSystemPrompt,
	}
}

// ModelOption describes a selectable completion model.
type ModelOption struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"contextLength"`
	Pricing       string `json:"pricing"`
}

// DefaultContextLength is used for models absent from the catalog.
const DefaultContextLength = 8192

// Models returns the selectable model catalog.
func Models() []ModelOption {
	return []ModelOption{
		{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", ContextLength: 200000, Pricing: "$3/$15 per 1M tokens"},
		{ID: "anthropic/claude-3-haiku", Name: "Claude 3 Haiku", ContextLength: 200000, Pricing: "$0.25/$1.25 per 1M tokens"},
		{ID: "openai/gpt-4o", Name: "GPT-4o", ContextLength: 128000, Pricing: "$2.50/$10 per 1M tokens"},
		{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", ContextLength: 128000, Pricing: "$0.15/$0.60 per 1M tokens"},
		{ID: "google/gemini-pro-1.5", Name: "Gemini Pro 1.5", ContextLength: 1000000, Pricing: "$2.50/$7.50 per 1M tokens"},
		{ID: "meta-llama/llama-3.1-70b-instruct", Name: "Llama 3.1 70B", ContextLength: 131072, Pricing: "$0.52/$0.75 per 1M tokens"},
		{ID: "mistralai/mistral-large", Name: "Mistral Large", ContextLength: 128000, Pricing: "$2/$6 per 1M tokens"},
		{ID: "qwen/qwen-2.5-72b-instruct", Name: "Qwen 2.5 72B", ContextLength: 131072, Pricing: "$0.35/$0.40 per 1M tokens"},
	}
}

// ContextLength returns the context window for a model id, falling back to
// DefaultContextLength for unknown models.
func ContextLength(modelID string) int {
	for _, m := range Models() {
		if m.ID == modelID {
			return m.ContextLength
		}
	}
	return DefaultContextLength
}
