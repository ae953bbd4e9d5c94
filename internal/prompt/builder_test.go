package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamnguyen/vietrp/internal/model/character"
	"github.com/lamnguyen/vietrp/internal/model/chat"
	"github.com/lamnguyen/vietrp/internal/model/pronoun"
	"github.com/lamnguyen/vietrp/internal/openrouter"
	"github.com/lamnguyen/vietrp/internal/prompt"
)

func testCharacter() character.Character {
	return character.Character{
		ID:           "char-1",
		Name:         "Sakura",
		Persona:      "Một cô gái dịu dàng.",
		Scenario:     "Quán cà phê chiều mưa.",
		FirstMessage: "Chào anh!",
	}
}

func testPair() pronoun.Pair {
	return pronoun.Pair{
		ID:          "friends",
		UserPronoun: "mình",
		UserByChar:  "cậu",
		CharPronoun: "mình",
		CharByUser:  "cậu",
	}
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	char := testCharacter()
	pair := testPair()

	first := prompt.BuildSystemPrompt(char, pair, "Base instructions.")
	second := prompt.BuildSystemPrompt(char, pair, "Base instructions.")

	assert.Equal(t, first, second)
}

func TestBuildSystemPromptContainsBlocksInOrder(t *testing.T) {
	char := testCharacter()
	char.ExampleDialogues = "{{user}}: hi\n{{char}}: chào"

	got := prompt.BuildSystemPrompt(char, testPair(), "Base instructions.")

	baseIdx := strings.Index(got, "Base instructions.")
	pronounIdx := strings.Index(got, "Quy tắc xưng hô")
	charIdx := strings.Index(got, "Thông tin nhân vật")
	exampleIdx := strings.Index(got, "Ví dụ đối thoại tham khảo")

	require.NotEqual(t, -1, baseIdx)
	require.NotEqual(t, -1, pronounIdx)
	require.NotEqual(t, -1, charIdx)
	require.NotEqual(t, -1, exampleIdx)
	assert.Less(t, baseIdx, pronounIdx)
	assert.Less(t, pronounIdx, charIdx)
	assert.Less(t, charIdx, exampleIdx)

	assert.Contains(t, got, char.Name)
	assert.Contains(t, got, char.Persona)
	assert.Contains(t, got, char.Scenario)
}

func TestBuildSystemPromptOmitsEmptyExampleDialogues(t *testing.T) {
	got := prompt.BuildSystemPrompt(testCharacter(), testPair(), "base")
	assert.NotContains(t, got, "Ví dụ đối thoại tham khảo")
}

func TestBuildMessagesOrdering(t *testing.T) {
	history := []chat.Message{
		{Role: chat.RoleAssistant, Content: "mở đầu"},
		{Role: chat.RoleUser, Content: "xin chào"},
		{Role: chat.RoleSystem, Content: "smuggled system entry"},
		{Role: chat.RoleAssistant, Content: "đáp"},
	}

	got := prompt.BuildMessages(history, testCharacter(), testPair(), "base")

	require.Len(t, got, 4)
	assert.Equal(t, chat.RoleSystem, got[0].Role)

	roles := []string{got[1].Role, got[2].Role, got[3].Role}
	assert.Equal(t, []string{chat.RoleAssistant, chat.RoleUser, chat.RoleAssistant}, roles)

	for _, m := range got[1:] {
		assert.NotEqual(t, "smuggled system entry", m.Content)
	}
}

func TestBuildMessagesEmptyHistoryWithFirstMessage(t *testing.T) {
	got := prompt.BuildMessages(nil, testCharacter(), testPair(), "base")

	// The opening line is materialized into persisted history elsewhere,
	// never duplicated into the prompt.
	require.Len(t, got, 1)
	assert.Equal(t, chat.RoleSystem, got[0].Role)
}

func TestBuildMessagesEmptyHistoryNoFirstMessage(t *testing.T) {
	char := testCharacter()
	char.FirstMessage = ""

	got := prompt.BuildMessages(nil, char, testPair(), "base")
	require.Len(t, got, 1)
	assert.Equal(t, chat.RoleSystem, got[0].Role)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, prompt.EstimateTokens(""))
	assert.Equal(t, 1, prompt.EstimateTokens("abc"))
	assert.Equal(t, 1, prompt.EstimateTokens("abcd"))
	assert.Equal(t, 2, prompt.EstimateTokens("abcde"))
	// Runes, not bytes: 4 Vietnamese characters are one estimated token.
	assert.Equal(t, 1, prompt.EstimateTokens("ồảễữ"))
}

func TestTruncateToFitKeepsSystemAndDropsOldest(t *testing.T) {
	messages := []openrouter.Message{
		{Role: chat.RoleSystem, Content: strings.Repeat("s", 40)}, // 10 tokens
		{Role: chat.RoleUser, Content: strings.Repeat("a", 400)},  // 100 tokens, oldest
		{Role: chat.RoleAssistant, Content: strings.Repeat("b", 400)},
		{Role: chat.RoleUser, Content: strings.Repeat("c", 400)}, // newest
	}

	// Budget 0.8*300 = 240: system(10) + newest two (200) fit, oldest not.
	got := prompt.TruncateToFit(messages, 300)

	require.Len(t, got, 3)
	assert.Equal(t, chat.RoleSystem, got[0].Role)
	assert.Equal(t, strings.Repeat("b", 400), got[1].Content)
	assert.Equal(t, strings.Repeat("c", 400), got[2].Content)
}

func TestTruncateToFitBudgetNeverExceeded(t *testing.T) {
	messages := []openrouter.Message{
		{Role: chat.RoleSystem, Content: strings.Repeat("s", 100)},
	}
	for i := 0; i < 20; i++ {
		messages = append(messages, openrouter.Message{Role: chat.RoleUser, Content: strings.Repeat("x", 80)})
	}

	for _, maxTokens := range []int{50, 100, 200, 500, 10000} {
		got := prompt.TruncateToFit(messages, maxTokens)
		require.NotEmpty(t, got)
		assert.Equal(t, chat.RoleSystem, got[0].Role)

		total := 0
		for _, m := range got {
			total += prompt.EstimateTokens(m.Content)
		}
		assert.LessOrEqual(t, total, maxTokens, "maxTokens=%d", maxTokens)
	}
}

func TestTruncateToFitTinyBudgetStillKeepsSystem(t *testing.T) {
	messages := []openrouter.Message{
		{Role: chat.RoleSystem, Content: strings.Repeat("s", 400)},
		{Role: chat.RoleUser, Content: "hi"},
	}

	got := prompt.TruncateToFit(messages, 1)
	require.Len(t, got, 1)
	assert.Equal(t, chat.RoleSystem, got[0].Role)
}

func TestTruncateToFitPreservesChronology(t *testing.T) {
	messages := []openrouter.Message{
		{Role: chat.RoleSystem, Content: "sys"},
		{Role: chat.RoleUser, Content: "one"},
		{Role: chat.RoleAssistant, Content: "two"},
		{Role: chat.RoleUser, Content: "three"},
	}

	got := prompt.TruncateToFit(messages, 100000)
	require.Len(t, got, 4)
	assert.Equal(t, "one", got[1].Content)
	assert.Equal(t, "two", got[2].Content)
	assert.Equal(t, "three", got[3].Content)
}

func TestFormatForDisplay(t *testing.T) {
	got := prompt.FormatForDisplay("{{user}} gặp {{CHAR}} ở quán")
	assert.Equal(t, "Bạn gặp Nhân vật ở quán", got)
}
