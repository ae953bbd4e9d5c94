package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/peterh/liner"

	"github.com/lamnguyen/vietrp/internal/config"
	"github.com/lamnguyen/vietrp/internal/model/character"
	chatmodel "github.com/lamnguyen/vietrp/internal/model/chat"
	"github.com/lamnguyen/vietrp/internal/model/pronoun"
	"github.com/lamnguyen/vietrp/internal/openrouter"
	"github.com/lamnguyen/vietrp/internal/prompt"
	characterservice "github.com/lamnguyen/vietrp/internal/service/character"
	chatservice "github.com/lamnguyen/vietrp/internal/service/chat"
	"github.com/lamnguyen/vietrp/internal/service/generate"
	settingsservice "github.com/lamnguyen/vietrp/internal/service/settings"
	"github.com/lamnguyen/vietrp/internal/storage"
)

var (
	charStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	backend, cleanup, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer cleanup()

	characters, err := characterservice.NewService(backend)
	if err != nil {
		log.Fatalf("failed to init character store: %v", err)
	}
	chats, err := chatservice.NewService(backend)
	if err != nil {
		log.Fatalf("failed to init chat store: %v", err)
	}
	settingsSvc, err := settingsservice.NewService(backend)
	if err != nil {
		log.Fatalf("failed to init settings store: %v", err)
	}
	seedSettings(settingsSvc, cfg)

	var clientOpts []openrouter.Option
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, openrouter.WithBaseURL(cfg.BaseURL))
	}
	orchestrator := generate.New(chats, characters, settingsSvc, openrouter.NewCache(clientOpts...))
	orchestrator.OnFragment = func(fragment string) {
		fmt.Print(fragment)
	}

	app := &app{
		cfg:          cfg,
		characters:   characters,
		chats:        chats,
		settings:     settingsSvc,
		orchestrator: orchestrator,
	}
	app.run()
}

// openBackend picks SQLite when VIETRP_DB is set, JSON files otherwise.
func openBackend(cfg *config.Config) (storage.Backend, func(), error) {
	if cfg.DatabasePath != "" {
		db, err := storage.NewSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}
	files, err := storage.NewFile(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return files, func() {}, nil
}

// seedSettings applies environment seeds on top of the persisted settings.
// The credential is only seeded when none is stored yet.
func seedSettings(svc *settingsservice.Service, cfg *config.Config) {
	current := svc.Get()
	update := settingsservice.Update{
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
	}
	if cfg.APIKey != "" && current.APIKey == "" {
		update.APIKey = &cfg.APIKey
	}
	if cfg.Model != "" {
		update.Model = &cfg.Model
	}
	svc.Apply(update)
}

type app struct {
	cfg          *config.Config
	characters   *characterservice.Service
	chats        *chatservice.Service
	settings     *settingsservice.Service
	orchestrator *generate.Orchestrator
}

func (a *app) run() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(a.cfg.DataDir, "input-history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("VietRP Chat — gõ /help để xem lệnh")
	if a.settings.Get().APIKey == "" {
		fmt.Println(errorStyle.Render("Chưa có API key. Dùng: /set apikey <key>"))
	}

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := a.command(input); quit {
				return
			}
			continue
		}

		a.send(input)
	}
}

func (a *app) send(input string) {
	char, ok := a.activeCharacter()
	if ok {
		fmt.Print(charStyle.Render(char.Name) + ": ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()

	before := len(a.currentMessages())
	if err := a.orchestrator.Send(ctx, input); err != nil {
		fmt.Println(errorStyle.Render(friendlyError(err)))
		return
	}
	fmt.Println()

	// A failed stream surfaces as an assistant error message instead of
	// fragments; render anything appended that never hit OnFragment.
	msgs := a.currentMessages()
	if len(msgs) > before {
		last := msgs[len(msgs)-1]
		if strings.HasPrefix(last.Content, "❌") {
			fmt.Println(errorStyle.Render(last.Content))
		}
	}
}

func (a *app) command(input string) (quit bool) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		a.printHelp()
	case "/characters":
		for _, c := range a.characters.List() {
			marker := " "
			if c.ID == a.characters.SelectedID() {
				marker = "*"
			}
			fmt.Printf("%s %s — %s\n", marker, c.ID, charStyle.Render(c.Name))
		}
	case "/char":
		if len(args) != 1 {
			fmt.Println("usage: /char <id>")
			return
		}
		if _, ok := a.characters.Get(args[0]); !ok {
			fmt.Println(errorStyle.Render("không tìm thấy nhân vật " + args[0]))
			return
		}
		a.characters.Select(args[0])
	case "/new":
		a.newChat(strings.Join(args, " "))
	case "/chats":
		for i, c := range a.chats.Chats() {
			marker := " "
			if c.ID == a.chats.ActiveChatID() {
				marker = "*"
			}
			fmt.Printf("%s %d. %s  %s\n", marker, i+1, c.Name, faintStyle.Render(c.LastMessage))
		}
	case "/open":
		if c, ok := a.chatByIndex(args); ok {
			a.chats.SetActiveChat(c.ID)
			a.orchestrator.SeedFirstMessage(c.ID)
			a.printHistory()
		}
	case "/delete":
		if c, ok := a.chatByIndex(args); ok {
			a.chats.DeleteChat(c.ID)
		}
	case "/history":
		a.printHistory()
	case "/regen":
		a.regenerate()
	case "/pronouns":
		a.printPronouns()
	case "/settings":
		a.printSettings()
	case "/set":
		a.setSetting(args)
	case "/reset-settings":
		a.settings.Reset()
	default:
		fmt.Println("unknown command, try /help")
	}
	return false
}

func (a *app) newChat(name string) {
	selected := a.characters.SelectedID()
	if selected == "" {
		fmt.Println(errorStyle.Render("chọn nhân vật trước: /characters rồi /char <id>"))
		return
	}
	c := a.chats.CreateChat([]string{selected}, name)
	a.orchestrator.SeedFirstMessage(c.ID)
	a.printHistory()
}

func (a *app) regenerate() {
	char, ok := a.activeCharacter()
	if ok {
		fmt.Print(charStyle.Render(char.Name) + ": ")
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	if err := a.orchestrator.Regenerate(ctx); err != nil {
		fmt.Println(errorStyle.Render(friendlyError(err)))
		return
	}
	fmt.Println()
}

func (a *app) printHistory() {
	char, _ := a.activeCharacter()
	for _, m := range a.currentMessages() {
		name := "Bạn"
		style := userStyle
		if m.Role != chatmodel.RoleUser {
			style = charStyle
			name = "Unknown"
			if char.ID != "" && m.CharacterID == char.ID {
				name = char.Name
			}
		}
		fmt.Printf("%s: %s\n", style.Render(name), prompt.FormatForDisplay(m.Content))
	}
}

func (a *app) printPronouns() {
	current := a.settings.PronounPair()
	for _, p := range pronoun.Catalog() {
		marker := " "
		if p.ID == current.ID {
			marker = "*"
		}
		fmt.Printf("%s %s — %s (%s)\n", marker, p.ID, p.Name, faintStyle.Render(p.Context))
	}
}

func (a *app) printSettings() {
	s := a.settings.Get()
	key := "(chưa đặt)"
	if s.APIKey != "" {
		key = "********"
	}
	fmt.Printf("apikey: %s\nmodel: %s\ntemperature: %g\nmaxtokens: %d\ntopp: %g\npronoun: %s\n",
		key, s.Model, s.Temperature, s.MaxTokens, s.TopP, s.PronounPairID)
}

func (a *app) setSetting(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: /set <apikey|model|temperature|maxtokens|topp|pronoun|prompt> <value>")
		return
	}
	value := strings.Join(args[1:], " ")

	switch args[0] {
	case "apikey":
		a.settings.SetAPIKey(value)
	case "model":
		a.settings.SetModel(value)
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fmt.Println(errorStyle.Render("giá trị không hợp lệ"))
			return
		}
		a.settings.Apply(settingsservice.Update{Temperature: &f})
	case "maxtokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Println(errorStyle.Render("giá trị không hợp lệ"))
			return
		}
		a.settings.Apply(settingsservice.Update{MaxTokens: &n})
	case "topp":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fmt.Println(errorStyle.Render("giá trị không hợp lệ"))
			return
		}
		a.settings.Apply(settingsservice.Update{TopP: &f})
	case "pronoun":
		a.settings.Apply(settingsservice.Update{PronounPairID: &value, ClearCustomPair: true})
	case "prompt":
		a.settings.Apply(settingsservice.Update{SystemPrompt: &value})
	default:
		fmt.Println("unknown setting " + args[0])
	}
}

func (a *app) chatByIndex(args []string) (chatmodel.Chat, bool) {
	if len(args) != 1 {
		fmt.Println("usage: /open <số> (xem /chats)")
		return chatmodel.Chat{}, false
	}
	n, err := strconv.Atoi(args[0])
	all := a.chats.Chats()
	if err != nil || n < 1 || n > len(all) {
		fmt.Println(errorStyle.Render("số chat không hợp lệ"))
		return chatmodel.Chat{}, false
	}
	return all[n-1], true
}

// activeCharacter resolves the active chat's character, falling back to the
// selected one.
func (a *app) activeCharacter() (character.Character, bool) {
	if c, ok := a.chats.ActiveChat(); ok && len(c.CharacterIDs) > 0 {
		if char, ok := a.characters.Get(c.CharacterIDs[0]); ok {
			return char, true
		}
	}
	if selected := a.characters.SelectedID(); selected != "" {
		return a.characters.Get(selected)
	}
	return character.Character{}, false
}

func (a *app) currentMessages() []chatmodel.Message {
	return a.chats.GetChatMessages(a.chats.ActiveChatID())
}

func (a *app) printHelp() {
	fmt.Println(`/characters          liệt kê nhân vật
/char <id>           chọn nhân vật
/new [tên]           tạo chat mới với nhân vật đã chọn
/chats               liệt kê chat
/open <số>           mở chat
/delete <số>         xoá chat (xoá cả tin nhắn)
/history             in lại hội thoại
/regen               tạo lại phản hồi cuối
/pronouns            liệt kê cách xưng hô
/settings            xem cài đặt
/set <key> <value>   đổi cài đặt
/reset-settings      về mặc định
/quit                thoát`)
}

func friendlyError(err error) string {
	switch err {
	case generate.ErrEmptyInput:
		return "tin nhắn trống"
	case generate.ErrNoActiveChat:
		return "chưa mở chat nào — dùng /new hoặc /open"
	case generate.ErrNoCharacter:
		return "chat chưa gắn nhân vật — dùng /char <id>"
	case generate.ErrBusy:
		return "đang tạo phản hồi, vui lòng chờ"
	case openrouter.ErrMissingAPIKey:
		return "chưa có API key — dùng /set apikey <key>"
	}
	return err.Error()
}
