package daemon

import (
	"path/filepath"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/internal/config"
	"github.com/harun/pagina/internal/logger"
	"github.com/harun/pagina/internal/telegram"
	"github.com/stretchr/testify/require"
)

// fakeTelegram is an in-memory Bot API: it records outgoing calls and
// feeds updates pushed by tests.
type fakeTelegram struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable

	updates chan tgbotapi.Update
	once    sync.Once
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, c)
	f.nextID++

	var chatID int64
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		chatID = msg.ChatID
	}
	return tgbotapi.Message{MessageID: f.nextID, Chat: &tgbotapi.Chat{ID: chatID}}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeTelegram) StopReceivingUpdates() {
	f.once.Do(func() { close(f.updates) })
}

func (f *fakeTelegram) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeTelegram) lastSent() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeTelegram) hasRequest(match func(tgbotapi.Chattable) bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if match(r) {
			return true
		}
	}
	return false
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Telegram.BotToken = "123456789:test"
	cfg.DataDir = tmpDir
	cfg.Storage.DBPath = filepath.Join(tmpDir, "pagina.db")
	cfg.Audit.File = filepath.Join(tmpDir, "audit.log")
	return cfg
}

// newTestDaemon builds a daemon whose bot talks to a fakeTelegram
func newTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *fakeTelegram) {
	t.Helper()

	fake := newFakeTelegram()
	original := newTelegramBot
	newTelegramBot = func(tc *config.TelegramConfig, log *logger.Logger) (*telegram.Bot, error) {
		self := tgbotapi.User{ID: 42, UserName: "paginabot", IsBot: true}
		return telegram.NewWithClient(fake, fake, self, tc, log.GetZerolog()), nil
	}
	t.Cleanup(func() { newTelegramBot = original })

	log, err := logger.New(logger.Config{Level: "info"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	d, err := New(cfg, log)
	require.NoError(t, err)
	return d, fake
}

func commandUpdate(updateID int, text string) tgbotapi.Update {
	command := text
	for i, r := range text {
		if r == ' ' {
			command = text[:i]
			break
		}
	}
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			MessageID: 10,
			From:      &tgbotapi.User{ID: 12345, UserName: "testuser"},
			Chat:      &tgbotapi.Chat{ID: 67890, Type: "private"},
			Text:      text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
		},
	}
}

func callbackUpdate(updateID, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: &tgbotapi.User{ID: 12345, UserName: "testuser"},
			Message: &tgbotapi.Message{
				MessageID: messageID,
				Chat:      &tgbotapi.Chat{ID: 67890, Type: "private"},
			},
			Data: data,
		},
	}
}
