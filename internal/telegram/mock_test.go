package telegram

import (
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/internal/config"
	"github.com/harun/pagina/internal/logger"
	"github.com/stretchr/testify/require"
)

// MockBotAPI is a mock Telegram Bot API for testing
type MockBotAPI struct {
	mu sync.Mutex

	nextMessageID int
	sentMessages  []tgbotapi.Chattable
	requests      []tgbotapi.Chattable
	callbacks     []tgbotapi.CallbackConfig

	sendErr    error
	requestErr error
}

func (m *MockBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return tgbotapi.Message{}, m.sendErr
	}
	m.sentMessages = append(m.sentMessages, c)
	m.nextMessageID++

	var chatID int64
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		chatID = msg.ChatID
	}
	return tgbotapi.Message{
		MessageID: m.nextMessageID,
		Chat:      &tgbotapi.Chat{ID: chatID},
	}, nil
}

func (m *MockBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if callback, ok := c.(tgbotapi.CallbackConfig); ok {
		m.callbacks = append(m.callbacks, callback)
		return &tgbotapi.APIResponse{Ok: true}, nil
	}
	if m.requestErr != nil {
		return nil, m.requestErr
	}
	m.requests = append(m.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *MockBotAPI) lastSent() tgbotapi.MessageConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sentMessages[len(m.sentMessages)-1].(tgbotapi.MessageConfig)
}

func createTestBot(t *testing.T) (*Bot, *MockBotAPI) {
	t.Helper()

	log, err := logger.New(logger.Config{
		Level:   "info",
		Console: true,
	})
	require.NoError(t, err)

	api := &MockBotAPI{}
	bot := NewWithClient(api, nil, tgbotapi.User{ID: 123456789, UserName: "testbot", IsBot: true}, &config.TelegramConfig{}, log.GetZerolog())
	return bot, api
}

func commandUpdate(chatType, text string, replyTo *tgbotapi.Message) tgbotapi.Update {
	command := text
	for i, r := range text {
		if r == ' ' {
			command = text[:i]
			break
		}
	}
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 10,
			From: &tgbotapi.User{
				ID:       12345,
				UserName: "testuser",
			},
			Chat: &tgbotapi.Chat{
				ID:   67890,
				Type: chatType,
			},
			Text:           text,
			Date:           1234567890,
			ReplyToMessage: replyTo,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
		},
	}
}

// fakeUpdates is an UpdateSource fed by tests
type fakeUpdates struct {
	ch      chan tgbotapi.Update
	once    sync.Once
	timeout int
}

func newFakeUpdates() *fakeUpdates {
	return &fakeUpdates{ch: make(chan tgbotapi.Update, 10)}
}

func (f *fakeUpdates) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.timeout = config.Timeout
	return f.ch
}

func (f *fakeUpdates) StopReceivingUpdates() {
	f.once.Do(func() { close(f.ch) })
}
