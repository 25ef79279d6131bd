package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/internal/config"
	"github.com/harun/pagina/internal/logger"
	"github.com/harun/pagina/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := logger.New(logger.Config{
		Level:   "info",
		Console: true,
	})
	require.NoError(t, err)

	t.Run("nil config", func(t *testing.T) {
		bot, err := New(nil, log)
		assert.Error(t, err)
		assert.Nil(t, bot)
		assert.Contains(t, err.Error(), "config is required")
	})

	t.Run("empty bot token", func(t *testing.T) {
		bot, err := New(&config.TelegramConfig{}, log)
		assert.Error(t, err)
		assert.Nil(t, bot)
		assert.Contains(t, err.Error(), "bot token is required")
	})
}

func TestBotStartWithoutAPI(t *testing.T) {
	bot, _ := createTestBot(t)

	err := bot.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, bot.IsRunning())

	err = bot.Stop()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

type channelCommandHandler struct {
	seen chan tgbotapi.Update
}

func (h *channelCommandHandler) HandleCommand(ctx context.Context, update tgbotapi.Update) error {
	h.seen <- update
	return nil
}

func TestBotStartStop(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "info"})
	require.NoError(t, err)

	source := newFakeUpdates()
	bot := NewWithClient(&MockBotAPI{}, source, tgbotapi.User{ID: 1, UserName: "testbot"}, &config.TelegramConfig{}, log.GetZerolog())
	handler := &channelCommandHandler{seen: make(chan tgbotapi.Update, 1)}
	bot.SetCommandHandler(handler)

	require.NoError(t, bot.Start(context.Background()))
	assert.True(t, bot.IsRunning())
	assert.NoError(t, bot.WaitForReady(time.Second))
	assert.Equal(t, config.DefaultUpdateTimeout, source.timeout)

	assert.Error(t, bot.Start(context.Background()), "second start")

	source.ch <- commandUpdate("private", "/help", nil)
	select {
	case update := <-handler.seen:
		assert.Equal(t, "/help", update.Message.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("update was not dispatched")
	}

	require.NoError(t, bot.Stop())
	assert.False(t, bot.IsRunning())
}

func TestGetBotInfo(t *testing.T) {
	bot, _ := createTestBot(t)

	info := bot.GetBotInfo()
	assert.Equal(t, "testbot", info["username"])
	assert.Equal(t, int64(123456789), info["id"])
	assert.False(t, info["running"].(bool))
}

type recordingCommandHandler struct {
	updates []tgbotapi.Update
	traceID string
}

func (h *recordingCommandHandler) HandleCommand(ctx context.Context, update tgbotapi.Update) error {
	h.updates = append(h.updates, update)
	h.traceID = tracing.GetTraceID(ctx)
	return nil
}

type recordingCallbackHandler struct {
	queries []*tgbotapi.CallbackQuery
	chatID  string
	err     error
}

func (h *recordingCallbackHandler) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	h.queries = append(h.queries, query)
	h.chatID = tracing.GetChatID(ctx)
	return h.err
}

func TestHandleUpdate_Routing(t *testing.T) {
	bot, _ := createTestBot(t)
	commands := &recordingCommandHandler{}
	callbacks := &recordingCallbackHandler{}
	bot.SetCommandHandler(commands)
	bot.SetCallbackHandler(callbacks)
	ctx := context.Background()

	require.NoError(t, bot.handleUpdate(ctx, commandUpdate("private", "/help", nil)))
	assert.Len(t, commands.updates, 1)
	assert.NotEmpty(t, commands.traceID)

	plain := commandUpdate("private", "hello", nil)
	plain.Message.Entities = nil
	require.NoError(t, bot.handleUpdate(ctx, plain))
	assert.Len(t, commands.updates, 1)

	query := &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: -100, Type: "supergroup"}},
		Data:    "pg_B4",
	}
	require.NoError(t, bot.handleUpdate(ctx, tgbotapi.Update{UpdateID: 2, CallbackQuery: query}))
	require.Len(t, callbacks.queries, 1)
	assert.Equal(t, query, callbacks.queries[0])
	assert.Equal(t, "-100", callbacks.chatID)

	callbacks.err = errors.New("boom")
	assert.Error(t, bot.handleUpdate(ctx, tgbotapi.Update{UpdateID: 3, CallbackQuery: query}))

	assert.NoError(t, bot.handleUpdate(ctx, tgbotapi.Update{UpdateID: 4}))
}

func TestHandleUpdate_NoHandlers(t *testing.T) {
	bot, _ := createTestBot(t)

	assert.NoError(t, bot.handleUpdate(context.Background(), commandUpdate("private", "/help", nil)))
	assert.NoError(t, bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "x"}}))
}

func TestSendMessageWithReply(t *testing.T) {
	bot, api := createTestBot(t)

	require.NoError(t, bot.SendMessageWithReply(67890, "hi", 3))

	msg := api.lastSent()
	assert.Equal(t, int64(67890), msg.ChatID)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, 3, msg.ReplyToMessageID)

	api.sendErr = errors.New("network")
	assert.Error(t, bot.SendMessageWithReply(67890, "hi", 3))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "", displayName(nil))
	assert.Equal(t, "@alice", displayName(&tgbotapi.User{UserName: "alice"}))
	assert.Equal(t, "Alice Liddell", displayName(&tgbotapi.User{FirstName: "Alice", LastName: "Liddell"}))
}
