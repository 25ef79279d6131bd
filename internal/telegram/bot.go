package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/internal/config"
	"github.com/harun/pagina/internal/logger"
	"github.com/harun/pagina/internal/observability"
	"github.com/harun/pagina/internal/tracing"
	"github.com/rs/zerolog"
)

// Bot represents a Telegram bot instance
type Bot struct {
	source UpdateSource
	client TelegramAPI
	self   tgbotapi.User
	config *config.TelegramConfig
	logger zerolog.Logger

	// Handlers
	commandHandler  CommandHandler
	callbackHandler CallbackHandler

	// State
	mu      sync.Mutex
	running bool
	updates tgbotapi.UpdatesChannel
	done    chan struct{}
}

// UpdateSource delivers updates by long polling. *tgbotapi.BotAPI satisfies it.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// CommandHandler handles bot commands
type CommandHandler interface {
	HandleCommand(ctx context.Context, update tgbotapi.Update) error
}

// CallbackHandler handles inline keyboard callback queries
type CallbackHandler interface {
	HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error
}

// New creates a new Telegram bot instance
func New(cfg *config.TelegramConfig, log *logger.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram config is required")
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	api.Debug = cfg.Debug

	bot := NewWithClient(api, api, api.Self, cfg, log.GetZerolog())

	bot.logger.Info().
		Str("username", api.Self.UserName).
		Int64("id", api.Self.ID).
		Msg("Telegram bot authenticated")

	return bot, nil
}

// NewWithClient creates a bot over an already authenticated client. A nil
// source yields a bot that can send but cannot Start.
func NewWithClient(client TelegramAPI, source UpdateSource, self tgbotapi.User, cfg *config.TelegramConfig, base zerolog.Logger) *Bot {
	return &Bot{
		source: source,
		client: client,
		self:   self,
		config: cfg,
		logger: base.With().Str("component", "telegram").Logger(),
	}
}

// Start begins long-polling for updates. Updates are handled until ctx is
// cancelled or Stop is called.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return fmt.Errorf("bot is already running")
	}
	if b.source == nil {
		return fmt.Errorf("update source is not initialized")
	}

	b.logger.Info().Msg("Starting Telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.UpdateTimeout
	if u.Timeout <= 0 {
		u.Timeout = config.DefaultUpdateTimeout
	}
	u.AllowedUpdates = []string{"message", "callback_query"}

	b.updates = b.source.GetUpdatesChan(u)
	b.done = make(chan struct{})
	b.running = true

	go b.processUpdates(ctx, b.updates, b.done)

	b.logger.Info().Msg("Telegram bot started")
	return nil
}

// Stop stops the bot and waits for the update loop to drain
func (b *Bot) Stop() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return fmt.Errorf("bot is not running")
	}

	b.logger.Info().Msg("Stopping Telegram bot")

	b.running = false
	b.source.StopReceivingUpdates()
	done := b.done
	b.mu.Unlock()

	<-done

	b.logger.Info().Msg("Telegram bot stopped")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				b.logger.Error().
					Err(err).
					Int("update_id", update.UpdateID).
					Msg("Failed to handle update")
			}
		}
	}
}

// handleUpdate routes an update to the appropriate handler
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		observability.RecordTelegramUpdate("callback_query")
		if b.callbackHandler == nil {
			return nil
		}
		query := update.CallbackQuery
		ctx = tracing.NewUpdateContext(ctx, strconv.Itoa(update.UpdateID), callbackChatID(query), userID(query.From))
		return b.callbackHandler.HandleCallback(ctx, query)

	case update.Message != nil:
		observability.RecordTelegramUpdate("message")
		if !update.Message.IsCommand() || b.commandHandler == nil {
			return nil
		}
		msg := update.Message
		ctx = tracing.NewUpdateContext(ctx, strconv.Itoa(update.UpdateID), strconv.FormatInt(msg.Chat.ID, 10), userID(msg.From))
		return b.commandHandler.HandleCommand(ctx, update)
	}

	return nil
}

func callbackChatID(query *tgbotapi.CallbackQuery) string {
	if query.Message == nil || query.Message.Chat == nil {
		return ""
	}
	return strconv.FormatInt(query.Message.Chat.ID, 10)
}

func userID(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}

// displayName is the name stamped into paginator footers.
func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return user.String()
}

// SendMessageWithReply sends a text message as a reply
func (b *Bot) SendMessageWithReply(chatID int64, text string, replyToMessageID int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToMessageID
	msg.AllowSendingWithoutReply = true

	if _, err := b.client.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	b.logger.Debug().
		Int64("chat_id", chatID).
		Int("reply_to", replyToMessageID).
		Msg("Reply sent")

	return nil
}

// GetBotInfo returns bot information
func (b *Bot) GetBotInfo() map[string]interface{} {
	return map[string]interface{}{
		"username":  b.self.UserName,
		"id":        b.self.ID,
		"firstName": b.self.FirstName,
		"running":   b.IsRunning(),
	}
}

// SetCommandHandler sets the command handler
func (b *Bot) SetCommandHandler(handler CommandHandler) {
	b.commandHandler = handler
}

// SetCallbackHandler sets the callback query handler
func (b *Bot) SetCallbackHandler(handler CallbackHandler) {
	b.callbackHandler = handler
}

// Client returns the API client used for sending and editing messages
func (b *Bot) Client() TelegramAPI {
	return b.client
}

// Self returns the bot's own user
func (b *Bot) Self() tgbotapi.User {
	return b.self
}

// Logger returns the bot's component logger
func (b *Bot) Logger() zerolog.Logger {
	return b.logger
}

// IsRunning returns whether the bot is running
func (b *Bot) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// WaitForReady waits for the bot to be ready
func (b *Bot) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if b.IsRunning() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("bot did not become ready within timeout")
}
