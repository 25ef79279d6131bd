package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/internal/observability"
	"github.com/harun/pagina/internal/tracing"
	"github.com/rs/zerolog"
)

// Commands routes bot commands to registered handlers
type Commands struct {
	bot    *Bot
	logger zerolog.Logger

	mu       sync.RWMutex
	handlers map[string]registeredCommand
}

type registeredCommand struct {
	info    CommandInfo
	handler CommandFunc
}

// CommandFunc is a function that handles a command
type CommandFunc func(ctx context.Context, cmd CommandContext) error

// CommandContext contains command metadata
type CommandContext struct {
	ChatID    int64
	IsGroup   bool
	MessageID int
	ReplyToID int
	UserID    int64
	Username  string
	From      *tgbotapi.User
	Command   string
	Args      []string
	RawArgs   string
}

// DefaultModule groups commands registered without a module.
const DefaultModule = "General"

// CommandInfo describes a registered command
type CommandInfo struct {
	Name        string
	Description string
	// Module groups related commands on one help page.
	Module string
	// Usage is the argument synopsis shown after the command name.
	Usage string
}

// NewCommands creates a new command handler
func NewCommands(bot *Bot) *Commands {
	return &Commands{
		bot:      bot,
		logger:   bot.logger.With().Str("module", "commands").Logger(),
		handlers: make(map[string]registeredCommand),
	}
}

// HandleCommand processes incoming commands
func (c *Commands) HandleCommand(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil || !update.Message.IsCommand() {
		return nil
	}

	msg := update.Message
	command := strings.ToLower(msg.Command())
	args := strings.Fields(msg.CommandArguments())

	cmd := CommandContext{
		ChatID:    msg.Chat.ID,
		IsGroup:   msg.Chat.IsGroup() || msg.Chat.IsSuperGroup(),
		MessageID: msg.MessageID,
		From:      msg.From,
		Command:   command,
		Args:      args,
		RawArgs:   msg.CommandArguments(),
	}
	if msg.From != nil {
		cmd.UserID = msg.From.ID
		cmd.Username = msg.From.UserName
	}
	if msg.ReplyToMessage != nil {
		cmd.ReplyToID = msg.ReplyToMessage.MessageID
	}

	logger := tracing.LoggerFromContext(ctx, c.logger)
	logger.Debug().
		Str("command", command).
		Strs("args", args).
		Msg("Command received")

	c.mu.RLock()
	registered, exists := c.handlers[command]
	c.mu.RUnlock()
	if !exists {
		if cmd.IsGroup {
			return nil
		}
		return c.sendUnknownCommand(cmd)
	}

	err := registered.handler(ctx, cmd)
	observability.RecordTelegramCommand(command, err == nil)
	return err
}

// Register registers a command handler in DefaultModule
func (c *Commands) Register(command, description string, handler CommandFunc) {
	c.RegisterCommand(CommandInfo{Name: command, Description: description}, handler)
}

// RegisterCommand registers a command handler with its help metadata
func (c *Commands) RegisterCommand(info CommandInfo, handler CommandFunc) {
	info.Name = strings.ToLower(strings.TrimPrefix(info.Name, "/"))
	if info.Module == "" {
		info.Module = DefaultModule
	}

	c.mu.Lock()
	c.handlers[info.Name] = registeredCommand{info: info, handler: handler}
	c.mu.Unlock()

	c.logger.Info().Str("command", info.Name).Str("module", info.Module).Msg("Command registered")
}

// Unregister removes a command handler
func (c *Commands) Unregister(command string) {
	c.mu.Lock()
	delete(c.handlers, command)
	c.mu.Unlock()

	c.logger.Info().Str("command", command).Msg("Command unregistered")
}

// List returns the registered commands sorted by name
func (c *Commands) List() []CommandInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]CommandInfo, 0, len(c.handlers))
	for _, registered := range c.handlers {
		infos = append(infos, registered.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// SyncCommands publishes the registered command list to Telegram
func (c *Commands) SyncCommands() error {
	infos := c.List()
	commands := make([]tgbotapi.BotCommand, 0, len(infos))
	for _, info := range infos {
		commands = append(commands, tgbotapi.BotCommand{
			Command:     info.Name,
			Description: info.Description,
		})
	}

	if _, err := c.bot.client.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}

	c.logger.Info().Int("count", len(commands)).Msg("Bot commands updated")
	return nil
}

// sendUnknownCommand sends an unknown command response
func (c *Commands) sendUnknownCommand(cmd CommandContext) error {
	text := fmt.Sprintf("Unknown command: /%s", cmd.Command)
	return c.bot.SendMessageWithReply(cmd.ChatID, text, cmd.MessageID)
}

// SendResponse sends a response to a command
func (c *Commands) SendResponse(cmd CommandContext, text string) error {
	return c.bot.SendMessageWithReply(cmd.ChatID, text, cmd.MessageID)
}
