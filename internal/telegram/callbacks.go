package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/internal/tracing"
	"github.com/harun/pagina/pkg/paginator"
	"github.com/rs/zerolog"
)

// InteractionProcessor consumes decoded control activations.
type InteractionProcessor interface {
	ProcessInteraction(ctx context.Context, in paginator.Interaction) bool
}

// CallbackRouter turns callback queries into paginator interactions.
type CallbackRouter struct {
	processor InteractionProcessor
	client    TelegramAPI
	logger    zerolog.Logger
}

// NewCallbackRouter creates a router feeding processor. Queries the processor
// does not own are still answered through client.
func NewCallbackRouter(processor InteractionProcessor, client TelegramAPI, logger zerolog.Logger) *CallbackRouter {
	return &CallbackRouter{
		processor: processor,
		client:    client,
		logger:    logger.With().Str("module", "callbacks").Logger(),
	}
}

// HandleCallback routes one callback query.
func (r *CallbackRouter) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil {
		return nil
	}

	in, ok := InteractionFromCallback(query)
	if ok && r.processor.ProcessInteraction(ctx, in) {
		return nil
	}

	logger := tracing.LoggerFromContext(ctx, r.logger)
	logger.Debug().
		Str("data", query.Data).
		Msg("Unhandled callback query")

	if _, err := r.client.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return classifyError(err)
	}
	return nil
}

// InteractionFromCallback builds an Interaction from a callback query. It
// reports false for queries on inline-mode messages, which carry no chat.
func InteractionFromCallback(query *tgbotapi.CallbackQuery) (paginator.Interaction, bool) {
	if query.Message == nil || query.Message.Chat == nil {
		return paginator.Interaction{}, false
	}

	chat := query.Message.Chat
	customID, values := SplitCallbackData(query.Data)

	ref := paginator.MessageRef{
		MessageID: FormatMessageID(chat.ID, query.Message.MessageID),
		ChannelID: strconv.FormatInt(chat.ID, 10),
	}
	if !chat.IsPrivate() {
		ref.GuildID = ref.ChannelID
	}

	return paginator.Interaction{
		ID:       query.ID,
		CustomID: customID,
		Values:   values,
		UserID:   userID(query.From),
		Message:  ref,
	}, true
}
