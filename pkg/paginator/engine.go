package paginator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harun/pagina/internal/observability"
	"github.com/harun/pagina/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseID = "pagina_paginator"
	DefaultTTL    = time.Hour
)

// User is the platform user a paginator is sent for.
type User struct {
	ID   string
	Name string
}

// Target describes where and for whom a paginator is sent.
type Target struct {
	ChannelID string
	GuildID   string
	ReplyTo   string
	Owner     User

	// Ephemeral asks the transport to show the message to the owner only,
	// where the platform supports it.
	Ephemeral bool

	// Extra carries transport-specific send options verbatim.
	Extra map[string]any
}

// SendOption adjusts a Target before sending.
type SendOption func(*Target)

// WithEphemeral sets the ephemeral flag.
func WithEphemeral(ephemeral bool) SendOption {
	return func(t *Target) {
		t.Ephemeral = ephemeral
	}
}

// WithExtra passes a transport-specific option through to the Messenger.
func WithExtra(key string, value any) SendOption {
	return func(t *Target) {
		if t.Extra == nil {
			t.Extra = make(map[string]any)
		}
		t.Extra[key] = value
	}
}

// Interaction is an inbound control activation.
type Interaction struct {
	ID       string
	CustomID string
	Values   []string
	UserID   string
	Message  MessageRef
}

// Messenger is the transport boundary. A nil view means "no controls".
// Implementations return errors wrapping ErrMessageGone when the message can
// no longer be edited.
type Messenger interface {
	SendPage(ctx context.Context, target Target, page Page, view *View) (MessageRef, error)
	EditPage(ctx context.Context, ref MessageRef, page Page, view *View) error
	ClearControls(ctx context.Context, ref MessageRef) error
	Acknowledge(ctx context.Context, interaction Interaction) error
}

// Options configures an Engine.
type Options struct {
	BaseID    string
	TTL       time.Duration
	BaseColor int

	// SerializeInteractions runs interaction steps for the same message one
	// at a time.
	SerializeInteractions bool

	Logger zerolog.Logger
	Now    func() time.Time
}

// Engine sends paginated messages and routes their interactions.
type Engine struct {
	store     Store
	messenger Messenger
	baseID    string
	ttl       time.Duration
	baseColor int
	locks     *messageLocks
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates an engine over an explicitly provided store and transport.
func New(store Store, messenger Messenger, opts Options) *Engine {
	observability.EnsureRegistered()

	if opts.BaseID == "" {
		opts.BaseID = DefaultBaseID
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		store:     store,
		messenger: messenger,
		baseID:    opts.BaseID,
		ttl:       opts.TTL,
		baseColor: opts.BaseColor,
		logger:    opts.Logger.With().Str("component", "paginator").Logger(),
		now:       opts.Now,
	}
	if opts.SerializeInteractions {
		e.locks = newMessageLocks()
	}
	return e
}

// BaseID returns the control identifier namespace.
func (e *Engine) BaseID() string {
	return e.baseID
}

// Session returns the stored session of a message, or ErrSessionNotFound.
func (e *Engine) Session(ctx context.Context, messageID string) (*Session, error) {
	return e.store.Get(ctx, messageID)
}

// OpenSessions returns the unexpired sessions owned by ownerID, soonest
// expiry first. Rows past their expiry but not yet reaped are skipped.
func (e *Engine) OpenSessions(ctx context.Context, ownerID string) ([]*Session, error) {
	sessions, err := e.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	open := sessions[:0]
	for _, s := range sessions {
		if !s.Expired(now) {
			open = append(open, s)
		}
	}
	return open, nil
}

// Now returns the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// NewPaginator starts a new page collection bound to the engine.
func (e *Engine) NewPaginator() *Paginator {
	return &Paginator{engine: e}
}

// Send renders the first page. With more than one page it attaches controls
// and persists a session keyed by the sent message.
func (p *Paginator) Send(ctx context.Context, target Target, opts ...SendOption) error {
	if p.engine == nil {
		return fmt.Errorf("%w: paginator is not bound to an engine", ErrInvalidArgument)
	}
	pages, err := p.Build()
	if err != nil {
		return err
	}
	for _, opt := range opts {
		opt(&target)
	}
	return p.engine.send(ctx, target, pages)
}

func (e *Engine) send(ctx context.Context, target Target, pages []Page) error {
	ctx, span := tracing.StartSpan(
		ctx,
		"pagina.paginator",
		"paginator.send",
		attribute.Int("pages", len(pages)),
		attribute.String("owner_id", target.Owner.ID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, e.logger)

	pages = e.stampPages(pages, target.Owner)

	if len(pages) == 1 {
		if _, err := e.messenger.SendPage(ctx, target, pages[0], nil); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.RecordTransportError("send")
			return fmt.Errorf("failed to send page: %w", err)
		}
		return nil
	}

	view := BuildView(e.baseID, 0, pages)
	ref, err := e.messenger.SendPage(ctx, target, pages[0], &view)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordTransportError("send")
		return fmt.Errorf("failed to send paginator: %w", err)
	}

	if _, err := e.store.Create(ctx, CreateParams{
		Ref:     ref,
		OwnerID: target.Owner.ID,
		Pages:   pages,
		TTL:     e.ttl,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if clearErr := e.messenger.ClearControls(ctx, ref); clearErr != nil {
			logger.Warn().Err(clearErr).Str("message_id", ref.MessageID).Msg("Failed to detach controls after store failure")
		}
		return fmt.Errorf("failed to persist paginator session: %w", err)
	}

	observability.RecordPaginatorSent(len(pages))
	observability.RecordPaginatorAudit(ctx, "sent", target.Owner.ID, map[string]interface{}{
		"message_id": ref.MessageID,
		"guild_id":   ref.GuildID,
		"pages":      len(pages),
	})
	logger.Info().
		Str("message_id", ref.MessageID).
		Str("guild_id", ref.GuildID).
		Int("pages", len(pages)).
		Msg("Paginator sent")

	return nil
}

// stampPages writes the owner footer and the default color on copies of the pages.
func (e *Engine) stampPages(pages []Page, owner User) []Page {
	stamped := make([]Page, len(pages))
	for i, page := range pages {
		content := page.Content.clone()
		text := fmt.Sprintf("Page %d/%d", i+1, len(pages))
		if owner.Name != "" {
			text = owner.Name + " - " + text
		}
		content[KeyFooter] = map[string]any{"text": text}
		if _, ok := content[KeyColor]; !ok && e.baseColor != 0 {
			content[KeyColor] = e.baseColor
		}
		page.Content = content
		stamped[i] = page
	}
	return stamped
}

// RemovePaginator detaches the controls of a paginated message and deletes
// its session. Calling it for a message without a session is not an error.
func (e *Engine) RemovePaginator(ctx context.Context, ref MessageRef) error {
	ctx, span := tracing.StartSpan(
		ctx,
		"pagina.paginator",
		"paginator.remove",
		attribute.String("message_id", ref.MessageID),
	)
	defer span.End()

	if err := e.remove(ctx, ref, "stopped"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// remove strips controls best-effort and deletes the row.
func (e *Engine) remove(ctx context.Context, ref MessageRef, reason string) error {
	logger := tracing.LoggerFromContext(ctx, e.logger).With().Str("message_id", ref.MessageID).Logger()

	if err := e.messenger.ClearControls(ctx, ref); err != nil {
		observability.RecordTransportError("clear_controls")
		if errors.Is(err, ErrMessageGone) {
			logger.Debug().Err(err).Msg("Message already gone while detaching controls")
		} else {
			logger.Warn().Err(err).Msg("Failed to detach paginator controls")
		}
	}

	if err := e.store.Delete(ctx, ref.MessageID); err != nil {
		return fmt.Errorf("failed to delete paginator session: %w", err)
	}

	observability.RecordPaginatorAudit(ctx, reason, "", map[string]interface{}{
		"message_id": ref.MessageID,
	})
	logger.Debug().Str("reason", reason).Msg("Paginator removed")
	return nil
}
