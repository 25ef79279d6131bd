package paginator

import (
	"context"
	"time"
)

// MessageRef identifies a rendered message on the platform. All identifiers
// are opaque to the engine; MessageID must be unique across channels.
type MessageRef struct {
	MessageID string
	ChannelID string
	GuildID   string
}

// Session is the persisted navigation state of one paginated message.
type Session struct {
	Ref          MessageRef
	OwnerID      string
	Pages        []Page
	CurrentIndex int
	ExpireAt     time.Time
}

// Expired reports whether the session is eligible for reaping at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpireAt.Before(now)
}

// CreateParams describes a new session row.
type CreateParams struct {
	Ref     MessageRef
	OwnerID string
	Pages   []Page
	TTL     time.Duration
}

// Store persists sessions. Implementations must make Create atomic and Delete
// idempotent, and must return ErrSessionNotFound from Get and UpdateIndex
// when no row exists.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*Session, error)
	Get(ctx context.Context, messageID string) (*Session, error)
	UpdateIndex(ctx context.Context, messageID string, index int) error
	Delete(ctx context.Context, messageID string) error
	ListExpired(ctx context.Context, before time.Time) ([]*Session, error)
	// ListByOwner returns the sessions opened by ownerID, soonest expiry first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Session, error)
}
