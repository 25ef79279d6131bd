package paginator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Sessions do not survive a restart;
// it exists for tests and for running the engine without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty store that computes expiry from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      now,
	}
}

// Create inserts a session with CurrentIndex 0.
func (m *MemoryStore) Create(ctx context.Context, params CreateParams) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.Ref.MessageID == "" {
		return nil, fmt.Errorf("message id is required")
	}

	session := &Session{
		Ref:      params.Ref,
		OwnerID:  params.OwnerID,
		Pages:    append([]Page(nil), params.Pages...),
		ExpireAt: m.now().Add(params.TTL),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[params.Ref.MessageID]; exists {
		return nil, fmt.Errorf("session for message %s already exists", params.Ref.MessageID)
	}
	m.sessions[params.Ref.MessageID] = session

	return copySession(session), nil
}

// Get returns a copy of the stored session.
func (m *MemoryStore) Get(ctx context.Context, messageID string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[messageID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(session), nil
}

// UpdateIndex sets the current index of an existing session.
func (m *MemoryStore) UpdateIndex(ctx context.Context, messageID string, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[messageID]
	if !ok {
		return ErrSessionNotFound
	}
	session.CurrentIndex = index
	return nil
}

// Delete removes a session. Missing sessions are ignored.
func (m *MemoryStore) Delete(ctx context.Context, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, messageID)
	m.mu.Unlock()
	return nil
}

// ListExpired returns sessions whose expiry is before the given instant,
// oldest first.
func (m *MemoryStore) ListExpired(ctx context.Context, before time.Time) ([]*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var expired []*Session
	for _, session := range m.sessions {
		if session.Expired(before) {
			expired = append(expired, copySession(session))
		}
	}
	m.mu.RUnlock()

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpireAt.Before(expired[j].ExpireAt)
	})
	return expired, nil
}

// ListByOwner returns the sessions owned by ownerID, soonest expiry first.
func (m *MemoryStore) ListByOwner(ctx context.Context, ownerID string) ([]*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var owned []*Session
	for _, session := range m.sessions {
		if session.OwnerID == ownerID {
			owned = append(owned, copySession(session))
		}
	}
	m.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].ExpireAt.Equal(owned[j].ExpireAt) {
			return owned[i].ExpireAt.Before(owned[j].ExpireAt)
		}
		return owned[i].Ref.MessageID < owned[j].Ref.MessageID
	})
	return owned, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func copySession(s *Session) *Session {
	out := *s
	out.Pages = append([]Page(nil), s.Pages...)
	return &out
}
