package paginator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type sentPage struct {
	Target Target
	Page   Page
	View   *View
}

type editedPage struct {
	Ref  MessageRef
	Page Page
	View *View
}

// fakeMessenger records every transport call.
type fakeMessenger struct {
	mu sync.Mutex

	nextID int
	sent   []sentPage
	edits  []editedPage
	clears []MessageRef
	acks   []Interaction

	sendErr  error
	editErr  error
	clearErr error
	ackErr   error

	editDelay time.Duration
	// onEdit runs after a successful edit is recorded.
	onEdit func(ref MessageRef)
}

func (f *fakeMessenger) SendPage(_ context.Context, target Target, page Page, view *View) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentPage{Target: target, Page: page, View: view})
	return MessageRef{
		MessageID: fmt.Sprintf("msg-%d", f.nextID),
		ChannelID: target.ChannelID,
		GuildID:   target.GuildID,
	}, nil
}

func (f *fakeMessenger) EditPage(_ context.Context, ref MessageRef, page Page, view *View) error {
	if f.editDelay > 0 {
		time.Sleep(f.editDelay)
	}
	f.mu.Lock()
	if f.editErr != nil {
		f.mu.Unlock()
		return f.editErr
	}
	f.edits = append(f.edits, editedPage{Ref: ref, Page: page, View: view})
	hook := f.onEdit
	f.mu.Unlock()

	if hook != nil {
		hook(ref)
	}
	return nil
}

func (f *fakeMessenger) ClearControls(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears = append(f.clears, ref)
	return f.clearErr
}

func (f *fakeMessenger) Acknowledge(_ context.Context, in Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, in)
	return f.ackErr
}

func (f *fakeMessenger) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakeMessenger) lastEdit() editedPage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[len(f.edits)-1]
}

// countingStore wraps a Store and counts writes.
type countingStore struct {
	Store

	mu        sync.Mutex
	creates   int
	updates   int
	deletes   int
	createErr error
	deleteErr map[string]error
}

func (c *countingStore) Create(ctx context.Context, params CreateParams) (*Session, error) {
	c.mu.Lock()
	c.creates++
	err := c.createErr
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.Store.Create(ctx, params)
}

func (c *countingStore) UpdateIndex(ctx context.Context, messageID string, index int) error {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.Store.UpdateIndex(ctx, messageID, index)
}

func (c *countingStore) Delete(ctx context.Context, messageID string) error {
	c.mu.Lock()
	c.deletes++
	err := c.deleteErr[messageID]
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.Store.Delete(ctx, messageID)
}

func (c *countingStore) writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates + c.updates + c.deletes
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	engine    *Engine
	store     *countingStore
	memory    *MemoryStore
	messenger *fakeMessenger
	clock     *testClock
}

func newFixture(serialize bool) *fixture {
	clock := newTestClock()
	memory := NewMemoryStoreWithClock(clock.Now)
	store := &countingStore{Store: memory}
	messenger := &fakeMessenger{}
	engine := New(store, messenger, Options{
		BaseID:                "test_pg",
		TTL:                   time.Hour,
		BaseColor:             0x2B6CB0,
		SerializeInteractions: serialize,
		Logger:                zerolog.Nop(),
		Now:                   clock.Now,
	})
	return &fixture{
		engine:    engine,
		store:     store,
		memory:    memory,
		messenger: messenger,
		clock:     clock,
	}
}

// sendPages sends a paginator of n pages owned by ownerID and returns its ref.
func (f *fixture) sendPages(ctx context.Context, n int, ownerID string) (MessageRef, error) {
	p := f.engine.NewPaginator()
	for i := 0; i < n; i++ {
		p.AddPage(Embed(fmt.Sprintf("Title %d", i+1), fmt.Sprintf("Body %d", i+1)))
	}
	if err := p.Send(ctx, Target{ChannelID: "chan-1", GuildID: "guild-1", Owner: User{ID: ownerID, Name: "Alice"}}); err != nil {
		return MessageRef{}, err
	}
	f.messenger.mu.Lock()
	defer f.messenger.mu.Unlock()
	return MessageRef{
		MessageID: fmt.Sprintf("msg-%d", f.messenger.nextID),
		ChannelID: "chan-1",
		GuildID:   "guild-1",
	}, nil
}

func (f *fixture) click(ctx context.Context, ref MessageRef, userID, suffix string, values ...string) bool {
	return f.engine.ProcessInteraction(ctx, Interaction{
		ID:       "ix-" + suffix,
		CustomID: ControlID(f.engine.BaseID(), suffix),
		Values:   values,
		UserID:   userID,
		Message:  ref,
	})
}

func (f *fixture) currentIndex(ctx context.Context, messageID string) int {
	s, err := f.memory.Get(ctx, messageID)
	if err != nil {
		return -1
	}
	return s.CurrentIndex
}
