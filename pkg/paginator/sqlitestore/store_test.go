package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harun/pagina/pkg/paginator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testPages() []paginator.Page {
	return []paginator.Page{
		{Index: 0, Name: "General", Content: paginator.Embed("General", "Everyday commands").WithField("/help", "Show help", false)},
		{Index: 1, Content: paginator.Embed("Page two", "").WithColor(0x2B6CB0)},
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestStore_CreateGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "pagina.db"))

	ref := paginator.MessageRef{MessageID: "100:5", ChannelID: "100", GuildID: "100"}
	created, err := store.Create(ctx, paginator.CreateParams{Ref: ref, OwnerID: "42", Pages: testPages(), TTL: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), created.ExpireAt.UTC())

	got, err := store.Get(ctx, "100:5")
	require.NoError(t, err)
	assert.Equal(t, ref, got.Ref)
	assert.Equal(t, "42", got.OwnerID)
	assert.Equal(t, 0, got.CurrentIndex)
	assert.True(t, testNow.Add(time.Hour).Equal(got.ExpireAt))

	require.Len(t, got.Pages, 2)
	assert.Equal(t, "General", got.Pages[0].Name)
	assert.Equal(t, "Page 2", got.Pages[1].Label())
	assert.Equal(t, 1, got.Pages[1].Index)
	assert.Equal(t, "Everyday commands", got.Pages[0].Content.Description())
	assert.Equal(t, []paginator.Field{{Name: "/help", Value: "Show help"}}, got.Pages[0].Content.Fields())
	assert.NotContains(t, got.Pages[0].Content, pageNameKey)
	assert.EqualValues(t, 0x2B6CB0, got.Pages[1].Content[paginator.KeyColor])
}

func TestStore_CreateRejectsDuplicatesAndEmpty(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "pagina.db"))

	params := paginator.CreateParams{Ref: paginator.MessageRef{MessageID: "m1"}, OwnerID: "u", Pages: testPages(), TTL: time.Hour}
	_, err := store.Create(ctx, params)
	require.NoError(t, err)

	_, err = store.Create(ctx, params)
	assert.Error(t, err)

	_, err = store.Create(ctx, paginator.CreateParams{Ref: paginator.MessageRef{MessageID: "m2"}, OwnerID: "u"})
	assert.True(t, errors.Is(err, paginator.ErrInvalidArgument))

	_, err = store.Create(ctx, paginator.CreateParams{OwnerID: "u", Pages: testPages()})
	assert.Error(t, err)
}

func TestStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "pagina.db"))

	_, err := store.Create(ctx, paginator.CreateParams{Ref: paginator.MessageRef{MessageID: "m1"}, OwnerID: "u", Pages: testPages(), TTL: time.Hour})
	require.NoError(t, err)

	require.NoError(t, store.UpdateIndex(ctx, "m1", 1))
	got, err := store.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)

	require.NoError(t, store.Delete(ctx, "m1"))
	require.NoError(t, store.Delete(ctx, "m1"))

	_, err = store.Get(ctx, "m1")
	assert.True(t, errors.Is(err, paginator.ErrSessionNotFound))
	assert.True(t, errors.Is(store.UpdateIndex(ctx, "m1", 0), paginator.ErrSessionNotFound))
}

func TestStore_ListExpired(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "pagina.db"))

	for id, ttl := range map[string]time.Duration{
		"older":  -2 * time.Hour,
		"old":    -time.Hour,
		"exact":  0,
		"future": time.Hour,
	} {
		_, err := store.Create(ctx, paginator.CreateParams{Ref: paginator.MessageRef{MessageID: id}, OwnerID: "u", Pages: testPages(), TTL: ttl})
		require.NoError(t, err)
	}

	expired, err := store.ListExpired(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, "older", expired[0].Ref.MessageID)
	assert.Equal(t, "old", expired[1].Ref.MessageID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	deleted, err := store.DeleteExpired(ctx, testNow)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pagina.db")

	first, err := Open(path, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	_, err = first.Create(ctx, paginator.CreateParams{Ref: paginator.MessageRef{MessageID: "m1", ChannelID: "c"}, OwnerID: "u", Pages: testPages(), TTL: time.Hour})
	require.NoError(t, err)
	require.NoError(t, first.UpdateIndex(ctx, "m1", 1))
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	got, err := second.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, "c", got.Ref.ChannelID)
	assert.Len(t, got.Pages, 2)
}

func TestStore_CancelledContext(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "pagina.db"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "m1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_DrivesEngine(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "pagina.db"))
	messenger := &stubMessenger{}
	engine := paginator.New(store, messenger, paginator.Options{BaseID: "pg"})

	p := engine.NewPaginator()
	p.AddPage(paginator.Embed("one", ""))
	p.AddPage(paginator.Embed("two", ""))
	require.NoError(t, p.Send(ctx, paginator.Target{ChannelID: "c", Owner: paginator.User{ID: "u"}}))

	handled := engine.ProcessInteraction(ctx, paginator.Interaction{
		CustomID: "pg" + paginator.SuffixStepForward1,
		UserID:   "u",
		Message:  paginator.MessageRef{MessageID: "c:1", ChannelID: "c"},
	})
	require.True(t, handled)

	got, err := store.Get(ctx, "c:1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, 1, messenger.edits)
}

type stubMessenger struct {
	edits int
}

func (s *stubMessenger) SendPage(_ context.Context, target paginator.Target, _ paginator.Page, _ *paginator.View) (paginator.MessageRef, error) {
	return paginator.MessageRef{MessageID: target.ChannelID + ":1", ChannelID: target.ChannelID}, nil
}

func (s *stubMessenger) EditPage(context.Context, paginator.MessageRef, paginator.Page, *paginator.View) error {
	s.edits++
	return nil
}

func (s *stubMessenger) ClearControls(context.Context, paginator.MessageRef) error { return nil }

func (s *stubMessenger) Acknowledge(context.Context, paginator.Interaction) error { return nil }

func TestStore_ListByOwner(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "pagina.db"))

	for _, params := range []paginator.CreateParams{
		{Ref: paginator.MessageRef{MessageID: "late", ChannelID: "c1"}, OwnerID: "u1", TTL: 2 * time.Hour},
		{Ref: paginator.MessageRef{MessageID: "soon", ChannelID: "c1"}, OwnerID: "u1", TTL: time.Hour},
		{Ref: paginator.MessageRef{MessageID: "other", ChannelID: "c1"}, OwnerID: "u2", TTL: time.Hour},
	} {
		params.Pages = testPages()
		_, err := store.Create(ctx, params)
		require.NoError(t, err)
	}
	require.NoError(t, store.UpdateIndex(ctx, "late", 1))

	owned, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "soon", owned[0].Ref.MessageID)
	assert.Equal(t, "late", owned[1].Ref.MessageID)
	assert.Equal(t, 1, owned[1].CurrentIndex)
	assert.Equal(t, "General", owned[1].Pages[0].Name)

	none, err := store.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
