package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/repository"
	"github.com/shinyyama/readinglist-backend/internal/testutil"
)

// fakeClock ticks one second per call.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type env struct {
	ctx   context.Context
	store *repository.Store
	clock *fakeClock
	items ItemService
	tags  TagService
	users UserService
}

func newEnv(t *testing.T, touchOnNoop bool) *env {
	t.Helper()
	store := repository.NewStore(testutil.NewDB(t))
	clock := newFakeClock()
	return &env{
		ctx:   context.Background(),
		store: store,
		clock: clock,
		items: NewItemService(store, NewTagAssociator(clock.Now, touchOnNoop), clock.Now, nil),
		tags:  NewTagService(store, nil),
		users: NewUserService(store, clock.Now, nil),
	}
}

func (e *env) user(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := e.users.Create(e.ctx, CreateUserInput{Email: email, DisplayName: email})
	require.NoError(t, err)
	return u
}

func (e *env) tag(t *testing.T, userID uint64, name string) *model.Tag {
	t.Helper()
	tag, err := e.tags.Create(e.ctx, userID, name)
	require.NoError(t, err)
	return tag
}

func (e *env) item(t *testing.T, userID uint64, title, priority string, tagIDs ...uint64) *model.Item {
	t.Helper()
	it, err := e.items.Create(e.ctx, CreateItemInput{
		UserID:   userID,
		Title:    title,
		Kind:     "book",
		Priority: priority,
		TagIDs:   tagIDs,
	})
	require.NoError(t, err)
	return it
}

func tagNames(item *model.Item) []string {
	names := make([]string, len(item.Tags))
	for i, t := range item.Tags {
		names[i] = t.Name
	}
	return names
}

func ptr[T any](v T) *T { return &v }
