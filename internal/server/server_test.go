package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shinyyama/readinglist-backend/internal/config"
	"github.com/shinyyama/readinglist-backend/internal/repository"
	"github.com/shinyyama/readinglist-backend/internal/testutil"
)

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type tagJSON struct {
	ID     uint64 `json:"id"`
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
}

type itemJSON struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Notes     *string   `json:"notes"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
	Tags      []tagJSON `json:"tags"`
}

type itemListJSON struct {
	Data   []itemJSON `json:"data"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

type testAPI struct {
	t   *testing.T
	srv *Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clock := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	return newTestAPIWithClock(t, func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
}

func newTestAPIWithClock(t *testing.T, clock func() time.Time) *testAPI {
	t.Helper()
	cfg := &config.Config{TouchOnNoopTagChange: true}
	srv := New(repository.NewStore(testutil.NewDB(t)), cfg, zap.NewNop(), Options{
		GitSHA: "abc123",
		Clock:  clock,
	})
	return &testAPI{t: t, srv: srv}
}

func parseStamp(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err, s)
	return ts
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) createUser(email string) uint64 {
	rec := a.do(http.MethodPost, "/users", map[string]any{"email": email, "display_name": "Reader"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		Data struct {
			ID uint64 `json:"id"`
		} `json:"data"`
	}](a.t, rec).Data.ID
}

func (a *testAPI) createTag(userID uint64, name string) uint64 {
	rec := a.do(http.MethodPost, "/tags", map[string]any{"user_id": userID, "name": name})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		Data tagJSON `json:"data"`
	}](a.t, rec).Data.ID
}

func (a *testAPI) createItem(body map[string]any) itemJSON {
	rec := a.do(http.MethodPost, "/items", body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		Data itemJSON `json:"data"`
	}](a.t, rec).Data
}

func tagNames(it itemJSON) []string {
	out := make([]string, len(it.Tags))
	for i, tg := range it.Tags {
		out[i] = tg.Name
	}
	return out
}

func TestServer_InfoAndHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", decode[map[string]string](t, rec)["git_sha"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_HealthWithoutDB(t *testing.T) {
	srv := New(repository.NewStore(nil), &config.Config{}, zap.NewNop(), Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_ItemTagFlow(t *testing.T) {
	api := newTestAPI(t)
	uid := api.createUser("u@example.com")
	history := api.createTag(uid, "history")
	bio := api.createTag(uid, "bio")

	item := api.createItem(map[string]any{"user_id": uid, "title": "Sapiens", "kind": "book", "tag_ids": []uint64{history}})
	assert.Equal(t, "planned", item.Status)
	assert.Equal(t, "normal", item.Priority)
	assert.Equal(t, []string{"history"}, tagNames(item))

	rec := api.do(http.MethodPost, fmt.Sprintf("/items/%d/tags", item.ID), map[string]any{"tag_ids": []uint64{bio}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"bio", "history"}, tagNames(decode[struct {
		Data itemJSON `json:"data"`
	}](t, rec).Data))

	rec = api.do(http.MethodDelete, fmt.Sprintf("/items/%d/tags", item.ID), map[string]any{"tag_ids": []uint64{history}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"bio"}, tagNames(decode[struct {
		Data itemJSON `json:"data"`
	}](t, rec).Data))

	rec = api.do(http.MethodPost, "/tags", map[string]any{"user_id": uid, "name": "bio"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decode[apiError](t, rec).Error.Code)

	rec = api.do(http.MethodPost, fmt.Sprintf("/items/%d/tags", item.ID), map[string]any{"tag_ids": []uint64{}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_CreateItemWithForeignTag(t *testing.T) {
	api := newTestAPI(t)
	alice := api.createUser("alice@example.com")
	bob := api.createUser("bob@example.com")
	foreign := api.createTag(bob, "theirs")

	rec := api.do(http.MethodPost, "/items", map[string]any{"user_id": alice, "title": "x", "kind": "book", "tag_ids": []uint64{foreign}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[apiError](t, rec)
	assert.Equal(t, "VALIDATION", body.Error.Code)
	assert.Equal(t, "tag not found or not owned by user", body.Error.Message)

	rec = api.do(http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[itemListJSON](t, rec).Total)
}

func TestServer_ListItems(t *testing.T) {
	api := newTestAPI(t)
	uid := api.createUser("u@example.com")
	a := api.createTag(uid, "a")
	b := api.createTag(uid, "b")
	api.createItem(map[string]any{"user_id": uid, "title": "Low one", "kind": "book", "priority": "low", "tag_ids": []uint64{a, b}})
	api.createItem(map[string]any{"user_id": uid, "title": "High one", "kind": "article", "priority": "high", "tag_ids": []uint64{b}})
	api.createItem(map[string]any{"user_id": uid, "title": "Normal one", "kind": "book"})

	rec := api.do(http.MethodGet, fmt.Sprintf("/items?tag_ids=%d,%d&sort_by=priority&sort_order=desc", a, b), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[itemListJSON](t, rec)
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, 50, list.Limit)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "High one", list.Data[0].Title)
	assert.Equal(t, "Low one", list.Data[1].Title)

	rec = api.do(http.MethodGet, "/items?title_contains=ONE&kind=book&limit=1&offset=1&sort_order=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list = decode[itemListJSON](t, rec)
	assert.EqualValues(t, 2, list.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Normal one", list.Data[0].Title)
	assert.Equal(t, 1, list.Offset)
}

func TestServer_ListItemsRejectsBadQuery(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		query string
		field string
	}{
		{"status=finished", "status"},
		{"sort_by=title", "sort_by"},
		{"sort_order=sideways", "sort_order"},
		{"limit=0", "limit"},
		{"limit=101", "limit"},
		{"limit=ten", "limit"},
		{"offset=-1", "offset"},
		{"tag_ids=1,x", "tag_ids"},
		{"created_after=yesterday", "created_after"},
		{"user_id=-3", "user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := api.do(http.MethodGet, "/items?"+tt.query, nil)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			body := decode[apiError](t, rec)
			assert.Equal(t, "VALIDATION", body.Error.Code)
			assert.Contains(t, body.Error.Details, tt.field)
		})
	}
}

func TestServer_UpdateAndDeleteItem(t *testing.T) {
	api := newTestAPI(t)
	uid := api.createUser("u@example.com")
	item := api.createItem(map[string]any{"user_id": uid, "title": "Draft", "kind": "book", "notes": "n"})

	rec := api.do(http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), map[string]any{"status": "done", "notes": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[struct {
		Data itemJSON `json:"data"`
	}](t, rec).Data
	assert.Equal(t, "done", updated.Status)
	assert.Equal(t, "Draft", updated.Title)
	assert.Nil(t, updated.Notes)
	assert.True(t, parseStamp(t, updated.UpdatedAt).After(parseStamp(t, item.UpdatedAt)))

	rec = api.do(http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), map[string]any{"kind": "podcast"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[apiError](t, rec).Error.Code)

	rec = api.do(http.MethodGet, "/items/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_TimestampsKeepMilliseconds(t *testing.T) {
	now := time.Date(2024, 2, 1, 8, 0, 0, 123_000_000, time.UTC)
	api := newTestAPIWithClock(t, func() time.Time { return now })
	uid := api.createUser("ms@example.com")
	item := api.createItem(map[string]any{"user_id": uid, "title": "Precise", "kind": "article"})
	assert.Equal(t, "2024-02-01T08:00:00.123Z", item.CreatedAt)

	t.Run("empty patch advances updated_at", func(t *testing.T) {
		rec := api.do(http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), map[string]any{})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[struct {
			Data itemJSON `json:"data"`
		}](t, rec).Data
		assert.NotEqual(t, item.UpdatedAt, updated.UpdatedAt)
		assert.True(t, parseStamp(t, updated.UpdatedAt).After(parseStamp(t, item.UpdatedAt)))
		assert.Equal(t, item.CreatedAt, updated.CreatedAt)
	})

	t.Run("created_at round-trips through created_before and created_after", func(t *testing.T) {
		for _, param := range []string{"created_before", "created_after"} {
			path := fmt.Sprintf("/items?user_id=%d&%s=%s", uid, param, url.QueryEscape(item.CreatedAt))
			rec := api.do(http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			list := decode[itemListJSON](t, rec)
			require.Len(t, list.Data, 1, param)
			assert.Equal(t, item.ID, list.Data[0].ID)
		}
	})
}

func TestServer_TagsAndUsers(t *testing.T) {
	api := newTestAPI(t)
	alice := api.createUser("alice@example.com")
	bob := api.createUser("bob@example.com")
	api.createTag(alice, "python")
	api.createTag(alice, "fantasy")
	history := api.createTag(bob, "history")

	rec := api.do(http.MethodGet, fmt.Sprintf("/tags?user_id=%d", alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Data  []tagJSON `json:"data"`
		Total int       `json:"total"`
	}](t, rec)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "fantasy", list.Data[0].Name)

	rec = api.do(http.MethodGet, fmt.Sprintf("/tags/%d", history), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/users", map[string]any{"email": "alice@example.com", "display_name": "Dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = api.do(http.MethodPost, "/users", map[string]any{"email": "nope", "display_name": "Bad"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[apiError](t, rec).Error.Details, "email")

	rec = api.do(http.MethodDelete, fmt.Sprintf("/users/%d", bob), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, fmt.Sprintf("/tags/%d", history), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodGet, fmt.Sprintf("/users/%d", bob), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/tags", map[string]any{"user_id": alice})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_MalformedJSON(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
