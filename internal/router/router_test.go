package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/post-service/internal/config"
	"github.com/iliyamo/post-service/internal/handler"
	"github.com/iliyamo/post-service/internal/model"
	"github.com/iliyamo/post-service/internal/repository"
)

// memoryStore is an in-memory repository.PostStore with the same id rules
// as the real backends.
type memoryStore struct {
	mu    sync.Mutex
	order []string
	posts map[string]model.Post
}

func newMemoryStore() *memoryStore {
	return &memoryStore{posts: map[string]model.Post{}}
}

func (m *memoryStore) List(context.Context) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Post{}
	for _, id := range m.order {
		if p, ok := m.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryStore) Create(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID().Hex()
	p.Date = time.Now().UTC()
	m.posts[p.ID] = *p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*model.Post, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) (*model.DeleteResult, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return &model.DeleteResult{Acknowledged: true}, nil
	}
	delete(m.posts, id)
	return &model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (m *memoryStore) UpdateTitle(_ context.Context, id, title string) (*model.UpdateResult, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return &model.UpdateResult{Acknowledged: true}, nil
	}
	res := &model.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if p.Title != title {
		p.Title = title
		m.posts[id] = p
		res.ModifiedCount = 1
	}
	return res, nil
}

func (m *memoryStore) Ping(context.Context) error { return nil }

func newServer(t *testing.T, store repository.PostStore, opts Options) *echo.Echo {
	t.Helper()
	e := echo.New()
	Setup(e, opts)
	RegisterRoutes(e, &handler.HealthHandler{Store: store})
	RegisterPosts(e, handler.NewPostHandler(store, nil), opts)
	return e
}

func call(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostLifecycle(t *testing.T) {
	e := newServer(t, newMemoryStore(), Options{})

	// create
	rec := call(t, e, http.MethodPost, "/posts", `{"title":"A","description":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	id := created.ID

	// fetch
	rec = call(t, e, http.MethodGet, "/posts/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, id, fetched.ID)
	assert.Equal(t, "A", fetched.Title)
	assert.Equal(t, "B", fetched.Description)

	// update title
	rec = call(t, e, http.MethodPatch, "/posts/"+id, `{"title":"C"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"matchedCount":1,"modifiedCount":1}`, rec.Body.String())

	rec = call(t, e, http.MethodGet, "/posts/"+id, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "C", fetched.Title)
	assert.Equal(t, "B", fetched.Description, "description must survive a title update")

	// delete
	rec = call(t, e, http.MethodDelete, "/posts/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rec.Body.String())

	rec = call(t, e, http.MethodGet, "/posts/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestListAfterCreations(t *testing.T) {
	e := newServer(t, newMemoryStore(), Options{})
	const n = 5

	for i := 0; i < n; i++ {
		rec := call(t, e, http.MethodPost, "/posts", `{"title":"t","description":"d"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := call(t, e, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.GreaterOrEqual(t, len(posts), n)
}

func TestStaticRoutes(t *testing.T) {
	e := newServer(t, newMemoryStore(), Options{})

	tests := []struct {
		target string
		want   string
	}{
		{"/", "we are on the home url"},
		{"/posts/specific", "Specific Post"},
		{"/posts/specific/", "Specific Post"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := call(t, e, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestUnknownAndMalformedIDs(t *testing.T) {
	e := newServer(t, newMemoryStore(), Options{})

	rec := call(t, e, http.MethodGet, "/posts/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = call(t, e, http.MethodGet, "/posts/does-not-exist", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnavailableStore(t *testing.T) {
	e := newServer(t, repository.UnavailablePostStore{}, Options{})

	assert.Equal(t, http.StatusServiceUnavailable, call(t, e, http.MethodGet, "/posts", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, call(t, e, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/", "").Code)
}

func TestCORS(t *testing.T) {
	e := newServer(t, newMemoryStore(), Options{})
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set(echo.HeaderOrigin, "http://example.com")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCachedListIsInvalidatedByWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	opts := Options{
		Redis: rdb,
		Cache: config.CacheConfig{
			Enabled: true,
			Methods: map[string]bool{http.MethodGet: true},
			TTL:     time.Minute,
			Prefix:  "cache",
		},
	}
	e := newServer(t, newMemoryStore(), opts)

	first := call(t, e, http.MethodGet, "/posts", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", call(t, e, http.MethodGet, "/posts", "").Header().Get("X-Cache"))

	require.Equal(t, http.StatusOK, call(t, e, http.MethodPost, "/posts", `{"title":"A","description":"B"}`).Code)

	rec := call(t, e, http.MethodGet, "/posts", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Len(t, posts, 1)
}

func TestCachedResponseHeadersThroughFullChain(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	opts := Options{
		Redis: rdb,
		Cache: config.CacheConfig{
			Enabled:      true,
			Methods:      map[string]bool{http.MethodGet: true},
			TTL:          time.Minute,
			KeyStrategy:  "route_query",
			Prefix:       "cache",
			MaxBodyBytes: 1 << 20,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:        true,
			Capacity:       60,
			RefillTokens:   1,
			RefillInterval: time.Hour,
			TTL:            5 * time.Hour,
			KeyStrategy:    "ip_route",
			Prefix:         "rl",
		},
	}
	e := newServer(t, newMemoryStore(), opts)

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.Header.Set(echo.HeaderOrigin, "http://example.com")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	wantRemaining := []string{"59", "58", "57"}
	wantCache := []string{"MISS", "HIT", "HIT"}
	for i := range wantRemaining {
		rec := get()
		require.Equal(t, http.StatusOK, rec.Code)
		h := rec.Header()
		assert.Equal(t, []string{wantCache[i]}, h.Values("X-Cache"))
		assert.Equal(t, []string{"*"}, h.Values(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, []string{echo.HeaderOrigin}, h.Values(echo.HeaderVary))
		assert.Equal(t, []string{wantRemaining[i]}, h.Values("X-RateLimit-Remaining"))
		assert.Len(t, h.Values(echo.HeaderContentType), 1)
	}
}
