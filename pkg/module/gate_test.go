package module_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/publishkit/pkg/cache"
	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

var errStorage = errors.New("storage unavailable")

// stubStore serves fixed answers and counts lookups.
type stubStore struct {
	mu        sync.Mutex
	modules   map[string]*module.Module
	overrides map[uuid.UUID]*module.Override
	slugErr   error
	overErr   error
	lookups   int
}

func (s *stubStore) BySlug(_ context.Context, slug string) (*module.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.slugErr != nil {
		return nil, s.slugErr
	}
	m, ok := s.modules[slug]
	if !ok {
		return nil, module.ErrModuleNotFound
	}
	return m, nil
}

func (s *stubStore) Override(_ context.Context, tenantID, _ uuid.UUID) (*module.Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overErr != nil {
		return nil, s.overErr
	}
	o, ok := s.overrides[tenantID]
	if !ok {
		return nil, module.ErrOverrideNotFound
	}
	return o, nil
}

func (s *stubStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

type failingCache struct{ err error }

func (c failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, c.err
}

func (c failingCache) Set(context.Context, string, string, time.Duration) error {
	return c.err
}

func (c failingCache) Delete(context.Context, string) error {
	return c.err
}

func serve(t *testing.T, g *module.Gate, tenantID uuid.UUID, path string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tenantID != uuid.Nil {
		ctx, token := tenant.Set(tenant.NewScope(req.Context()), tenantID)
		defer tenant.Clear(token)
		req = req.WithContext(ctx)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w, called
}

func TestModuleFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		slug string
		ok   bool
	}{
		{"/api/v1/articles/posts/", "articles", true},
		{"/api/v1/articles", "articles", true},
		{"/api/v1/articles/", "articles", true},
		{"/api/v1/", "", false},
		{"/api/v1", "", false},
		{"/api/v2/articles/", "", false},
		{"/health", "", false},
		{"/api/v1//x", "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			slug, ok := module.ModuleFromPath(module.DefaultPathPrefix, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.slug, slug)
		})
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("8b0e7c1e-6a57-4b8f-9d7e-3c1f2a4b5c6d")
	assert.Equal(t, "module_active_global_articles", module.CacheKey(uuid.Nil, "articles"))
	assert.Equal(t, "module_active_8b0e7c1e-6a57-4b8f-9d7e-3c1f2a4b5c6d_articles", module.CacheKey(id, "articles"))
}

func TestGate(t *testing.T) {
	t.Parallel()

	tenantA, tenantB := uuid.New(), uuid.New()
	newStore := func() *stubStore {
		return &stubStore{
			modules: map[string]*module.Module{
				"articles": {ID: uuid.New(), Slug: "articles", Name: "Articles", Active: false},
				"comments": {ID: uuid.New(), Slug: "comments", Name: "Comments", Active: true},
				"core":     {ID: uuid.New(), Slug: "core", Name: "Core", Active: false, System: true},
			},
			overrides: map[uuid.UUID]*module.Override{
				tenantA: {TenantID: tenantA, Active: true},
			},
		}
	}

	t.Run("disabled module is refused with structured body", func(t *testing.T) {
		t.Parallel()
		g := module.NewGate(newStore(), cache.NewMemoryStore())

		w, called := serve(t, g, tenantB, "/api/v1/articles/posts/")
		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t,
			`{"code":"module_disabled","message":"The module articles is currently disabled for this tenant.","details":{}}`,
			w.Body.String())
	})

	t.Run("tenant override enables module", func(t *testing.T) {
		t.Parallel()
		g := module.NewGate(newStore(), cache.NewMemoryStore())

		w, called := serve(t, g, tenantA, "/api/v1/articles/posts/")
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("override disables an enabled module", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		s.overrides[tenantB] = &module.Override{TenantID: tenantB, Active: false}
		g := module.NewGate(s, cache.NewMemoryStore())

		w, _ := serve(t, g, tenantB, "/api/v1/comments/")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("system module ignores override", func(t *testing.T) {
		t.Parallel()
		g := module.NewGate(newStore(), cache.NewMemoryStore())

		w, called := serve(t, g, tenantA, "/api/v1/core/settings/")
		assert.False(t, called, "override for tenant A must not enable a disabled system module")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no tenant uses global flag", func(t *testing.T) {
		t.Parallel()
		g := module.NewGate(newStore(), cache.NewMemoryStore())

		w, _ := serve(t, g, uuid.Nil, "/api/v1/articles/")
		assert.Equal(t, http.StatusForbidden, w.Code)
		w, _ = serve(t, g, uuid.Nil, "/api/v1/comments/")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown module is enabled", func(t *testing.T) {
		t.Parallel()
		g := module.NewGate(newStore(), cache.NewMemoryStore())

		_, called := serve(t, g, tenantB, "/api/v1/analytics/")
		assert.True(t, called)
	})

	t.Run("exempt and non api paths skip lookup", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		g := module.NewGate(s, cache.NewMemoryStore())

		for _, p := range []string{"/api/v1/auth/login/", "/api/v1/entities/config/", "/api/v1/accounts/me/", "/health", "/api/v1/"} {
			_, called := serve(t, g, tenantB, p)
			assert.True(t, called, p)
		}
		assert.Zero(t, s.count())
	})

	t.Run("decision is cached per tenant", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		c := cache.NewMemoryStore()
		g := module.NewGate(s, c)

		for range 3 {
			serve(t, g, tenantA, "/api/v1/articles/")
			serve(t, g, tenantB, "/api/v1/articles/")
		}
		assert.Equal(t, 2, s.count())

		v, ok, _ := c.Get(context.Background(), module.CacheKey(tenantA, "articles"))
		require.True(t, ok)
		assert.Equal(t, "1", v)
		v, ok, _ = c.Get(context.Background(), module.CacheKey(tenantB, "articles"))
		require.True(t, ok)
		assert.Equal(t, "0", v)
	})

	t.Run("cache expires after ttl", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		var mu sync.Mutex
		clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
		s := newStore()
		g := module.NewGate(s, cache.NewMemoryStore(cache.WithClock(clock)))

		serve(t, g, tenantB, "/api/v1/articles/")
		serve(t, g, tenantB, "/api/v1/articles/")
		assert.Equal(t, 1, s.count())

		mu.Lock()
		now = now.Add(module.DefaultCacheTTL)
		mu.Unlock()
		serve(t, g, tenantB, "/api/v1/articles/")
		assert.Equal(t, 2, s.count())
	})

	t.Run("invalidate drops cached decision", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		g := module.NewGate(s, cache.NewMemoryStore())

		w, _ := serve(t, g, tenantB, "/api/v1/articles/")
		require.Equal(t, http.StatusForbidden, w.Code)

		s.mu.Lock()
		s.overrides[tenantB] = &module.Override{TenantID: tenantB, Active: true}
		s.mu.Unlock()

		w, _ = serve(t, g, tenantB, "/api/v1/articles/")
		assert.Equal(t, http.StatusForbidden, w.Code, "stale until invalidated")

		require.NoError(t, g.Invalidate(context.Background(), tenantB, "articles"))
		w, _ = serve(t, g, tenantB, "/api/v1/articles/")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGate_FailOpen(t *testing.T) {
	t.Parallel()
	tid := uuid.New()

	t.Run("module lookup error", func(t *testing.T) {
		t.Parallel()
		s := &stubStore{slugErr: errStorage}
		c := cache.NewMemoryStore()
		g := module.NewGate(s, c)

		_, called := serve(t, g, tid, "/api/v1/articles/")
		assert.True(t, called)

		_, ok, _ := c.Get(context.Background(), module.CacheKey(tid, "articles"))
		assert.False(t, ok, "fail-open decisions must not be cached")

		serve(t, g, tid, "/api/v1/articles/")
		assert.Equal(t, 2, s.count())
	})

	t.Run("override lookup error", func(t *testing.T) {
		t.Parallel()
		s := &stubStore{
			modules: map[string]*module.Module{"articles": {ID: uuid.New(), Slug: "articles", Active: false}},
			overErr: errStorage,
		}
		g := module.NewGate(s, cache.NewMemoryStore())

		_, called := serve(t, g, tid, "/api/v1/articles/")
		assert.True(t, called)
	})

	t.Run("cache error", func(t *testing.T) {
		t.Parallel()
		s := &stubStore{modules: map[string]*module.Module{"articles": {Slug: "articles", Active: false}}}
		g := module.NewGate(s, failingCache{err: errStorage})

		_, called := serve(t, g, tid, "/api/v1/articles/")
		assert.True(t, called)
		assert.True(t, g.Enabled(context.Background(), "articles"))
	})
}

func TestGate_Observer(t *testing.T) {
	t.Parallel()

	type observed struct {
		slug     string
		decision module.Decision
	}
	var (
		mu   sync.Mutex
		seen []observed
	)
	s := &stubStore{modules: map[string]*module.Module{
		"articles": {Slug: "articles", Active: false},
		"comments": {Slug: "comments", Active: true},
	}}
	g := module.NewGate(s, cache.NewMemoryStore(), module.WithObserver(func(slug string, d module.Decision) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, observed{slug, d})
	}))

	serve(t, g, uuid.Nil, "/api/v1/articles/")
	serve(t, g, uuid.Nil, "/api/v1/comments/")
	serve(t, g, uuid.Nil, "/api/v1/auth/login/")
	serve(t, g, uuid.Nil, "/api/v1/analytics/")
	serve(t, g, uuid.Nil, "/api/v1/analytics/")

	s.mu.Lock()
	s.slugErr = errStorage
	s.mu.Unlock()
	serve(t, g, uuid.Nil, "/api/v1/tags/")

	assert.Equal(t, []observed{
		{"articles", module.DecisionDenied},
		{"comments", module.DecisionAllowed},
		{"auth", module.DecisionExempt},
		{module.UnknownModule, module.DecisionAllowed},
		{module.UnknownModule, module.DecisionAllowed},
		{module.UnknownModule, module.DecisionFailOpen},
	}, seen)

	var body map[string]any
	w, _ := serve(t, g, uuid.Nil, "/api/v1/articles/")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "module_disabled", body["code"])
}

func TestGate_UnregisteredSlugs(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		slugs = map[string]int{}
	)
	tid := uuid.New()
	s := &stubStore{modules: map[string]*module.Module{"articles": {Slug: "articles", Active: true}}}
	c := cache.NewMemoryStore()
	g := module.NewGate(s, c, module.WithObserver(func(slug string, _ module.Decision) {
		mu.Lock()
		defer mu.Unlock()
		slugs[slug]++
	}))

	for i := range 500 {
		_, called := serve(t, g, tid, fmt.Sprintf("/api/v1/junk-%d/", i))
		assert.True(t, called)
	}
	serve(t, g, tid, "/api/v1/articles/")

	assert.Equal(t, map[string]int{module.UnknownModule: 500, "articles": 1}, slugs)

	v, ok, err := c.Get(context.Background(), module.CacheKey(tid, "junk-7"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "-", v)

	lookups := s.count()
	serve(t, g, tid, "/api/v1/junk-7/")
	assert.Equal(t, lookups, s.count(), "unregistered slugs are cached")
	assert.Equal(t, 501, slugs[module.UnknownModule])
}

func TestGate_CustomPrefixAndExempt(t *testing.T) {
	t.Parallel()

	s := &stubStore{modules: map[string]*module.Module{"articles": {Slug: "articles", Active: false}}}
	g := module.NewGate(s, cache.NewMemoryStore(),
		module.WithPathPrefix("api/v2"),
		module.WithExempt("articles"),
	)

	_, called := serve(t, g, uuid.Nil, "/api/v2/articles/")
	assert.True(t, called)
	_, called = serve(t, g, uuid.Nil, "/api/v1/articles/")
	assert.True(t, called)
	assert.Zero(t, s.count())
}
