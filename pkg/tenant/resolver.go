package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/cache"
	"github.com/dmitrymomot/publishkit/pkg/logger"
)

const (
	// MissingMarker is the cached value recording that a host has no tenant.
	MissingMarker = "MISSING"

	DefaultCacheTTL         = time.Hour
	DefaultNegativeCacheTTL = 5 * time.Minute
)

var (
	DefaultDevHosts     = []string{"localhost", "127.0.0.1", "backend"}
	DefaultHostPrefixes = []string{"api.", "www."}
)

// Outcome describes how a Resolve call was answered.
type Outcome string

const (
	OutcomeCacheHit      Outcome = "cache_hit"
	OutcomeCachedMissing Outcome = "cached_missing"
	OutcomeResolved      Outcome = "resolved"
	OutcomeDevFallback   Outcome = "dev_fallback"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeError         Outcome = "error"
)

// Resolver maps request hosts to tenant ids, caching both hits and misses.
type Resolver struct {
	store    Store
	cache    cache.Store
	ttl      time.Duration
	negTTL   time.Duration
	devHosts []string
	prefixes []string
	logger   *slog.Logger
	observe  func(Outcome)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCacheTTL sets how long a resolved tenant id is cached.
func WithCacheTTL(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithNegativeCacheTTL sets how long a "no tenant" answer is cached.
func WithNegativeCacheTTL(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.negTTL = d
		}
	}
}

// WithDevHosts replaces the hosts that fall back to the first active tenant.
// An empty list disables the fallback.
func WithDevHosts(hosts ...string) ResolverOption {
	return func(r *Resolver) { r.devHosts = hosts }
}

// WithHostPrefixes replaces the prefixes stripped from the host before lookup.
func WithHostPrefixes(prefixes ...string) ResolverOption {
	return func(r *Resolver) { r.prefixes = prefixes }
}

// WithResolverLogger sets the logger for non-fatal cache failures.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers a callback invoked once per Resolve call.
func WithObserver(fn func(Outcome)) ResolverOption {
	return func(r *Resolver) { r.observe = fn }
}

// NewResolver creates a Resolver reading tenants from store and caching in c.
func NewResolver(store Store, c cache.Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:    store,
		cache:    c,
		ttl:      DefaultCacheTTL,
		negTTL:   DefaultNegativeCacheTTL,
		devHosts: DefaultDevHosts,
		prefixes: DefaultHostPrefixes,
		logger:   logger.Discard(),
		observe:  func(Outcome) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CacheKey is the cache key holding the tenant id for a canonical host.
func CacheKey(canonicalHost string) string {
	return "tenant_id_" + canonicalHost
}

// NormalizeHost returns the host without port, lower-cased, and its canonical
// form with at most one of prefixes removed.
func NormalizeHost(host string, prefixes []string) (bare, canonical string) {
	bare = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(bare); err == nil {
		bare = h
	}
	bare = strings.TrimSuffix(strings.Trim(bare, "[]"), ".")

	canonical = bare
	for _, p := range prefixes {
		if strings.HasPrefix(bare, p) && len(bare) > len(p) {
			canonical = bare[len(p):]
			break
		}
	}
	return bare, canonical
}

// Resolve returns the tenant id for host, or ErrTenantNotFound when no active
// tenant is registered for it. Store and cache read failures are wrapped in
// ErrResolution. Failures to write the cache are logged and ignored.
func (r *Resolver) Resolve(ctx context.Context, host string) (uuid.UUID, error) {
	bare, canonical := NormalizeHost(host, r.prefixes)
	if canonical == "" {
		r.observe(OutcomeNotFound)
		return uuid.Nil, ErrTenantNotFound
	}
	key := CacheKey(canonical)

	cached, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.observe(OutcomeError)
		return uuid.Nil, errors.Join(ErrResolution, err)
	}
	if ok {
		if cached == MissingMarker {
			r.observe(OutcomeCachedMissing)
			return uuid.Nil, ErrTenantNotFound
		}
		if id, perr := uuid.Parse(cached); perr == nil {
			r.observe(OutcomeCacheHit)
			return id, nil
		}
		r.logger.WarnContext(ctx, "discarding malformed cached tenant id",
			logger.Host(canonical), slog.String("value", cached))
	}

	outcome := OutcomeResolved
	t, err := r.store.ActiveByDomain(ctx, canonical)
	if errors.Is(err, ErrTenantNotFound) && slices.Contains(r.devHosts, bare) {
		outcome = OutcomeDevFallback
		t, err = r.store.FirstActive(ctx)
	}

	switch {
	case err == nil:
		r.remember(ctx, key, t.ID.String(), r.ttl)
		r.observe(outcome)
		return t.ID, nil
	case errors.Is(err, ErrTenantNotFound):
		r.remember(ctx, key, MissingMarker, r.negTTL)
		r.observe(OutcomeNotFound)
		return uuid.Nil, ErrTenantNotFound
	default:
		r.observe(OutcomeError)
		return uuid.Nil, errors.Join(ErrResolution, err)
	}
}

// Invalidate drops the cached answer for host, e.g. after a domain change.
func (r *Resolver) Invalidate(ctx context.Context, host string) error {
	_, canonical := NormalizeHost(host, r.prefixes)
	if canonical == "" {
		return nil
	}
	return r.cache.Delete(ctx, CacheKey(canonical))
}

func (r *Resolver) remember(ctx context.Context, key, value string, ttl time.Duration) {
	if err := r.cache.Set(ctx, key, value, ttl); err != nil {
		r.logger.WarnContext(ctx, "failed to cache tenant resolution",
			slog.String("key", key), logger.Error(err))
	}
}
