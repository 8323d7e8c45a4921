package module

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/apierror"
	"github.com/dmitrymomot/publishkit/pkg/cache"
	"github.com/dmitrymomot/publishkit/pkg/logger"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

const (
	DefaultPathPrefix = "/api/v1/"
	DefaultCacheTTL   = 5 * time.Minute
)

// DefaultExempt lists path segments that are never gated.
var DefaultExempt = []string{"auth", "entities", "accounts"}

// Decision is the outcome of gating one request.
type Decision string

const (
	DecisionAllowed  Decision = "allowed"
	DecisionDenied   Decision = "denied"
	DecisionFailOpen Decision = "fail_open"
	DecisionExempt   Decision = "exempt"
)

// UnknownModule is the slug reported to observers for path segments that
// name no registered module.
const UnknownModule = "unknown"

const (
	cachedEnabled      = "1"
	cachedDisabled     = "0"
	cachedUnregistered = "-"
)

// Gate refuses requests addressed to modules that are disabled for the
// current tenant.
//
// Any failure while determining a module's status lets the request through:
// availability of the API is preferred over enforcing a flag that cannot be
// read. Such failures are logged and never cached.
type Gate struct {
	store   Store
	cache   cache.Store
	ttl     time.Duration
	prefix  string
	exempt  []string
	logger  *slog.Logger
	observe func(slug string, d Decision)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

func WithCacheTTL(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.ttl = d
		}
	}
}

// WithPathPrefix sets the path prefix after which the module segment follows.
func WithPathPrefix(prefix string) GateOption {
	return func(g *Gate) {
		if prefix != "" {
			g.prefix = "/" + strings.Trim(prefix, "/") + "/"
		}
	}
}

// WithExempt replaces the list of module segments that are never gated.
func WithExempt(slugs ...string) GateOption {
	return func(g *Gate) { g.exempt = slugs }
}

func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithObserver registers a callback invoked once per gated request. Slugs
// without a registered module are reported as UnknownModule.
func WithObserver(fn func(slug string, d Decision)) GateOption {
	return func(g *Gate) { g.observe = fn }
}

// NewGate creates a Gate reading module state from store and caching it in c.
func NewGate(store Store, c cache.Store, opts ...GateOption) *Gate {
	g := &Gate{
		store:   store,
		cache:   c,
		ttl:     DefaultCacheTTL,
		prefix:  DefaultPathPrefix,
		exempt:  DefaultExempt,
		logger:  logger.Discard(),
		observe: func(string, Decision) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CacheKey is the cache key holding the activation of slug for tenantID.
// uuid.Nil selects the global entry.
func CacheKey(tenantID uuid.UUID, slug string) string {
	if tenantID == uuid.Nil {
		return "module_active_global_" + slug
	}
	return "module_active_" + tenantID.String() + "_" + slug
}

// ModuleFromPath returns the first path segment after prefix.
// "/api/v1/articles/posts/" yields "articles".
func ModuleFromPath(prefix, path string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimLeft(path[len(prefix):], "/")
	slug, _, _ := strings.Cut(rest, "/")
	if slug == "" {
		return "", false
	}
	return slug, true
}

// Middleware gates requests by the module named in their path.
// Requests outside the prefix and exempt modules pass through untouched.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug, ok := ModuleFromPath(g.prefix, r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if slices.Contains(g.exempt, slug) {
			g.observe(slug, DecisionExempt)
			next.ServeHTTP(w, r)
			return
		}

		d, registered := g.decide(r.Context(), slug)
		if registered {
			g.observe(slug, d)
		} else {
			g.observe(UnknownModule, d)
		}
		if d == DecisionDenied {
			apierror.Write(w, apierror.ModuleDisabled(slug))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Enabled reports whether slug is enabled for the tenant in scope of ctx.
// Lookup failures report true.
func (g *Gate) Enabled(ctx context.Context, slug string) bool {
	d, _ := g.decide(ctx, slug)
	return d != DecisionDenied
}

// Invalidate drops the cached activation of slug for tenantID (uuid.Nil for global).
func (g *Gate) Invalidate(ctx context.Context, tenantID uuid.UUID, slug string) error {
	return g.cache.Delete(ctx, CacheKey(tenantID, slug))
}

// decide also reports whether slug names a registered module. Failed
// lookups report false.
func (g *Gate) decide(ctx context.Context, slug string) (Decision, bool) {
	tenantID, _ := tenant.IDFromContext(ctx)
	key := CacheKey(tenantID, slug)

	cached, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		return g.failOpen(ctx, slug, err), false
	}
	if ok {
		switch cached {
		case cachedEnabled:
			return DecisionAllowed, true
		case cachedDisabled:
			return DecisionDenied, true
		case cachedUnregistered:
			return DecisionAllowed, false
		}
	}

	enabled, registered, err := g.load(ctx, tenantID, slug)
	if err != nil {
		return g.failOpen(ctx, slug, err), false
	}

	value := cachedDisabled
	switch {
	case !registered:
		value = cachedUnregistered
	case enabled:
		value = cachedEnabled
	}
	if err := g.cache.Set(ctx, key, value, g.ttl); err != nil {
		g.logger.WarnContext(ctx, "failed to cache module status", logger.Module(slug), logger.Error(err))
	}

	if enabled {
		return DecisionAllowed, registered
	}
	return DecisionDenied, registered
}

// load returns the effective activation of slug for tenantID and whether
// the module is registered. Unregistered modules are enabled.
func (g *Gate) load(ctx context.Context, tenantID uuid.UUID, slug string) (enabled, registered bool, err error) {
	m, err := g.store.BySlug(ctx, slug)
	if errors.Is(err, ErrModuleNotFound) {
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if m.System || tenantID == uuid.Nil {
		return m.Active, true, nil
	}

	o, err := g.store.Override(ctx, tenantID, m.ID)
	if errors.Is(err, ErrOverrideNotFound) {
		return m.Active, true, nil
	}
	if err != nil {
		return false, true, err
	}
	return Effective(m, o), true, nil
}

func (g *Gate) failOpen(ctx context.Context, slug string, err error) Decision {
	g.logger.WarnContext(ctx, "module status lookup failed, allowing request",
		logger.Module(slug), logger.Error(err))
	return DecisionFailOpen
}
