package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/apierror"
	"github.com/dmitrymomot/publishkit/pkg/logger"
)

// HostResolver is the part of Resolver the middleware depends on.
type HostResolver interface {
	Resolve(ctx context.Context, host string) (uuid.UUID, error)
}

// ErrorHandler renders a failure that stops the request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	errorHandler ErrorHandler
	skipPaths    []string
	logger       *slog.Logger
	hostFunc     func(r *http.Request) string
}

// Option configures Middleware.
type Option func(*middlewareConfig)

// WithErrorHandler replaces the handler used when resolution fails.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths lists path prefixes served without tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *middlewareConfig) { c.skipPaths = append(c.skipPaths, paths...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHostFunc overrides how the host is read from the request.
// The default is r.Host.
func WithHostFunc(fn func(r *http.Request) string) Option {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.hostFunc = fn
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoTenantInContext):
		apierror.Write(w, apierror.ErrNotFound)
	case errors.Is(err, ErrInsufficientRole):
		apierror.Write(w, apierror.ErrPermissionDenied)
	default:
		apierror.Write(w, apierror.ErrInternalServerError)
	}
}

// Middleware resolves the tenant for every request from its host and installs
// it in a request-scoped slot for the duration of the downstream handler.
//
// A host with no tenant is not an error: the request proceeds unscoped.
// A resolution failure stops the request with a 500. The slot is restored on
// every exit path, including panics in next.
//
// When memberships is non-nil and the request carries a Principal, the
// caller's role is resolved too: superusers are OWNER, everyone else gets the
// role of their membership or none.
func Middleware(resolver HostResolver, memberships MembershipStore, opts ...Option) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		logger:       logger.Discard(),
		hostFunc:     func(r *http.Request) string { return r.Host },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := r.Context()
			host := cfg.hostFunc(r)

			id, err := resolver.Resolve(ctx, host)
			if err != nil && !errors.Is(err, ErrTenantNotFound) {
				cfg.logger.ErrorContext(ctx, "tenant resolution failed", logger.Host(host), logger.Error(err))
				cfg.errorHandler(w, r, err)
				return
			}

			ctx, token := Set(NewScope(ctx), id)
			defer Clear(token)

			if id != uuid.Nil && memberships != nil {
				if role, ok := resolveRole(ctx, memberships, id, cfg.logger); ok {
					SetRole(ctx, role)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveRole(ctx context.Context, memberships MembershipStore, tenantID uuid.UUID, log *slog.Logger) (Role, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return "", false
	}
	if p.Superuser {
		return RoleOwner, true
	}
	role, err := memberships.Role(ctx, p.UserID, tenantID)
	if err != nil {
		if !errors.Is(err, ErrMembershipNotFound) {
			log.WarnContext(ctx, "membership lookup failed", logger.UserID(p.UserID), logger.Error(err))
		}
		return "", false
	}
	log.DebugContext(ctx, "tenant role resolved", logger.UserID(p.UserID), logger.Role(string(role)))
	return role, true
}

// RequireTenant rejects requests that have no tenant in scope with a 404.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IDFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects requests whose caller lacks min in the current tenant
// with a 403.
func RequireRole(min Role, errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !role.AtLeast(min) {
				errorHandler(w, r, ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
