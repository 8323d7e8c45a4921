// Package api is the HTTP surface of the publishing backend.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/internal/content"
	"github.com/dmitrymomot/publishkit/internal/metrics"
	"github.com/dmitrymomot/publishkit/pkg/apierror"
	"github.com/dmitrymomot/publishkit/pkg/httpserver"
	"github.com/dmitrymomot/publishkit/pkg/logger"
	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

const readyTimeout = 2 * time.Second

// BrandingStore is the part of tenant.Registry used by the branding endpoints.
type BrandingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	UpdateBranding(ctx context.Context, id uuid.UUID, b tenant.Branding) error
}

// Deps are the collaborators of the router.
type Deps struct {
	Log         *slog.Logger
	Resolver    tenant.HostResolver
	Memberships tenant.MembershipStore
	Tenants     BrandingStore
	Modules     module.Registry
	Gate        *module.Gate
	Content     *content.Service
	Checks      map[string]httpserver.Check

	AllowedOrigins []string
	// TrustAuthHeaders accepts the caller identity from X-User-ID and
	// X-User-Superuser, set by an authenticating proxy in front of the API.
	TrustAuthHeaders bool
}

// NewRouter builds the chi router.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	h := &handlers{log: d.Log, tenants: d.Tenants, modules: d.Modules, content: d.Content}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)
	r.Use(recoverer(d.Log))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", httpserver.Liveness())
	r.Get("/ready", httpserver.Readiness(d.Log, readyTimeout, d.Checks))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if d.TrustAuthHeaders {
			r.Use(principalFromHeaders)
		}
		r.Use(tenant.Middleware(d.Resolver, d.Memberships, tenant.WithLogger(d.Log)))
		if d.Gate != nil {
			r.Use(d.Gate.Middleware)
		}

		r.Route("/entities/config", func(r chi.Router) {
			r.Use(tenant.RequireTenant(nil))
			r.Get("/", h.getBranding)
			r.With(tenant.RequireRole(tenant.RoleOwner, nil)).Patch("/", h.updateBranding)
		})

		r.Get("/modules/", h.listModules)

		r.Route("/articles", func(r chi.Router) {
			r.Get("/posts/", h.listArticles)
			r.With(tenant.RequireRole(tenant.RoleEditor, nil)).Post("/posts/", h.createArticle)
			r.Get("/posts/{id}/", h.getArticle)
			r.With(tenant.RequireRole(tenant.RoleMember, nil)).Post("/posts/{id}/comments/", h.addComment)
			r.With(tenant.RequireRole(tenant.RoleEditor, nil)).Post("/posts/{id}/publish/", h.publishArticle)
			r.With(tenant.RequireRole(tenant.RoleMember, nil)).Post("/posts/{id}/like/", h.toggleLike)
			r.With(tenant.RequireRole(tenant.RoleMember, nil)).Post("/posts/{id}/favorite/", h.toggleFavorite)
			r.Get("/posts/{id}/favorite/", h.checkFavorite)
			r.Get("/favorites/", h.listFavorites)
			r.Get("/categories/", h.listCategories)
			r.Get("/tags/", h.listTags)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Get("/unread-count/", h.unreadCount)
			r.Post("/read-all/", h.markAllRead)
			r.Post("/{id}/read/", h.markRead)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { apierror.Write(w, apierror.ErrNotFound) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierror.Write(w, apierror.New(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed."))
	})
	return r
}

// recoverer turns panics into a logged 500 with the API error body.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.ErrorContext(r.Context(), "panic while handling request",
						slog.Any("panic", rec), slog.String("path", r.URL.Path))
					apierror.Write(w, apierror.ErrInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
