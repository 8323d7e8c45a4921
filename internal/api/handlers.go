package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/internal/content"
	"github.com/dmitrymomot/publishkit/pkg/apierror"
	"github.com/dmitrymomot/publishkit/pkg/logger"
	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	log     *slog.Logger
	tenants BrandingStore
	modules module.Registry
	content *content.Service
}

// fail renders err, logging anything that is not an expected API error.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		h.log.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), logger.Error(err))
	}
	apierror.Write(w, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierror.ErrBadRequest.WithDetails(map[string]any{"body": err.Error()})
	}
	return nil
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apierror.ErrNotFound
	}
	return id, nil
}

func principal(r *http.Request) (tenant.Principal, error) {
	p, ok := tenant.PrincipalFromContext(r.Context())
	if !ok {
		return tenant.Principal{}, apierror.ErrNotAuthenticated
	}
	return p, nil
}

// viewer returns the content viewer of r, anonymous without a principal.
func viewer(r *http.Request) content.Viewer {
	p, _ := tenant.PrincipalFromContext(r.Context())
	return content.Viewer{UserID: p.UserID, Superuser: p.Superuser}
}

// brandingResponse is the public white-label configuration of a tenant.
type brandingResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Domain   *string         `json:"domain"`
	Branding tenant.Branding `json:"branding"`
	Features map[string]bool `json:"features"`
}

func (h *handlers) getBranding(w http.ResponseWriter, r *http.Request) {
	id, _ := tenant.IDFromContext(r.Context())
	t, err := h.tenants.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, tenantError(err))
		return
	}
	features := t.Features
	if features == nil {
		features = map[string]bool{}
	}
	respond(w, http.StatusOK, brandingResponse{
		ID: t.ID, Name: t.Name, Domain: t.Domain, Branding: t.Branding, Features: features,
	})
}

func (h *handlers) updateBranding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := tenant.IDFromContext(ctx)
	t, err := h.tenants.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, tenantError(err))
		return
	}

	// Fields absent from the body keep their current values.
	b := t.Branding
	if err := decode(w, r, &b); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := tenant.ValidateBranding(b); err != nil {
		h.fail(w, r, apierror.Validation(map[string]string{"branding": err.Error()}))
		return
	}
	if err := h.tenants.UpdateBranding(ctx, id, b); err != nil {
		h.fail(w, r, tenantError(err))
		return
	}
	respond(w, http.StatusOK, b)
}

func (h *handlers) listModules(w http.ResponseWriter, r *http.Request) {
	id, _ := tenant.IDFromContext(r.Context())
	statuses, err := module.Statuses(r.Context(), h.modules, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, statuses)
}

func (h *handlers) listArticles(w http.ResponseWriter, r *http.Request) {
	list, err := h.content.PublishedArticles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nonNil(list))
}

func (h *handlers) getArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := viewer(r)
	a, err := h.content.Article(r.Context(), v, id)
	if err != nil {
		h.fail(w, r, contentError(err))
		return
	}
	if err := h.content.RecordView(r.Context(), v, a.ID, r.RemoteAddr); err != nil {
		h.log.WarnContext(r.Context(), "article view not recorded", logger.Error(err))
	}
	respond(w, http.StatusOK, a)
}

func (h *handlers) createArticle(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var params content.CreateArticleParams
	if err := decode(w, r, &params); err != nil {
		h.fail(w, r, err)
		return
	}
	if fields := params.Validate(); fields != nil {
		h.fail(w, r, apierror.Validation(fields))
		return
	}
	a, err := h.content.CreateArticle(r.Context(), p.UserID, params)
	if err != nil {
		h.fail(w, r, contentError(err))
		return
	}
	respond(w, http.StatusCreated, a)
}

type commentRequest struct {
	Body     string     `json:"body"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func (h *handlers) publishArticle(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	a, err := h.content.PublishArticle(r.Context(), viewer(r), id)
	if err != nil {
		h.fail(w, r, contentError(err))
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *handlers) addComment(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		h.fail(w, r, err)
		return
	}
	articleID, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.content.AddComment(r.Context(), viewer(r), articleID, req.Body, req.ParentID)
	if err != nil {
		h.fail(w, r, contentError(err))
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *handlers) toggleLike(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		h.fail(w, r, err)
		return
	}
	articleID, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := h.content.ToggleLike(r.Context(), viewer(r), articleID)
	if err != nil {
		h.fail(w, r, contentError(err))
		return
	}
	respond(w, http.StatusOK, state)
}

func (h *handlers) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		h.fail(w, r, err)
		return
	}
	articleID, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := h.content.ToggleFavorite(r.Context(), viewer(r), articleID)
	if err != nil {
		h.fail(w, r, contentError(err))
		return
	}
	respond(w, http.StatusOK, state)
}

func (h *handlers) checkFavorite(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	articleID, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok, err := h.content.IsFavorite(r.Context(), p.UserID, articleID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"is_favorited": ok})
}

func (h *handlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.content.Favorites(r.Context(), p.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, newList(list))
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.content.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nonNil(list))
}

func (h *handlers) listTags(w http.ResponseWriter, r *http.Request) {
	list, err := h.content.Tags(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nonNil(list))
}

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.content.Notifications(r.Context(), p.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, nonNil(list))
}

func (h *handlers) unreadCount(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := h.content.UnreadCount(r.Context(), p.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"count": n})
}

func (h *handlers) markRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.content.MarkRead(r.Context(), p.UserID, id); err != nil {
		h.fail(w, r, contentError(err))
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "marked as read"})
}

func (h *handlers) markAllRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := h.content.MarkAllRead(r.Context(), p.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"status": "all marked as read", "count": n})
}

func tenantError(err error) error {
	if errors.Is(err, tenant.ErrTenantNotFound) {
		return apierror.ErrNotFound
	}
	return err
}

func contentError(err error) error {
	switch {
	case errors.Is(err, content.ErrArticleNotFound), errors.Is(err, content.ErrCommentNotFound),
		errors.Is(err, content.ErrNotificationNotFound):
		return apierror.ErrNotFound
	case errors.Is(err, content.ErrInvalidArticle), errors.Is(err, content.ErrInvalidComment):
		return apierror.Validation(map[string]string{"non_field_errors": err.Error()})
	default:
		return err
	}
}
