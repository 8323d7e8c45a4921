package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/logger"
	"github.com/dmitrymomot/publishkit/pkg/scoped"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

// Service implements the content use cases on top of tenant-scoped stores.
// Reads go through the default scope of the caller's context; new rows are
// tagged with the tenant in scope.
type Service struct {
	stores   *Stores
	audience Audience
	log      *slog.Logger
	now      func() time.Time
}

// Audience lists the users of a tenant that hear about new articles.
type Audience interface {
	Members(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// maxPublishRecipients caps the notifications fanned out per published article.
const maxPublishRecipients = 100

type ServiceOption func(*Service)

func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAudience enables article published notifications.
func WithAudience(a Audience) ServiceOption {
	return func(s *Service) {
		s.audience = a
	}
}

func NewService(stores *Stores, opts ...ServiceOption) *Service {
	s := &Service{stores: stores, log: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PublishedArticles lists published articles visible in the caller's scope.
func (s *Service) PublishedArticles(ctx context.Context) ([]Article, error) {
	return s.stores.Articles.Query(ctx, scoped.Eq("status", string(StatusPublished)))
}

// Categories lists the categories visible in the caller's scope.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.stores.Categories.Query(ctx)
}

// Tags lists the tags visible in the caller's scope.
func (s *Service) Tags(ctx context.Context) ([]Tag, error) {
	return s.stores.Tags.Query(ctx)
}

// Article returns an article in the caller's scope that v may see.
// Hidden drafts are reported as missing.
func (s *Service) Article(ctx context.Context, v Viewer, id uuid.UUID) (Article, error) {
	a, err := s.stores.Articles.Get(ctx, id)
	if errors.Is(err, scoped.ErrNotFound) {
		return Article{}, ErrArticleNotFound
	}
	if err != nil {
		return Article{}, err
	}
	if !v.CanSee(a) {
		return Article{}, ErrArticleNotFound
	}
	return a, nil
}

// published returns a published article in the caller's scope.
func (s *Service) published(ctx context.Context, id uuid.UUID) (Article, error) {
	return s.Article(ctx, Viewer{}, id)
}

type CreateArticleParams struct {
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Body       string     `json:"body"`
	CategoryID *uuid.UUID `json:"category_id"`
	Publish    bool       `json:"publish"`
}

// Validate returns field errors keyed by JSON name, or nil.
func (p CreateArticleParams) Validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "This field is required."
	} else if len(p.Title) > 200 {
		fields["title"] = "Ensure this field has no more than 200 characters."
	}
	if strings.TrimSpace(p.Body) == "" {
		fields["body"] = "This field is required."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// CreateArticle stores a new article by authorID tagged with the tenant in
// scope. A category must be visible in the same scope.
func (s *Service) CreateArticle(ctx context.Context, authorID uuid.UUID, p CreateArticleParams) (Article, error) {
	if fields := p.Validate(); fields != nil {
		return Article{}, fmt.Errorf("%w: %v", ErrInvalidArticle, fields)
	}
	if p.CategoryID != nil {
		if _, err := s.stores.Categories.Get(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, scoped.ErrNotFound) {
				return Article{}, fmt.Errorf("%w: unknown category", ErrInvalidArticle)
			}
			return Article{}, err
		}
	}

	now := s.now().UTC()
	a := Article{
		ID:         uuid.New(),
		TenantID:   scoped.TenantRef(ctx),
		AuthorID:   authorID,
		CategoryID: p.CategoryID,
		Title:      strings.TrimSpace(p.Title),
		Slug:       Slugify(p.Title),
		Summary:    p.Summary,
		Body:       p.Body,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if p.Publish {
		a.Status = StatusPublished
		a.PublishedAt = &now
	}
	if err := s.stores.Articles.Insert(ctx, a); err != nil {
		return Article{}, err
	}
	if a.Status == StatusPublished {
		s.notifyPublished(ctx, a)
	}
	return a, nil
}

// PublishArticle publishes a draft v can see and announces it to the
// tenant's members. Publishing a published article is a no-op.
func (s *Service) PublishArticle(ctx context.Context, v Viewer, id uuid.UUID) (Article, error) {
	a, err := s.Article(ctx, v, id)
	if err != nil {
		return Article{}, err
	}
	if a.Status == StatusPublished {
		return a, nil
	}

	now := s.now().UTC()
	a.Status = StatusPublished
	a.PublishedAt = &now
	a.UpdatedAt = now
	if err := s.stores.Articles.Update(ctx, a); err != nil {
		if errors.Is(err, scoped.ErrNotFound) {
			return Article{}, ErrArticleNotFound
		}
		return Article{}, err
	}
	s.notifyPublished(ctx, a)
	return a, nil
}

// AddComment stores a comment by v on an article v can see and notifies the
// article author, or the parent comment's author for replies.
func (s *Service) AddComment(ctx context.Context, v Viewer, articleID uuid.UUID, body string, parentID *uuid.UUID) (Comment, error) {
	if strings.TrimSpace(body) == "" {
		return Comment{}, fmt.Errorf("%w: body is required", ErrInvalidComment)
	}
	article, err := s.Article(ctx, v, articleID)
	if err != nil {
		return Comment{}, err
	}

	var parent *Comment
	if parentID != nil {
		p, err := s.stores.Comments.Get(ctx, *parentID)
		if err != nil {
			if errors.Is(err, scoped.ErrNotFound) {
				return Comment{}, ErrCommentNotFound
			}
			return Comment{}, err
		}
		if p.ArticleID != articleID {
			return Comment{}, fmt.Errorf("%w: parent belongs to another article", ErrInvalidComment)
		}
		parent = &p
	}

	c := Comment{
		ID:        uuid.New(),
		TenantID:  scoped.TenantRef(ctx),
		ArticleID: articleID,
		AuthorID:  v.UserID,
		ParentID:  parentID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.stores.Comments.Insert(ctx, c); err != nil {
		return Comment{}, err
	}

	if parent != nil {
		s.notify(ctx, NotifyCommentReply(article, *parent, c))
	} else {
		s.notify(ctx, NotifyArticleComment(article, c))
	}
	return c, nil
}

// RecordView stores a view by v of an article v can see.
func (s *Service) RecordView(ctx context.Context, v Viewer, articleID uuid.UUID, ip string) error {
	if _, err := s.Article(ctx, v, articleID); err != nil {
		return err
	}
	return s.stores.Views.Insert(ctx, ArticleView{
		ID:        uuid.New(),
		TenantID:  scoped.TenantRef(ctx),
		ArticleID: articleID,
		UserID:    v.userRef(),
		IPAddress: ip,
		ViewedAt:  s.now().UTC(),
	})
}

// notifyPublished announces a to the members of the tenant in scope.
func (s *Service) notifyPublished(ctx context.Context, a Article) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if s.audience == nil || !ok {
		return
	}
	members, err := s.audience.Members(ctx, tenantID)
	if err != nil {
		s.log.WarnContext(ctx, "article audience not loaded", logger.TenantID(tenantID), logger.Error(err))
		return
	}
	sent := 0
	for _, userID := range members {
		if sent == maxPublishRecipients {
			break
		}
		if n := NotifyArticlePublished(a, userID); n != nil {
			s.notify(ctx, n)
			sent++
		}
	}
}

// notify delivers a notification built by one of the Notify* helpers.
// Delivery failures are logged and do not fail the triggering action.
func (s *Service) notify(ctx context.Context, n *Notification) {
	if n == nil {
		return
	}
	n.ID = uuid.New()
	n.TenantID = scoped.TenantRef(ctx)
	n.CreatedAt = s.now().UTC()
	if err := s.stores.Notifications.Insert(ctx, *n); err != nil {
		s.log.WarnContext(ctx, "notification not stored",
			slog.String("kind", string(n.Kind)), logger.UserID(n.UserID), logger.Error(err))
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its ASCII letters and digits with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
