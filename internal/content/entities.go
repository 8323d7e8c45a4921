package content

import (
	"time"

	"github.com/google/uuid"
)

type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

type Article struct {
	ID          uuid.UUID     `json:"id"`
	TenantID    *uuid.UUID    `json:"-"`
	AuthorID    uuid.UUID     `json:"author_id"`
	CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Summary     string        `json:"summary,omitempty"`
	Body        string        `json:"body"`
	Status      ArticleStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Viewer is the user a read is made for. The zero value is anonymous.
type Viewer struct {
	UserID    uuid.UUID
	Superuser bool
}

// CanSee reports whether v may read a. Drafts and archived articles are
// visible to their author and to superusers only.
func (v Viewer) CanSee(a Article) bool {
	if a.Status == StatusPublished || v.Superuser {
		return true
	}
	return v.UserID != uuid.Nil && a.AuthorID == v.UserID
}

func (v Viewer) userRef() *uuid.UUID {
	if v.UserID == uuid.Nil {
		return nil
	}
	id := v.UserID
	return &id
}

type Category struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    *uuid.UUID `json:"-"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Tag struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"-"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	CreatedAt time.Time  `json:"created_at"`
}

type Comment struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"-"`
	ArticleID uuid.UUID  `json:"article_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}

type NotificationKind string

const (
	KindArticleComment   NotificationKind = "ARTICLE_COMMENT"
	KindCommentReply     NotificationKind = "COMMENT_REPLY"
	KindArticleLike      NotificationKind = "ARTICLE_LIKE"
	KindArticlePublished NotificationKind = "ARTICLE_PUBLISHED"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	TenantID  *uuid.UUID       `json:"-"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Reaction is a like or a favourite of an article by a user.
type Reaction struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"-"`
	ArticleID uuid.UUID  `json:"article_id"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
}

type LikeState struct {
	ArticleID uuid.UUID `json:"article_id"`
	Liked     bool      `json:"liked"`
	Count     int       `json:"like_count"`
}

type FavoriteState struct {
	ArticleID uuid.UUID `json:"article_id"`
	Favorited bool      `json:"favorited"`
	Count     int       `json:"favorite_count"`
}

type ArticleView struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  *uuid.UUID `json:"-"`
	ArticleID uuid.UUID  `json:"article_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	IPAddress string     `json:"-"`
	ViewedAt  time.Time  `json:"viewed_at"`
}
