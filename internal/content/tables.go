package content

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/scoped"
)

const tenantColumn = "tenant_id"

var ArticleTable = scoped.Table[Article]{
	Name: "articles",
	Columns: []string{"id", "tenant_id", "author_id", "category_id", "title", "slug",
		"summary", "body", "status", "published_at", "created_at", "updated_at"},
	TenantColumn: tenantColumn,
	OrderBy:      "created_at DESC, id",
	Scan: func(s scoped.Scanner) (Article, error) {
		var a Article
		err := s.Scan(&a.ID, &a.TenantID, &a.AuthorID, &a.CategoryID, &a.Title, &a.Slug,
			&a.Summary, &a.Body, &a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
		return a, err
	},
	Values: func(a Article) []any {
		return []any{a.ID, a.TenantID, a.AuthorID, a.CategoryID, a.Title, a.Slug,
			a.Summary, a.Body, string(a.Status), a.PublishedAt, a.CreatedAt, a.UpdatedAt}
	},
	ID:       func(a Article) uuid.UUID { return a.ID },
	TenantOf: func(a Article) *uuid.UUID { return a.TenantID },
}

var CategoryTable = scoped.Table[Category]{
	Name:         "categories",
	Columns:      []string{"id", "tenant_id", "name", "slug", "description", "created_at"},
	TenantColumn: tenantColumn,
	OrderBy:      "name, id",
	Scan: func(s scoped.Scanner) (Category, error) {
		var c Category
		err := s.Scan(&c.ID, &c.TenantID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
		return c, err
	},
	Values: func(c Category) []any {
		return []any{c.ID, c.TenantID, c.Name, c.Slug, c.Description, c.CreatedAt}
	},
	ID:       func(c Category) uuid.UUID { return c.ID },
	TenantOf: func(c Category) *uuid.UUID { return c.TenantID },
}

var TagTable = scoped.Table[Tag]{
	Name:         "tags",
	Columns:      []string{"id", "tenant_id", "name", "slug", "created_at"},
	TenantColumn: tenantColumn,
	OrderBy:      "name, id",
	Scan: func(s scoped.Scanner) (Tag, error) {
		var t Tag
		err := s.Scan(&t.ID, &t.TenantID, &t.Name, &t.Slug, &t.CreatedAt)
		return t, err
	},
	Values:   func(t Tag) []any { return []any{t.ID, t.TenantID, t.Name, t.Slug, t.CreatedAt} },
	ID:       func(t Tag) uuid.UUID { return t.ID },
	TenantOf: func(t Tag) *uuid.UUID { return t.TenantID },
}

var CommentTable = scoped.Table[Comment]{
	Name:         "comments",
	Columns:      []string{"id", "tenant_id", "article_id", "author_id", "parent_id", "body", "created_at"},
	TenantColumn: tenantColumn,
	OrderBy:      "created_at, id",
	Scan: func(s scoped.Scanner) (Comment, error) {
		var c Comment
		err := s.Scan(&c.ID, &c.TenantID, &c.ArticleID, &c.AuthorID, &c.ParentID, &c.Body, &c.CreatedAt)
		return c, err
	},
	Values: func(c Comment) []any {
		return []any{c.ID, c.TenantID, c.ArticleID, c.AuthorID, c.ParentID, c.Body, c.CreatedAt}
	},
	ID:       func(c Comment) uuid.UUID { return c.ID },
	TenantOf: func(c Comment) *uuid.UUID { return c.TenantID },
}

var NotificationTable = scoped.Table[Notification]{
	Name:         "notifications",
	Columns:      []string{"id", "tenant_id", "user_id", "kind", "title", "message", "link", "is_read", "created_at"},
	TenantColumn: tenantColumn,
	OrderBy:      "created_at DESC, id",
	Scan: func(s scoped.Scanner) (Notification, error) {
		var n Notification
		err := s.Scan(&n.ID, &n.TenantID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Link, &n.Read, &n.CreatedAt)
		return n, err
	},
	Values: func(n Notification) []any {
		return []any{n.ID, n.TenantID, n.UserID, string(n.Kind), n.Title, n.Message, n.Link, n.Read, n.CreatedAt}
	},
	ID:       func(n Notification) uuid.UUID { return n.ID },
	TenantOf: func(n Notification) *uuid.UUID { return n.TenantID },
}

func reactionTable(name string) scoped.Table[Reaction] {
	return scoped.Table[Reaction]{
		Name:         name,
		Columns:      []string{"id", "tenant_id", "article_id", "user_id", "created_at"},
		TenantColumn: tenantColumn,
		OrderBy:      "created_at, id",
		Scan: func(s scoped.Scanner) (Reaction, error) {
			var r Reaction
			err := s.Scan(&r.ID, &r.TenantID, &r.ArticleID, &r.UserID, &r.CreatedAt)
			return r, err
		},
		Values:   func(r Reaction) []any { return []any{r.ID, r.TenantID, r.ArticleID, r.UserID, r.CreatedAt} },
		ID:       func(r Reaction) uuid.UUID { return r.ID },
		TenantOf: func(r Reaction) *uuid.UUID { return r.TenantID },
	}
}

var (
	LikeTable     = reactionTable("article_likes")
	FavoriteTable = reactionTable("article_favorites")
)

var ViewTable = scoped.Table[ArticleView]{
	Name:         "article_views",
	Columns:      []string{"id", "tenant_id", "article_id", "user_id", "ip_address", "viewed_at"},
	TenantColumn: tenantColumn,
	OrderBy:      "viewed_at, id",
	Scan: func(s scoped.Scanner) (ArticleView, error) {
		var v ArticleView
		err := s.Scan(&v.ID, &v.TenantID, &v.ArticleID, &v.UserID, &v.IPAddress, &v.ViewedAt)
		return v, err
	},
	Values: func(v ArticleView) []any {
		return []any{v.ID, v.TenantID, v.ArticleID, v.UserID, v.IPAddress, v.ViewedAt}
	},
	ID:       func(v ArticleView) uuid.UUID { return v.ID },
	TenantOf: func(v ArticleView) *uuid.UUID { return v.TenantID },
}
