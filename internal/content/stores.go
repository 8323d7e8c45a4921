package content

import (
	"errors"

	"github.com/dmitrymomot/publishkit/pkg/scoped"
)

// Stores groups the tenant-scoped stores of every content entity.
type Stores struct {
	Articles      scoped.Store[Article]
	Categories    scoped.Store[Category]
	Tags          scoped.Store[Tag]
	Comments      scoped.Store[Comment]
	Notifications scoped.Store[Notification]
	Likes         scoped.Store[Reaction]
	Favorites     scoped.Store[Reaction]
	Views         scoped.Store[ArticleView]
}

// NewSQLStores returns stores backed by db.
func NewSQLStores(db scoped.DB) (*Stores, error) {
	var errs []error
	s := &Stores{
		Articles:      repo(db, ArticleTable, &errs),
		Categories:    repo(db, CategoryTable, &errs),
		Tags:          repo(db, TagTable, &errs),
		Comments:      repo(db, CommentTable, &errs),
		Notifications: repo(db, NotificationTable, &errs),
		Likes:         repo(db, LikeTable, &errs),
		Favorites:     repo(db, FavoriteTable, &errs),
		Views:         repo(db, ViewTable, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemoryStores returns in-memory stores with the same scoping rules.
func NewMemoryStores() *Stores {
	return &Stores{
		Articles:      memory(ArticleTable),
		Categories:    memory(CategoryTable),
		Tags:          memory(TagTable),
		Comments:      memory(CommentTable),
		Notifications: memory(NotificationTable),
		Likes:         memory(LikeTable),
		Favorites:     memory(FavoriteTable),
		Views:         memory(ViewTable),
	}
}

func repo[T any](db scoped.DB, t scoped.Table[T], errs *[]error) scoped.Store[T] {
	r, err := scoped.NewRepo(db, t)
	if err != nil {
		*errs = append(*errs, err)
		return nil
	}
	return r
}

// memory panics on an invalid table; the tables in this package are static.
func memory[T any](t scoped.Table[T]) scoped.Store[T] {
	m, err := scoped.NewMemoryTable(t)
	if err != nil {
		panic(err)
	}
	return m
}
