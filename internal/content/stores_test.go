package content_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/publishkit/internal/content"
	"github.com/dmitrymomot/publishkit/pkg/scoped"
)

// isolationCase inserts one row for each of two tenants plus an untagged row
// and reports the ids visible in a context.
type isolationCase struct {
	name   string
	insert func(ctx context.Context, s *content.Stores, tenantID *uuid.UUID) error
	query  func(ctx context.Context, s *content.Stores) (int, error)
}

func ref(id uuid.UUID) *uuid.UUID { return &id }

func TestStores_IsolationForEveryEntity(t *testing.T) {
	t.Parallel()

	cases := []isolationCase{
		{
			name: "articles",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Articles.Insert(ctx, content.Article{ID: uuid.New(), TenantID: tid, Title: "t"})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Articles.Query(ctx)
				return len(rows), err
			},
		},
		{
			name: "categories",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Categories.Insert(ctx, content.Category{ID: uuid.New(), TenantID: tid})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Categories.Query(ctx)
				return len(rows), err
			},
		},
		{
			name: "tags",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Tags.Insert(ctx, content.Tag{ID: uuid.New(), TenantID: tid})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Tags.Query(ctx)
				return len(rows), err
			},
		},
		{
			name: "comments",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Comments.Insert(ctx, content.Comment{ID: uuid.New(), TenantID: tid})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Comments.Query(ctx)
				return len(rows), err
			},
		},
		{
			name: "notifications",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Notifications.Insert(ctx, content.Notification{ID: uuid.New(), TenantID: tid})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Notifications.Query(ctx)
				return len(rows), err
			},
		},
		{
			name: "likes",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Likes.Insert(ctx, content.Reaction{ID: uuid.New(), TenantID: tid})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Likes.Query(ctx)
				return len(rows), err
			},
		},
		{
			name: "favorites",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Favorites.Insert(ctx, content.Reaction{ID: uuid.New(), TenantID: tid})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Favorites.Query(ctx)
				return len(rows), err
			},
		},
		{
			name: "views",
			insert: func(ctx context.Context, s *content.Stores, tid *uuid.UUID) error {
				return s.Views.Insert(ctx, content.ArticleView{ID: uuid.New(), TenantID: tid})
			},
			query: func(ctx context.Context, s *content.Stores) (int, error) {
				rows, err := s.Views.Query(ctx)
				return len(rows), err
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stores := content.NewMemoryStores()
			a, b := uuid.New(), uuid.New()
			bg := context.Background()
			require.NoError(t, tc.insert(bg, stores, ref(a)))
			require.NoError(t, tc.insert(bg, stores, ref(a)))
			require.NoError(t, tc.insert(bg, stores, ref(b)))
			require.NoError(t, tc.insert(bg, stores, nil))

			n, err := tc.query(inTenant(t, a), stores)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			n, err = tc.query(inTenant(t, b), stores)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			n, err = tc.query(bg, stores)
			require.NoError(t, err)
			assert.Equal(t, 4, n)
		})
	}
}

func TestNewSQLStores_ArticleQueryShape(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stores, err := content.NewSQLStores(db)
	require.NoError(t, err)

	a := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, tenant_id, author_id, category_id, title, slug, summary, body, status, published_at, created_at, updated_at " +
			"FROM articles WHERE tenant_id = $1 AND status = $2 ORDER BY created_at DESC, id")).
		WithArgs(a, "published").
		WillReturnRows(sqlmock.NewRows(content.ArticleTable.Columns))

	svc := content.NewService(stores)
	list, err := svc.PublishedArticles(inTenant(t, a))
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())

	var _ scoped.Store[content.Article] = stores.Articles
}

func TestNewSQLStores_MarkReadIsScoped(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stores, err := content.NewSQLStores(db)
	require.NoError(t, err)

	a, user, id := uuid.New(), uuid.New(), uuid.New()
	created := fixedNow()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, tenant_id, user_id, kind, title, message, link, is_read, created_at " +
			"FROM notifications WHERE tenant_id = $1 AND id = $2 ORDER BY created_at DESC, id")).
		WithArgs(a, id).
		WillReturnRows(sqlmock.NewRows(content.NotificationTable.Columns).
			AddRow(id.String(), a.String(), user.String(), "ARTICLE_LIKE", "liked", "", "", false, created))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE notifications SET user_id = $1, kind = $2, title = $3, message = $4, link = $5, is_read = $6, created_at = $7 " +
			"WHERE tenant_id = $8 AND id = $9 AND tenant_id = $10")).
		WithArgs(user, "ARTICLE_LIKE", "liked", "", "", true, created, a, id, a).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := content.NewService(stores).MarkRead(inTenant(t, a), user, id)
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}
