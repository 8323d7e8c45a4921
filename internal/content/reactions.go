package content

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/pg"
	"github.com/dmitrymomot/publishkit/pkg/scoped"
)

// ToggleLike likes a published article for v, or removes the like v
// already left. The article author is notified about new likes.
func (s *Service) ToggleLike(ctx context.Context, v Viewer, articleID uuid.UUID) (LikeState, error) {
	article, err := s.published(ctx, articleID)
	if err != nil {
		return LikeState{}, err
	}
	liked, created, err := s.toggle(ctx, s.stores.Likes, v.UserID, articleID)
	if err != nil {
		return LikeState{}, err
	}
	if created {
		s.notify(ctx, NotifyArticleLike(article, v.UserID))
	}
	count, err := s.count(ctx, s.stores.Likes, articleID)
	if err != nil {
		return LikeState{}, err
	}
	return LikeState{ArticleID: articleID, Liked: liked, Count: count}, nil
}

// ToggleFavorite adds a published article to the favorites of v, or
// removes it when it is already there.
func (s *Service) ToggleFavorite(ctx context.Context, v Viewer, articleID uuid.UUID) (FavoriteState, error) {
	if _, err := s.published(ctx, articleID); err != nil {
		return FavoriteState{}, err
	}
	favorited, _, err := s.toggle(ctx, s.stores.Favorites, v.UserID, articleID)
	if err != nil {
		return FavoriteState{}, err
	}
	count, err := s.count(ctx, s.stores.Favorites, articleID)
	if err != nil {
		return FavoriteState{}, err
	}
	return FavoriteState{ArticleID: articleID, Favorited: favorited, Count: count}, nil
}

// IsFavorite reports whether userID has favorited articleID.
func (s *Service) IsFavorite(ctx context.Context, userID, articleID uuid.UUID) (bool, error) {
	rows, err := s.stores.Favorites.Query(ctx, scoped.Eq("article_id", articleID), scoped.Eq("user_id", userID))
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Favorites lists the published articles userID has favorited.
func (s *Service) Favorites(ctx context.Context, userID uuid.UUID) ([]Article, error) {
	favs, err := s.stores.Favorites.Query(ctx, scoped.Eq("user_id", userID))
	if err != nil {
		return nil, err
	}
	out := make([]Article, 0, len(favs))
	for _, f := range favs {
		a, err := s.published(ctx, f.ArticleID)
		if errors.Is(err, ErrArticleNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// toggle removes the reaction of userID to articleID or creates one.
// A concurrent insert of the same reaction counts as present.
func (s *Service) toggle(ctx context.Context, store scoped.Store[Reaction], userID, articleID uuid.UUID) (present, created bool, err error) {
	existing, err := store.Query(ctx, scoped.Eq("article_id", articleID), scoped.Eq("user_id", userID))
	if err != nil {
		return false, false, err
	}
	if len(existing) > 0 {
		for _, r := range existing {
			if err := store.Delete(ctx, r.ID); err != nil && !errors.Is(err, scoped.ErrNotFound) {
				return false, false, err
			}
		}
		return false, false, nil
	}

	err = store.Insert(ctx, Reaction{
		ID:        uuid.New(),
		TenantID:  scoped.TenantRef(ctx),
		ArticleID: articleID,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	})
	switch {
	case pg.IsDuplicateKeyError(err):
		return true, false, nil
	case err != nil:
		return false, false, err
	}
	return true, true, nil
}

func (s *Service) count(ctx context.Context, store scoped.Store[Reaction], articleID uuid.UUID) (int, error) {
	rows, err := store.Query(ctx, scoped.Eq("article_id", articleID))
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
