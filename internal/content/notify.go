package content

import (
	"fmt"

	"github.com/google/uuid"
)

// The Notify* helpers build the notification for an event, or return nil
// when nobody should be notified. The caller stores it under the current
// tenant.

func articleLink(a Article) string {
	return "/articles/" + a.Slug
}

func NotifyArticleComment(a Article, c Comment) *Notification {
	if a.AuthorID == c.AuthorID {
		return nil
	}
	return &Notification{
		UserID:  a.AuthorID,
		Kind:    KindArticleComment,
		Title:   "Your article has a new comment",
		Message: fmt.Sprintf("Someone commented on %q.", a.Title),
		Link:    fmt.Sprintf("%s#comment-%s", articleLink(a), c.ID),
	}
}

func NotifyCommentReply(a Article, parent, reply Comment) *Notification {
	if parent.AuthorID == reply.AuthorID {
		return nil
	}
	return &Notification{
		UserID:  parent.AuthorID,
		Kind:    KindCommentReply,
		Title:   "Your comment received a reply",
		Message: fmt.Sprintf("Someone replied to you on %q.", a.Title),
		Link:    fmt.Sprintf("%s#comment-%s", articleLink(a), reply.ID),
	}
}

func NotifyArticleLike(a Article, userID uuid.UUID) *Notification {
	if a.AuthorID == userID {
		return nil
	}
	return &Notification{
		UserID:  a.AuthorID,
		Kind:    KindArticleLike,
		Title:   "Your article was liked",
		Message: fmt.Sprintf("Someone liked %q.", a.Title),
		Link:    articleLink(a),
	}
}

func NotifyArticlePublished(a Article, recipient uuid.UUID) *Notification {
	if a.AuthorID == recipient {
		return nil
	}
	return &Notification{
		UserID:  recipient,
		Kind:    KindArticlePublished,
		Title:   "New article published",
		Message: fmt.Sprintf("%q has just been published.", a.Title),
		Link:    articleLink(a),
	}
}
