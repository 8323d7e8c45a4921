package content

import "errors"

var (
	ErrArticleNotFound      = errors.New("article not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidArticle       = errors.New("invalid article")
	ErrInvalidComment       = errors.New("invalid comment")
)
