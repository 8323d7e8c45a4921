package content

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/scoped"
)

// notificationPageSize is the number of notifications a listing returns.
const notificationPageSize = 20

// Notifications lists the most recent notifications of userID visible in
// the caller's scope, newest first.
func (s *Service) Notifications(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	list, err := s.stores.Notifications.Query(ctx, scoped.Eq("user_id", userID))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b Notification) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if len(list) > notificationPageSize {
		list = list[:notificationPageSize]
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications of userID.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	list, err := s.stores.Notifications.Query(ctx, scoped.Eq("user_id", userID), scoped.Eq("is_read", false))
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// MarkRead marks a notification of userID as read. Notifications of other
// users or tenants are reported as missing.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (Notification, error) {
	n, err := s.stores.Notifications.Get(ctx, id)
	if errors.Is(err, scoped.ErrNotFound) || (err == nil && n.UserID != userID) {
		return Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return Notification{}, err
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	if err := s.stores.Notifications.Update(ctx, n); err != nil {
		if errors.Is(err, scoped.ErrNotFound) {
			return Notification{}, ErrNotificationNotFound
		}
		return Notification{}, err
	}
	return n, nil
}

// MarkAllRead marks every unread notification of userID as read and returns
// how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	unread, err := s.stores.Notifications.Query(ctx, scoped.Eq("user_id", userID), scoped.Eq("is_read", false))
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, n := range unread {
		n.Read = true
		err := s.stores.Notifications.Update(ctx, n)
		if errors.Is(err, scoped.ErrNotFound) {
			continue
		}
		if err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}
