package notification

import (
	"context"
	"errors"
	"time"
)

const defaultQueryLimit = 50

var (
	ErrNotFound    = errors.New("notification not found")
	ErrUnknownType = errors.New("unknown notification type")
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		// QueryUnreadNotifications returns unread entries, newest first.
		QueryUnreadNotifications(ctx context.Context) ([]Notification, error)
		// QueryAllNotifications returns up to limit entries, newest first.
		QueryAllNotifications(ctx context.Context, limit int) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Notify inserts a new unread notification. Callers on registration and
// payment paths must treat a failure here as non-fatal: log it, do not re-throw.
func (svc *Service) Notify(ctx context.Context, typ, title, message, studentID string) (Notification, error) {
	var known bool
	for _, t := range AllTypes {
		if typ == t {
			known = true
			break
		}
	}
	if !known {
		return Notification{}, ErrUnknownType
	}

	notif := Notification{
		Type:      typ,
		Title:     title,
		Message:   message,
		StudentID: studentID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, notif)
}

func (svc *Service) QueryUnread(ctx context.Context) ([]Notification, error) {
	return svc.repo.QueryUnreadNotifications(ctx)
}

func (svc *Service) QueryAll(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	return svc.repo.QueryAllNotifications(ctx, limit)
}

func (svc *Service) MarkRead(ctx context.Context, id string) error {
	return svc.repo.MarkNotificationRead(ctx, id)
}
