package notification

import (
	"context"
	"errors"
	"log"

	"github.com/bengche/payvault-push/internal/dispatcher"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Publisher hands a stored notification to the delivery channel so
// background workers receive it even when no page is open.
type Publisher interface {
	Publish(ctx context.Context, userID int64, env dispatcher.Envelope) error
}

// Service handles notification business logic
type Service struct {
	repo      *Repository
	publisher Publisher
}

// NewService creates a new notification service
func NewService(repo *Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Feed returns the in-page notification list together with the unread count.
func (s *Service) Feed(ctx context.Context, userID int64) (*Feed, error) {
	notifications, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if notifications == nil {
		notifications = []*Notification{}
	}
	return &Feed{Notifications: notifications, UnreadCount: count}, nil
}

// MarkRead marks a notification as read after checking ownership
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.UserID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks all notifications as read for a user
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Push stores a notification and hands it to the delivery channel. The
// store is the source of truth for the in-page feed; delivery is
// best-effort on top of it.
func (s *Service) Push(ctx context.Context, userID int64, typ, title, body string, data map[string]string) (*Notification, error) {
	notification, err := s.repo.Create(ctx, userID, typ, title, body, data)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, userID, dispatcher.Envelope{
		Title: title,
		Body:  body,
		Type:  typ,
	}); err != nil {
		// The notification is persisted; the next poll surfaces it even
		// when live delivery failed.
		log.Printf("Failed to publish notification %d: %v", notification.ID, err)
	}

	return notification, nil
}
