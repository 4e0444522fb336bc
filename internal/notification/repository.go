package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// listLimit caps the in-page feed; older notifications age out of view.
const listLimit = 100

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification into the database
func (r *Repository) Create(ctx context.Context, userID int64, typ, title, body string, data map[string]string) (*Notification, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification data: %w", err)
	}

	query := `
		INSERT INTO notifications (user_id, type, title, body, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, type, title, body, data, is_read, created_at
	`

	notification, err := r.scanOne(r.db.QueryRowContext(ctx, query, userID, typ, title, body, payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

// GetByID retrieves a notification by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, data, is_read, created_at
		FROM notifications
		WHERE id = $1
	`

	notification, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return notification, nil
}

// ListByUserID retrieves the most recent notifications for a user
func (r *Repository) ListByUserID(ctx context.Context, userID int64) ([]*Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, data, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		notification := &Notification{}
		var payload []byte
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Type,
			&notification.Title,
			&notification.Body,
			&payload,
			&notification.IsRead,
			&notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if err := decodeData(payload, notification); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}

// UnreadCount returns the count of unread notifications for a user
func (r *Repository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a notification as read
func (r *Repository) MarkRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllRead marks all notifications as read for a user
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

func (r *Repository) scanOne(row *sql.Row) (*Notification, error) {
	notification := &Notification{}
	var payload []byte
	if err := row.Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Type,
		&notification.Title,
		&notification.Body,
		&payload,
		&notification.IsRead,
		&notification.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeData(payload, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// decodeData unpacks the opaque JSONB context column. The contents are
// passed through to clients unmodified.
func decodeData(payload []byte, n *Notification) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, &n.Data); err != nil {
		return fmt.Errorf("failed to decode notification data: %w", err)
	}
	return nil
}
