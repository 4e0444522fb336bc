package subscription

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles push subscription persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new subscription repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores a subscription, replacing any previous record for the same
// endpoint. Browsers re-run setup freely, so uploads must be idempotent.
func (r *Repository) Upsert(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
	`

	if _, err := r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.Endpoint, sub.P256DH, sub.Auth); err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

// DeleteByEndpoint removes a subscription the push service reports as gone
func (r *Repository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE endpoint = $1`
	if _, err := r.db.ExecContext(ctx, query, endpoint); err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
