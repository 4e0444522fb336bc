package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrMissingEndpoint = errors.New("subscription endpoint is required")
	ErrNoPublicKey     = errors.New("no VAPID public key configured")
)

// Service handles push subscription business logic
type Service struct {
	repo      *Repository
	publicKey string
}

// NewService creates a new subscription service. publicKey is the VAPID
// public key handed out to clients; when empty, push setup is disabled and
// clients fall back to in-app polling only.
func NewService(repo *Repository, publicKey string) *Service {
	return &Service{repo: repo, publicKey: publicKey}
}

// PublicKey returns the VAPID public key clients subscribe with
func (s *Service) PublicKey() (string, error) {
	if s.publicKey == "" {
		return "", ErrNoPublicKey
	}
	return s.publicKey, nil
}

// Save stores an uploaded subscription for the given user
func (s *Service) Save(ctx context.Context, userID int64, payload *Payload) (*Subscription, error) {
	if payload.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	sub := &Subscription{
		ID:       uuid.NewString(),
		UserID:   userID,
		Endpoint: payload.Endpoint,
		P256DH:   payload.Keys.P256DH,
		Auth:     payload.Keys.Auth,
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Remove drops a subscription by endpoint
func (s *Service) Remove(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return ErrMissingEndpoint
	}
	return s.repo.DeleteByEndpoint(ctx, endpoint)
}
