package client

import "context"

// Permission is the user's decision on showing notifications.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// SubscriptionKeys mirrors the keys object of a push subscription.
type SubscriptionKeys struct {
	P256DH string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is the platform-issued credential that authorizes our
// server key to reach this installation through the push service.
type PushSubscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// SubscribeOptions scope a subscription request. UserVisibleOnly must be
// set: silent pushes are not allowed.
type SubscribeOptions struct {
	UserVisibleOnly      bool
	ApplicationServerKey []byte
}

// Runtime is the platform capability surface push setup needs. The worker
// registration and the subscription behind it are origin-global resources
// shared with every open page, so implementations must be idempotent:
// RegisterWorker tolerates an existing registration and Subscribe returns
// the existing subscription when one is already open (acquire-or-get,
// never assume sole ownership).
type Runtime interface {
	// RegisterWorker installs the background worker at the origin root so
	// its scope covers the whole site.
	RegisterWorker(ctx context.Context) error

	// RequestPermission prompts the user for notification permission.
	RequestPermission(ctx context.Context) (Permission, error)

	// Subscribe opens (or returns the existing) push subscription.
	Subscribe(ctx context.Context, opts SubscribeOptions) (*PushSubscription, error)
}
