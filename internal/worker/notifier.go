package worker

import (
	"context"
	"errors"
)

// Notification carries everything the platform needs to render one native
// alert. Tag groups alerts: a new notification sharing a tag replaces the
// one on screen instead of stacking, and Renotify makes the replacement
// alert the user again.
type Notification struct {
	Title    string
	Body     string
	Icon     string
	Badge    string
	Tag      string
	Renotify bool
	Vibrate  []int
	Data     map[string]string
}

// Notifier renders native notifications. Show must not return until the
// notification is visible; the platform keeps the worker alive exactly
// that long.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
	Close(ctx context.Context, tag string) error
}

// ErrNavigateUnsupported is returned by clients on runtimes without
// programmatic in-place navigation.
var ErrNavigateUnsupported = errors.New("worker: client navigation not supported")

// Client is one open page at our origin.
type Client interface {
	Focus(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
}

// Clients enumerates open pages at our origin and opens new ones.
type Clients interface {
	List(ctx context.Context) ([]Client, error)
	OpenWindow(ctx context.Context, url string) error
}

// Lifecycle is the install surface of the platform runtime.
type Lifecycle interface {
	// SkipWaiting activates a freshly installed worker immediately
	// instead of waiting for old instances to wind down.
	SkipWaiting()

	// Claim takes control of pages that were open before this worker
	// activated, without requiring a reload.
	Claim(ctx context.Context) error
}
