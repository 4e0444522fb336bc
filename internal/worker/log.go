package worker

import (
	"context"
	"log"
)

// LogNotifier renders notifications as log lines. It is the headless
// agent's display surface.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Show renders a notification to the log
func (n *LogNotifier) Show(ctx context.Context, notification Notification) error {
	log.Printf("[notification] %s: %s (tag=%s url=%s)",
		notification.Title, notification.Body, notification.Tag, notification.Data["url"])
	return nil
}

// Close is a no-op: log lines cannot be withdrawn
func (n *LogNotifier) Close(ctx context.Context, tag string) error {
	return nil
}

// LogClients is a Clients implementation with no open pages: every click
// destination is logged as a window open.
type LogClients struct{}

// NewLogClients creates a log-backed client list
func NewLogClients() *LogClients {
	return &LogClients{}
}

// List reports no open clients
func (c *LogClients) List(ctx context.Context) ([]Client, error) {
	return nil, nil
}

// OpenWindow logs the destination
func (c *LogClients) OpenWindow(ctx context.Context, url string) error {
	log.Printf("[notification] open %s", url)
	return nil
}
