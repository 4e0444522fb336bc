package client

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bengche/payvault-push/pkg/vapid"
)

// DefaultPollInterval is how often an open page refreshes its feed.
const DefaultPollInterval = 30 * time.Second

// Manager owns the page-side notification state: the polled feed, the
// unread badge count, and the one-time push channel setup. Poll failures
// and push failures are absorbed independently; neither ever blocks or
// breaks the other.
type Manager struct {
	api      *API
	runtime  Runtime
	interval time.Duration

	seq atomic.Uint64 // tags outgoing fetches, monotonic

	mu            sync.Mutex
	notifications []Notification
	unread        int
	applied       uint64 // seq of the last fetch whose result landed
	pushAttempted bool
	pushReady     bool
}

// NewManager creates a manager. runtime may be nil when the platform has no
// push support; the in-app feed works regardless.
func NewManager(api *API, runtime Runtime, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Manager{api: api, runtime: runtime, interval: interval}
}

// Run refreshes immediately and then polls on a fixed interval until ctx is
// cancelled. Cancelling is the unmount teardown: the ticker stops and no
// further fetches are issued.
func (m *Manager) Run(ctx context.Context) {
	m.Refresh(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}

// Refresh fetches the feed and replaces local state with server state. Any
// failure leaves the previous state untouched: transient errors resolve on
// a later poll, and a 401 already belongs to the session-expiry hook.
// Responses are applied in fetch order; a slow response that arrives after
// a newer one has landed is discarded.
func (m *Manager) Refresh(ctx context.Context) {
	seq := m.seq.Add(1)

	feed, err := m.api.Notifications(ctx)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq <= m.applied {
		return
	}
	m.applied = seq
	m.notifications = feed.Notifications
	m.unread = feed.UnreadCount
}

// MarkRead optimistically flips one notification to read and shrinks the
// unread count, then tells the server. A failed request is not rolled
// back; the next successful refresh converges on server truth.
func (m *Manager) MarkRead(ctx context.Context, id int64) {
	m.mu.Lock()
	for i := range m.notifications {
		if m.notifications[i].ID != id {
			continue
		}
		if !m.notifications[i].IsRead {
			m.notifications[i].IsRead = true
			if m.unread > 0 {
				m.unread--
			}
		}
		break
	}
	m.mu.Unlock()

	if err := m.api.MarkRead(ctx, id); err != nil {
		log.Printf("Failed to mark notification %d read: %v", id, err)
	}
}

// MarkAllRead optimistically flips the whole feed to read and zeroes the
// count, then tells the server. Same no-rollback contract as MarkRead.
func (m *Manager) MarkAllRead(ctx context.Context) {
	m.mu.Lock()
	for i := range m.notifications {
		m.notifications[i].IsRead = true
	}
	m.unread = 0
	m.mu.Unlock()

	if err := m.api.MarkAllRead(ctx); err != nil {
		log.Printf("Failed to mark all notifications read: %v", err)
	}
}

// SetupPush establishes the push channel: register the worker, ask for
// permission, fetch and decode the server key, subscribe, upload. Each step
// short-circuits on failure and nothing propagates upward; worst case push
// silently stays off while polling keeps the badge current. Runs at most
// once per manager, whatever the first attempt's outcome.
func (m *Manager) SetupPush(ctx context.Context) {
	if m.runtime == nil {
		return
	}

	m.mu.Lock()
	if m.pushAttempted {
		m.mu.Unlock()
		return
	}
	m.pushAttempted = true
	m.mu.Unlock()

	if err := m.runtime.RegisterWorker(ctx); err != nil {
		log.Printf("Push setup: register worker: %v", err)
		return
	}

	perm, err := m.runtime.RequestPermission(ctx)
	if err != nil {
		log.Printf("Push setup: request permission: %v", err)
		return
	}
	if perm != PermissionGranted {
		return
	}

	key, err := m.api.VAPIDPublicKey(ctx)
	if err != nil {
		return
	}

	rawKey, err := vapid.Decode(key)
	if err != nil {
		log.Printf("Push setup: bad server key: %v", err)
		return
	}

	sub, err := m.runtime.Subscribe(ctx, SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: rawKey,
	})
	if err != nil {
		log.Printf("Push setup: subscribe: %v", err)
		return
	}

	if err := m.api.SaveSubscription(ctx, sub); err != nil {
		log.Printf("Push setup: upload subscription: %v", err)
		return
	}

	m.mu.Lock()
	m.pushReady = true
	m.mu.Unlock()
}

// Notifications returns a copy of the current feed.
func (m *Manager) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

// UnreadCount returns the current unread badge value.
func (m *Manager) UnreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unread
}

// PushReady reports whether the full setup sequence completed.
func (m *Manager) PushReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushReady
}
