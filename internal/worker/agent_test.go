package worker

import (
	"context"
	"encoding/json"
	"testing"
)

// memNotifier records every rendered notification.
type memNotifier struct {
	shown  []Notification
	closed []string
}

func (n *memNotifier) Show(ctx context.Context, notification Notification) error {
	n.shown = append(n.shown, notification)
	return nil
}

func (n *memNotifier) Close(ctx context.Context, tag string) error {
	n.closed = append(n.closed, tag)
	return nil
}

// memClient is one fake open page.
type memClient struct {
	focused     bool
	navigatedTo string
	canNavigate bool
}

func (c *memClient) Focus(ctx context.Context) error {
	c.focused = true
	return nil
}

func (c *memClient) Navigate(ctx context.Context, url string) error {
	if !c.canNavigate {
		return ErrNavigateUnsupported
	}
	c.navigatedTo = url
	return nil
}

// memClients exposes a fixed set of open pages and records window opens.
type memClients struct {
	open   []Client
	opened []string
}

func (c *memClients) List(ctx context.Context) ([]Client, error) {
	return c.open, nil
}

func (c *memClients) OpenWindow(ctx context.Context, url string) error {
	c.opened = append(c.opened, url)
	return nil
}

func push(t *testing.T, env Envelope) []byte {
	t.Helper()
	payload, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

func TestHandlePushRendersEnvelope(t *testing.T) {
	notifier := &memNotifier{}
	agent := NewAgent(notifier, &memClients{})

	agent.HandlePush(context.Background(), push(t, Envelope{
		Title: "Invoice paid",
		Body:  "Invoice #12 was paid",
		Type:  "invoice_paid",
	}))

	if len(notifier.shown) != 1 {
		t.Fatalf("shown = %d, want 1", len(notifier.shown))
	}
	n := notifier.shown[0]
	if n.Title != "Invoice paid" || n.Body != "Invoice #12 was paid" {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.Tag != "invoice_paid" {
		t.Errorf("tag = %q, want the envelope type", n.Tag)
	}
	if !n.Renotify {
		t.Error("renotify must be set so tag replacement still alerts")
	}
	if n.Data["url"] != "/purchases" {
		t.Errorf("url = %q, want /purchases", n.Data["url"])
	}
	if n.Icon == "" || n.Badge == "" {
		t.Error("icon and badge paths must be set")
	}
	if len(n.Vibrate) == 0 {
		t.Error("vibration pattern must be set")
	}
}

func TestHandlePushMalformedPayloadStillNotifies(t *testing.T) {
	notifier := &memNotifier{}
	agent := NewAgent(notifier, &memClients{})

	agent.HandlePush(context.Background(), []byte("oops"))

	if len(notifier.shown) != 1 {
		t.Fatalf("shown = %d, want exactly 1", len(notifier.shown))
	}
	n := notifier.shown[0]
	if n.Title == "" || n.Body == "" {
		t.Errorf("fallback notification must have title and body, got %+v", n)
	}
	if n.Title != AppName {
		t.Errorf("fallback title = %q, want %q", n.Title, AppName)
	}
	if n.Tag != "default" {
		t.Errorf("fallback tag = %q, want default", n.Tag)
	}
}

func TestHandlePushEmptyPayload(t *testing.T) {
	notifier := &memNotifier{}
	agent := NewAgent(notifier, &memClients{})

	agent.HandlePush(context.Background(), nil)

	if len(notifier.shown) != 1 {
		t.Fatalf("shown = %d, want 1", len(notifier.shown))
	}
	if notifier.shown[0].Body == "" {
		t.Error("fallback body must not be empty")
	}
}

func TestHandlePushSameTypeSharesTag(t *testing.T) {
	notifier := &memNotifier{}
	agent := NewAgent(notifier, &memClients{})
	ctx := context.Background()

	agent.HandlePush(ctx, push(t, Envelope{Title: "a", Body: "1", Type: "new_message"}))
	agent.HandlePush(ctx, push(t, Envelope{Title: "b", Body: "2", Type: "new_message"}))

	if len(notifier.shown) != 2 {
		t.Fatalf("shown = %d, want 2", len(notifier.shown))
	}
	if notifier.shown[0].Tag != notifier.shown[1].Tag {
		t.Error("same-type envelopes must share a tag so the second replaces the first")
	}
	if !notifier.shown[1].Renotify {
		t.Error("replacement must re-alert")
	}
}

func TestHandlePushUnknownTypeFallsBackToDefaultRoute(t *testing.T) {
	notifier := &memNotifier{}
	clients := &memClients{}
	agent := NewAgent(notifier, clients)
	ctx := context.Background()

	agent.HandlePush(ctx, push(t, Envelope{Title: "x", Body: "y", Type: "unknown_xyz"}))

	n := notifier.shown[0]
	if n.Data["url"] != defaultRoute {
		t.Fatalf("url = %q, want %q", n.Data["url"], defaultRoute)
	}

	agent.HandleClick(ctx, n)
	if len(clients.opened) != 1 || clients.opened[0] != defaultRoute {
		t.Errorf("opened = %v, want [%s]", clients.opened, defaultRoute)
	}
}

func TestHandleClickClosesNotification(t *testing.T) {
	notifier := &memNotifier{}
	agent := NewAgent(notifier, &memClients{})

	agent.HandleClick(context.Background(), Notification{
		Tag:  "invoice_paid",
		Data: map[string]string{"url": "/purchases"},
	})

	if len(notifier.closed) != 1 || notifier.closed[0] != "invoice_paid" {
		t.Errorf("closed = %v, want [invoice_paid]", notifier.closed)
	}
}

func TestHandleClickFocusesAndNavigatesOpenClient(t *testing.T) {
	page := &memClient{canNavigate: true}
	clients := &memClients{open: []Client{page}}
	agent := NewAgent(&memNotifier{}, clients)

	agent.HandleClick(context.Background(), Notification{
		Tag:  "new_message",
		Data: map[string]string{"url": "/messages"},
	})

	if !page.focused {
		t.Error("open client was not focused")
	}
	if page.navigatedTo != "/messages" {
		t.Errorf("navigated to %q, want /messages", page.navigatedTo)
	}
	if len(clients.opened) != 0 {
		t.Errorf("opened a window despite navigating in place: %v", clients.opened)
	}
}

func TestHandleClickNavigationUnsupportedOpensWindow(t *testing.T) {
	page := &memClient{canNavigate: false}
	clients := &memClients{open: []Client{page}}
	agent := NewAgent(&memNotifier{}, clients)

	agent.HandleClick(context.Background(), Notification{
		Tag:  "new_message",
		Data: map[string]string{"url": "/messages"},
	})

	if !page.focused {
		t.Error("open client was not focused")
	}
	if len(clients.opened) != 1 || clients.opened[0] != "/messages" {
		t.Errorf("opened = %v, want [/messages]", clients.opened)
	}
}

func TestHandleClickNoClientsOpensWindow(t *testing.T) {
	clients := &memClients{}
	agent := NewAgent(&memNotifier{}, clients)

	agent.HandleClick(context.Background(), Notification{
		Tag:  "payout_sent",
		Data: map[string]string{"url": "/seller/payouts"},
	})

	if len(clients.opened) != 1 || clients.opened[0] != "/seller/payouts" {
		t.Errorf("opened = %v, want [/seller/payouts]", clients.opened)
	}
}

func TestHandleClickMissingDataUsesDefaultRoute(t *testing.T) {
	clients := &memClients{}
	agent := NewAgent(&memNotifier{}, clients)

	agent.HandleClick(context.Background(), Notification{Tag: "default"})

	if len(clients.opened) != 1 || clients.opened[0] != defaultRoute {
		t.Errorf("opened = %v, want [%s]", clients.opened, defaultRoute)
	}
}

func TestRouteTable(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"invoice_paid", "/purchases"},
		{"payout_sent", "/seller/payouts"},
		{"dispute_opened", "/disputes"},
		{"milestone_released", "/purchases"},
		{"new_message", "/messages"},
		{"unknown_xyz", defaultRoute},
		{"", defaultRoute},
	}

	for _, tt := range tests {
		if got := routeFor(tt.typ); got != tt.want {
			t.Errorf("routeFor(%q) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

type memLifecycle struct {
	skipped bool
	claimed bool
}

func (l *memLifecycle) SkipWaiting() { l.skipped = true }

func (l *memLifecycle) Claim(ctx context.Context) error {
	l.claimed = true
	return nil
}

func TestLifecycle(t *testing.T) {
	agent := NewAgent(&memNotifier{}, &memClients{})
	lc := &memLifecycle{}

	agent.Install(lc)
	if !lc.skipped {
		t.Error("install must skip the waiting phase")
	}

	agent.Activate(context.Background(), lc)
	if !lc.claimed {
		t.Error("activate must claim open clients")
	}
}
