package worker

import (
	"context"
	"strings"
	"testing"

	"github.com/bengche/payvault-push/internal/client"
)

func TestPlatformSubscribeAcquireOrGet(t *testing.T) {
	p := NewPlatform(NewAgent(&memNotifier{}, &memClients{}), "ws://unused/notifications/ws", nil)
	ctx := context.Background()
	opts := client.SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: []byte("Hello"),
	}

	first, err := p.Subscribe(ctx, opts)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !strings.HasPrefix(first.Endpoint, endpointBase) {
		t.Errorf("endpoint = %q, want %q prefix", first.Endpoint, endpointBase)
	}
	if first.Keys.P256DH == "" || first.Keys.Auth == "" {
		t.Error("subscription keys must be set")
	}

	// The subscription is a shared resource: a second call returns the
	// existing one instead of minting a replacement.
	second, err := p.Subscribe(ctx, opts)
	if err != nil {
		t.Fatalf("second Subscribe: %v", err)
	}
	if second != first {
		t.Error("second Subscribe minted a new subscription")
	}
}

func TestPlatformSubscribeRequiresUserVisible(t *testing.T) {
	p := NewPlatform(NewAgent(&memNotifier{}, &memClients{}), "ws://unused", nil)

	_, err := p.Subscribe(context.Background(), client.SubscribeOptions{
		UserVisibleOnly:      false,
		ApplicationServerKey: []byte("Hello"),
	})
	if err == nil {
		t.Error("silent subscription was allowed")
	}

	_, err = p.Subscribe(context.Background(), client.SubscribeOptions{UserVisibleOnly: true})
	if err == nil {
		t.Error("subscription without a server key was allowed")
	}
}
