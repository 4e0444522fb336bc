package worker

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/bengche/payvault-push/internal/client"
	"github.com/bengche/payvault-push/pkg/vapid"
)

// endpointBase prefixes the endpoints minted for locally issued
// subscriptions, mirroring the URL shape of a browser push service.
const endpointBase = "https://push.payvault.dev/send"

// Platform implements the page-facing runtime surface for a headless
// agent process: registering the worker starts the delivery transport,
// permission is granted by the operator running the agent, and
// subscriptions are minted locally. Registration and the subscription are
// process-global; repeat calls get the existing resource.
type Platform struct {
	agent  *Agent
	wsURL  string
	header http.Header

	mu      sync.Mutex
	started bool
	sub     *client.PushSubscription
}

// NewPlatform creates a platform runtime delivering through wsURL.
func NewPlatform(agent *Agent, wsURL string, header http.Header) *Platform {
	return &Platform{agent: agent, wsURL: wsURL, header: header}
}

// RegisterWorker starts the delivery transport once. The worker's lifetime
// is decoupled from whichever caller registered it, so the transport runs
// on its own context.
func (p *Platform) RegisterWorker(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}

	transport := NewTransport(p.wsURL, p.header, p.agent)
	go func() {
		if err := transport.Run(context.Background()); err != nil {
			log.Printf("Worker transport stopped: %v", err)
		}
	}()

	p.started = true
	return nil
}

// RequestPermission always grants: running the agent is the operator's
// consent to show notifications.
func (p *Platform) RequestPermission(ctx context.Context) (client.Permission, error) {
	return client.PermissionGranted, nil
}

// Subscribe mints a subscription on first call and returns the same one
// afterwards.
func (p *Platform) Subscribe(ctx context.Context, opts client.SubscribeOptions) (*client.PushSubscription, error) {
	if !opts.UserVisibleOnly {
		return nil, errors.New("worker: silent pushes are not allowed")
	}
	if len(opts.ApplicationServerKey) == 0 {
		return nil, errors.New("worker: missing application server key")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sub != nil {
		return p.sub, nil
	}

	p256dh := make([]byte, 65)
	auth := make([]byte, 16)
	if _, err := rand.Read(p256dh); err != nil {
		return nil, fmt.Errorf("worker: generate subscription keys: %w", err)
	}
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("worker: generate subscription keys: %w", err)
	}

	p.sub = &client.PushSubscription{
		Endpoint: endpointBase + "/" + uuid.NewString(),
		Keys: client.SubscriptionKeys{
			P256DH: vapid.Encode(p256dh),
			Auth:   vapid.Encode(auth),
		},
	}
	return p.sub, nil
}
