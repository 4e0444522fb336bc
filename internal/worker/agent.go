package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
)

// AppName titles fallback notifications when a push payload cannot be read.
const AppName = "PayVault"

// Static notification assets, served from the origin root. A missing file
// degrades rendering to the platform default, never a failure.
const (
	iconPath  = "/icons/notification.png"
	badgePath = "/icons/badge.png"
)

// vibratePattern is the buzz played when a notification lands.
var vibratePattern = []int{200, 100, 200}

// Envelope is the push message wire format. Payloads are not guaranteed
// well-formed; see parseEnvelope.
type Envelope struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type"`
}

// Agent is the background delivery worker. It runs with a lifetime
// decoupled from any open page and must absorb every failure locally:
// no handler ever lets an error escape the worker boundary.
type Agent struct {
	notifier Notifier
	clients  Clients
}

// NewAgent creates an agent rendering through notifier and routing clicks
// through clients.
func NewAgent(notifier Notifier, clients Clients) *Agent {
	return &Agent{notifier: notifier, clients: clients}
}

// Install runs when a new worker version is installed.
func (a *Agent) Install(lc Lifecycle) {
	lc.SkipWaiting()
}

// Activate runs when the worker takes over from a previous version.
func (a *Agent) Activate(ctx context.Context, lc Lifecycle) {
	if err := lc.Claim(ctx); err != nil {
		log.Printf("Worker: claim clients: %v", err)
	}
}

// HandlePush renders exactly one notification for every delivered payload,
// readable or not. A payload that fails to parse still alerts the user
// through a generic fallback; a push is never dropped silently.
func (a *Agent) HandlePush(ctx context.Context, payload []byte) {
	env := parseEnvelope(payload)

	n := Notification{
		Title:    env.Title,
		Body:     env.Body,
		Icon:     iconPath,
		Badge:    badgePath,
		Tag:      env.Type,
		Renotify: true,
		Vibrate:  vibratePattern,
		Data:     map[string]string{"url": routeFor(env.Type)},
	}

	if err := a.notifier.Show(ctx, n); err != nil {
		log.Printf("Worker: show notification: %v", err)
	}
}

// HandleClick closes the clicked notification and routes the user to its
// destination, preferring an already-open page over a fresh window.
func (a *Agent) HandleClick(ctx context.Context, n Notification) {
	if err := a.notifier.Close(ctx, n.Tag); err != nil {
		log.Printf("Worker: close notification: %v", err)
	}

	url := n.Data["url"]
	if url == "" {
		url = defaultRoute
	}

	open, err := a.clients.List(ctx)
	if err != nil {
		log.Printf("Worker: list clients: %v", err)
	}

	if len(open) > 0 {
		c := open[0]
		if err := c.Focus(ctx); err != nil {
			log.Printf("Worker: focus client: %v", err)
		}

		err := c.Navigate(ctx, url)
		if err == nil {
			return
		}
		if !errors.Is(err, ErrNavigateUnsupported) {
			log.Printf("Worker: navigate client: %v", err)
			return
		}
		// No in-place navigation on this runtime; open a window instead.
	}

	if err := a.clients.OpenWindow(ctx, url); err != nil {
		log.Printf("Worker: open window: %v", err)
	}
}

// parseEnvelope never fails. Malformed payloads turn into a fallback
// envelope carrying the raw text, so the user still learns that something
// happened server-side.
func parseEnvelope(payload []byte) Envelope {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err == nil && env.Title != "" {
		if env.Type == "" {
			env.Type = "default"
		}
		return env
	}

	body := strings.TrimSpace(string(payload))
	if body == "" {
		body = "You have a new notification"
	}
	return Envelope{Title: AppName, Body: body, Type: "default"}
}
