package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/bengche/payvault-push/pkg/middleware"
)

// Common errors
var (
	ErrUnauthenticated = errors.New("client: session expired or missing")
	ErrMissingKey      = errors.New("client: server has no push key configured")
	ErrHookRegistered  = errors.New("client: session-expiry hook already registered")
)

// Notification is the server-owned notification record as the page sees it.
// Only IsRead is ever mutated locally.
type Notification struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}

// Feed is the notification list payload served by the backend.
type Feed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// API is the authenticated HTTP client for the notification backend. All
// requests carry the credentialed session cookie; a 401 on any of them
// fires the session-expiry hook exactly where the cross-cutting session
// handler expects it, and the calling operation declines to update state.
type API struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	onExpired func()
}

// NewAPI creates an API client against the given base URL.
func NewAPI(baseURL string) *API {
	jar, _ := cookiejar.New(nil)
	return &API{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}
}

// SetSession installs a session token as the credentialed cookie.
func (a *API) SetSession(token string) error {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return fmt.Errorf("client: parse base URL: %w", err)
	}
	a.http.Jar.SetCookies(u, []*http.Cookie{{
		Name:  middleware.SessionCookie,
		Value: token,
		Path:  "/",
	}})
	return nil
}

// OnSessionExpired registers the cross-cutting 401 handler. Exactly one
// registration per client: a second call returns ErrHookRegistered instead
// of silently stacking handlers.
func (a *API) OnSessionExpired(fn func()) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.onExpired != nil {
		return ErrHookRegistered
	}
	a.onExpired = fn
	return nil
}

// ClearSessionExpired tears the 401 handler down.
func (a *API) ClearSessionExpired() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onExpired = nil
}

func (a *API) sessionExpired() {
	a.mu.Lock()
	fn := a.onExpired
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Notifications fetches the feed and unread count.
func (a *API) Notifications(ctx context.Context) (*Feed, error) {
	feed := &Feed{}
	if err := a.do(ctx, http.MethodGet, "/notifications", nil, feed); err != nil {
		return nil, err
	}
	return feed, nil
}

// MarkRead marks one notification read on the server.
func (a *API) MarkRead(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

// MarkAllRead marks every notification read on the server.
func (a *API) MarkAllRead(ctx context.Context) error {
	return a.do(ctx, http.MethodPatch, "/notifications/read-all", nil, nil)
}

// VAPIDPublicKey fetches the server's current push key. Unauthenticated.
func (a *API) VAPIDPublicKey(ctx context.Context) (string, error) {
	var body struct {
		PublicKey string `json:"publicKey"`
	}
	err := a.do(ctx, http.MethodGet, "/notifications/vapid-public-key", nil, &body)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return "", ErrMissingKey
		}
		return "", err
	}
	if body.PublicKey == "" {
		return "", ErrMissingKey
	}
	return body.PublicKey, nil
}

// SaveSubscription uploads the browser-issued subscription so the server
// can target this installation later.
func (a *API) SaveSubscription(ctx context.Context, sub *PushSubscription) error {
	payload := struct {
		Subscription *PushSubscription `json:"subscription"`
	}{Subscription: sub}
	return a.do(ctx, http.MethodPost, "/notifications/subscribe", payload, nil)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: backend returned %d: %s", e.Code, e.Message)
}

// envelope mirrors the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *API) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body *bytes.Buffer
	if in != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = body
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		a.sessionExpired()
		return ErrUnauthenticated
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := http.StatusText(resp.StatusCode)
		if env.Error != nil {
			msg = env.Error.Message
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: decode payload: %w", err)
		}
	}
	return nil
}
