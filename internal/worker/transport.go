package worker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// Transport connects the agent to the delivery channel and feeds it push
// events. The read loop ends when ctx is cancelled or the channel drops;
// restarting the worker is the platform's job, not ours.
type Transport struct {
	url    string
	header http.Header
	agent  *Agent
}

// NewTransport creates a transport dialing wsURL with the given headers
// (the session cookie travels here).
func NewTransport(wsURL string, header http.Header, agent *Agent) *Transport {
	return &Transport{url: wsURL, header: header, agent: agent}
}

// Run dials the channel and delivers every received payload to the agent.
func (t *Transport) Run(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, t.url, t.header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("worker: dial push channel (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("worker: dial push channel: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("worker: push channel closed: %w", err)
		}
		t.agent.HandlePush(ctx, payload)
	}
}
