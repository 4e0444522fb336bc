package dispatcher

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/bengche/payvault-push/pkg/middleware"
	"github.com/bengche/payvault-push/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated requests into delivery-channel
// connections for background workers.
type WSHandler struct {
	registry *Registry
}

// NewWSHandler creates a new delivery channel handler
func NewWSHandler(registry *Registry) *WSHandler {
	return &WSHandler{registry: registry}
}

// Serve handles GET /notifications/ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade to websocket: %v", err)
		return
	}

	conn := &Conn{
		UserID: userID,
		Send:   make(chan Envelope, 64),
	}
	h.registry.Register(conn)

	defer func() {
		h.registry.Unregister(conn)
		ws.Close()
		log.Printf("Worker for user %d disconnected", userID)
	}()

	log.Printf("Worker for user %d connected", userID)

	// The read pump only detects disconnects; workers never send upstream.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case env, ok := <-conn.Send:
			if !ok {
				return
			}
			if err := ws.WriteJSON(env); err != nil {
				log.Printf("Error writing to websocket for user %d: %v", userID, err)
				return
			}
		case <-done:
			return
		}
	}
}
