package dispatcher

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Envelope is the push message wire format delivered to background workers.
type Envelope struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type"`
}

// item pairs an envelope with its recipient while it sits in the queue.
type item struct {
	UserID   int64    `json:"user_id"`
	Envelope Envelope `json:"envelope"`
}

// Dispatcher fans stored notifications out to connected background workers.
// With a Redis client it publishes through a shared channel so every API
// instance delivers to its own connections; without one it queues locally.
type Dispatcher struct {
	queue    chan item
	Registry *Registry
	rdb      *redis.Client
	wg       sync.WaitGroup
}

// New creates a dispatcher with the given queue capacity. rdb may be nil.
func New(capacity int, rdb *redis.Client) *Dispatcher {
	return &Dispatcher{
		queue:    make(chan item, capacity),
		Registry: newRegistry(),
		rdb:      rdb,
	}
}

// Publish hands an envelope to the delivery channel for one user.
func (d *Dispatcher) Publish(ctx context.Context, userID int64, env Envelope) error {
	it := item{UserID: userID, Envelope: env}

	if d.rdb == nil {
		d.enqueue(it)
		return nil
	}

	payload, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return d.rdb.Publish(ctx, pushChannel, payload).Err()
}

func (d *Dispatcher) enqueue(it item) {
	select {
	case d.queue <- it:
	default:
		log.Printf("Dispatch queue full, dropping envelope for user %d", it.UserID)
	}
}

// StartWorkers launches the delivery worker pool.
func (d *Dispatcher) StartWorkers(numberWorkers int) {
	log.Printf("Starting %d dispatch workers...", numberWorkers)

	for i := 0; i < numberWorkers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for it := range d.queue {
		conns := d.Registry.ByUser(it.UserID)
		if len(conns) == 0 {
			log.Printf("[Worker %d] User %d has no connected workers. Envelope dropped.", id, it.UserID)
			continue
		}

		for _, c := range conns {
			select {
			case c.Send <- it.Envelope:
			default:
				log.Printf("[Worker %d] Slow connection for user %d, skipping", id, it.UserID)
			}
		}
	}
}

// Shutdown stops accepting envelopes and waits for workers to drain the
// queue. Stop the Redis bridge before calling this.
func (d *Dispatcher) Shutdown() {
	close(d.queue)
	d.wg.Wait()
}

// Conn is one background worker's live connection.
type Conn struct {
	UserID int64
	Send   chan Envelope
}

// Registry tracks live worker connections per user. A user may hold several
// at once (one per browser installation).
type Registry struct {
	mu    sync.RWMutex
	conns map[int64][]*Conn
}

func newRegistry() *Registry {
	return &Registry{conns: make(map[int64][]*Conn)}
}

// Register adds a connection
func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.UserID] = append(r.conns[c.UserID], c)
}

// Unregister removes a connection
func (r *Registry) Unregister(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.conns[c.UserID]
	for i, existing := range conns {
		if existing == c {
			r.conns[c.UserID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(r.conns[c.UserID]) == 0 {
		delete(r.conns, c.UserID)
	}
}

// ByUser returns a snapshot of a user's live connections
func (r *Registry) ByUser(userID int64) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Conn, len(r.conns[userID]))
	copy(conns, r.conns[userID])
	return conns
}
