package dispatcher

import (
	"context"
	"testing"
	"time"
)

func newConn(userID int64, buffer int) *Conn {
	return &Conn{UserID: userID, Send: make(chan Envelope, buffer)}
}

func TestPublishDeliversToRegisteredConn(t *testing.T) {
	d := New(8, nil)
	d.StartWorkers(1)

	conn := newConn(1, 4)
	d.Registry.Register(conn)

	env := Envelope{Title: "Invoice paid", Body: "Invoice #12 was paid", Type: "invoice_paid"}
	if err := d.Publish(context.Background(), 1, env); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-conn.Send:
		if got != env {
			t.Errorf("delivered %+v, want %+v", got, env)
		}
	case <-time.After(time.Second):
		t.Fatal("envelope was not delivered")
	}

	d.Shutdown()
}

func TestPublishToOfflineUserDoesNotBlock(t *testing.T) {
	d := New(8, nil)
	d.StartWorkers(1)

	if err := d.Publish(context.Background(), 99, Envelope{Title: "x", Type: "default"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// A later envelope for a connected user still goes through.
	conn := newConn(1, 4)
	d.Registry.Register(conn)
	if err := d.Publish(context.Background(), 1, Envelope{Title: "y", Type: "default"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-conn.Send:
	case <-time.After(time.Second):
		t.Fatal("queue stalled after an offline drop")
	}

	d.Shutdown()
}

func TestShutdownDrainsQueue(t *testing.T) {
	d := New(16, nil)
	conn := newConn(1, 16)
	d.Registry.Register(conn)

	for i := 0; i < 10; i++ {
		if err := d.Publish(context.Background(), 1, Envelope{Title: "n", Type: "default"}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	d.StartWorkers(2)
	d.Shutdown()

	if got := len(conn.Send); got != 10 {
		t.Errorf("delivered %d envelopes after shutdown, want 10", got)
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := newRegistry()
	a := newConn(1, 1)
	b := newConn(1, 1)

	r.Register(a)
	r.Register(b)
	if got := len(r.ByUser(1)); got != 2 {
		t.Fatalf("conns = %d, want 2", got)
	}

	r.Unregister(a)
	conns := r.ByUser(1)
	if len(conns) != 1 || conns[0] != b {
		t.Errorf("unexpected conns after unregister: %v", conns)
	}

	r.Unregister(b)
	if got := len(r.ByUser(1)); got != 0 {
		t.Errorf("conns = %d after removing all, want 0", got)
	}
}
