package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// pushChannel is the Redis pub/sub channel shared by all API instances.
const pushChannel = "payvault:push"

// RunBridge subscribes to the shared Redis channel and feeds received
// envelopes into the local queue. Blocks until ctx is cancelled; cancel it
// before Shutdown so nothing enqueues into a closed channel.
func (d *Dispatcher) RunBridge(ctx context.Context) error {
	if d.rdb == nil {
		return fmt.Errorf("dispatcher: no redis client configured")
	}

	pubsub := d.rdb.Subscribe(ctx, pushChannel)
	defer pubsub.Close()

	log.Printf("Dispatch bridge subscribed to %s", pushChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("dispatcher: redis subscription closed")
			}
			var it item
			if err := json.Unmarshal([]byte(msg.Payload), &it); err != nil {
				log.Printf("Dispatch bridge: bad payload: %v", err)
				continue
			}
			d.enqueue(it)
		}
	}
}
