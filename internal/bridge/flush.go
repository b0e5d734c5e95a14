package bridge

import "github.com/setevik/logbridge/internal/source"

// Flush forces a full drain in dependency order: first the source bus (so
// every emitted event has reached the handlers), then each handler
// currently registered on the bus (so every accepted event has been
// dispatched), then the target queue (so every dispatched record has been
// handed to the sinks). When it returns, every event emitted before the
// call is fully delivered. It always succeeds.
func Flush(bus *source.Bus, queue DeliveryQueue) {
	bus.Sync()
	for _, h := range bus.Handlers() {
		h.Sync()
	}
	queue.Drain()
}
