package bridge

import "github.com/setevik/logbridge/internal/target"

// DeliveryQueue is the slice of the target subsystem the dispatcher needs:
// a blocking enqueue, a non-blocking enqueue, and a drain barrier. Both
// enqueue paths preserve FIFO order. *target.Queue implements it.
type DeliveryQueue interface {
	Enqueue(rec *target.Record)
	EnqueueAsync(rec *target.Record)
	Drain()
}

// Dispatcher delivers records into the target queue in the requested mode.
type Dispatcher struct {
	queue DeliveryQueue
}

// Notify enqueues the record. Sync mode blocks until the queue has
// accepted it, which is the bridge's only backpressure mechanism; async
// mode returns immediately.
func (d Dispatcher) Notify(mode target.DispatchMode, rec *target.Record) {
	if mode == target.ModeSync {
		d.queue.Enqueue(rec)
		return
	}
	d.queue.EnqueueAsync(rec)
}
