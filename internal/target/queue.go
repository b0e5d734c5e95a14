package target

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

type delivery struct {
	rec  *Record
	done chan struct{} // non-nil for sync enqueues and barriers
}

// Queue is the target subsystem's inbox: an unbounded FIFO drained by a
// single consumer goroutine that hands each record to the configured sinks.
// Order is preserved for every record enqueued through it, regardless of
// mode.
type Queue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []delivery
	closed    bool
	sinks     []Sink
	delivered atomic.Uint64
	done      chan struct{}
}

// NewQueue creates a queue delivering to the given sinks and starts its
// consumer.
func NewQueue(sinks ...Sink) *Queue {
	q := &Queue{
		sinks: sinks,
		done:  make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.consume()
	return q
}

// Enqueue appends the record and blocks until the consumer has handed it
// to the sinks. This is the backpressured path.
func (q *Queue) Enqueue(rec *Record) {
	done := make(chan struct{})
	if !q.push(delivery{rec: rec, done: done}) {
		return
	}
	<-done
}

// EnqueueAsync appends the record and returns without waiting.
func (q *Queue) EnqueueAsync(rec *Record) {
	q.push(delivery{rec: rec})
}

// Drain blocks until every record enqueued before the call has been handed
// to the sinks.
func (q *Queue) Drain() {
	done := make(chan struct{})
	if !q.push(delivery{done: done}) {
		return
	}
	<-done
}

// Delivered returns the number of records handed to the sinks so far.
func (q *Queue) Delivered() uint64 {
	return q.delivered.Load()
}

// Close drains remaining records, stops the consumer, and closes the sinks.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return nil
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.done

	var firstErr error
	for _, s := range q.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (q *Queue) push(d delivery) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		if d.rec != nil {
			slog.Debug("queue closed, dropping record", "id", d.rec.ID)
		}
		return false
	}
	q.items = append(q.items, d)
	q.cond.Signal()
	return true
}

func (q *Queue) consume() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		d := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		if d.rec != nil {
			for _, s := range q.sinks {
				if err := s.Emit(d.rec); err != nil {
					slog.Error("sink delivery failed", "id", d.rec.ID, "error", err)
				}
			}
			q.delivered.Add(1)
		}
		if d.done != nil {
			close(d.done)
		}
	}
}
