package source

import (
	"sync"
	"time"
)

// Handler receives events from the bus. Implementations must accept events
// in the order delivered; Sync must not return until every event accepted
// before the call has been fully processed.
type Handler interface {
	HandleEvent(ev LogEvent)
	Sync()
}

type busItem struct {
	ev      LogEvent
	barrier chan struct{} // non-nil for Sync barriers
}

type procEntry struct {
	dest Destination
}

// Bus is the source subsystem's event bus. Emitters register as processes
// with an output destination; handlers attach and receive every emitted
// event in emission order via a single dispatch goroutine.
type Bus struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []busItem
	closed   bool
	handlers []Handler
	procs    map[ProcID]procEntry
	nextProc ProcID
	done     chan struct{}
}

// NewBus creates a bus and starts its dispatch loop.
func NewBus() *Bus {
	b := &Bus{
		procs: make(map[ProcID]procEntry),
		done:  make(chan struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.dispatch()
	return b
}

// RegisterProc registers a process with its output destination and returns
// its identifier.
func (b *Bus) RegisterProc(dest Destination) ProcID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextProc++
	b.procs[b.nextProc] = procEntry{dest: dest}
	return b.nextProc
}

// UnregisterProc marks a process as terminated. Its destination is no
// longer resolvable afterwards.
func (b *Bus) UnregisterProc(pid ProcID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.procs, pid)
}

// DestinationFor resolves the registered destination of a live process.
// It reports false for unknown or terminated processes.
func (b *Bus) DestinationFor(pid ProcID) (Destination, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.procs[pid]
	if !ok {
		return nil, false
	}
	return entry.dest, true
}

// AddHandler attaches a handler. It will see every event emitted after the
// call.
func (b *Bus) AddHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// RemoveHandler detaches a handler.
func (b *Bus) RemoveHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.handlers {
		if cur == h {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Handlers returns a snapshot of the currently attached handlers.
func (b *Bus) Handlers() []Handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Handler, len(b.handlers))
	copy(out, b.handlers)
	return out
}

// Emit stamps the event with the local capture time and queues it for
// delivery to every attached handler.
func (b *Bus) Emit(sev Severity, msg string, meta Metadata) {
	b.emit(LogEvent{Severity: sev, Time: time.Now(), Message: msg, Meta: meta})
}

func (b *Bus) emit(ev LogEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.queue = append(b.queue, busItem{ev: ev})
	b.cond.Signal()
}

// Sync blocks until every event emitted before the call has been handed to
// the attached handlers.
func (b *Bus) Sync() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	barrier := make(chan struct{})
	b.queue = append(b.queue, busItem{barrier: barrier})
	b.cond.Signal()
	b.mu.Unlock()
	<-barrier
}

// Close stops the dispatch loop after draining queued events.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	b.cond.Signal()
	b.mu.Unlock()
	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.queue) == 0 && b.closed {
			b.mu.Unlock()
			return
		}
		item := b.queue[0]
		b.queue = b.queue[1:]
		handlers := make([]Handler, len(b.handlers))
		copy(handlers, b.handlers)
		b.mu.Unlock()

		if item.barrier != nil {
			close(item.barrier)
			continue
		}
		for _, h := range handlers {
			h.HandleEvent(item.ev)
		}
	}
}
