package bridge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/setevik/logbridge/internal/source"
	"github.com/setevik/logbridge/internal/target"
)

// ErrHandlerClosed is returned by control calls against a terminated
// handler.
var ErrHandlerClosed = errors.New("handler closed")

const defaultInboxDepth = 256

// Options configures a Handler.
type Options struct {
	// Lookup resolves process destinations, normally the source bus.
	Lookup DestinationLookup

	// Gate answers the target's current per-level runtime behavior.
	Gate target.Gate

	// Queue is the target inbox records are dispatched into.
	Queue DeliveryQueue

	// OwnDestination is the fallback destination when an event's process
	// cannot be resolved.
	OwnDestination source.Destination

	// Level is the initial level configuration. Empty means "all".
	Level string

	// UTC selects UTC calendar conversion for record stamps.
	UTC bool

	// InboxDepth bounds the handler's inbox. Zero means the default.
	InboxDepth int
}

type eventMsg struct{ ev source.LogEvent }

type getLevelMsg struct{ reply chan source.Mask }

type setLevelMsg struct {
	config string
	reply  chan error
}

type infoMsg struct{ v any }

type upgradeMsg struct{ reply chan struct{} }

type syncMsg struct{ reply chan struct{} }

type stopMsg struct{ reply chan struct{} }

// Handler bridges one source bus onto one target queue. Its only state is
// the current level mask. Events and control calls travel through a single
// serialized inbox drained by one goroutine, so processing is strictly one
// message at a time and a get-level always observes either the pre- or
// post-update mask of a concurrent set-level, never a partial one.
type Handler struct {
	id     string
	opts   Options
	disp   Dispatcher
	mask   source.Mask // owned by the run goroutine
	inbox  chan any
	done   chan struct{}
	closed chan struct{}
}

// New compiles the initial level and starts the handler. A compile failure
// is fatal: the handler never starts.
func New(opts Options) (*Handler, error) {
	level := opts.Level
	if level == "" {
		level = "all"
	}
	mask, err := source.CompileMask(level)
	if err != nil {
		return nil, fmt.Errorf("compiling initial level: %w", err)
	}

	depth := opts.InboxDepth
	if depth <= 0 {
		depth = defaultInboxDepth
	}

	h := &Handler{
		id:     uuid.NewString(),
		opts:   opts,
		disp:   Dispatcher{queue: opts.Queue},
		mask:   mask,
		inbox:  make(chan any, depth),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go h.run()

	slog.Debug("bridge handler started", "handler", h.id, "level", mask.String())
	return h, nil
}

// ID returns the handler's instance identifier.
func (h *Handler) ID() string {
	return h.id
}

// HandleEvent accepts one event for processing. It implements
// source.Handler; the bus calls it in emission order. Events offered after
// termination are dropped.
func (h *Handler) HandleEvent(ev source.LogEvent) {
	h.post(eventMsg{ev: ev})
}

// GetLevel returns the current mask.
func (h *Handler) GetLevel() source.Mask {
	reply := make(chan source.Mask, 1)
	if !h.post(getLevelMsg{reply: reply}) {
		return source.Mask{}
	}
	return <-reply
}

// SetLevel compiles the new level configuration and swaps the mask. On a
// compile failure the prior mask stays in place, the typed error is
// returned, and the handler keeps running.
func (h *Handler) SetLevel(config string) error {
	reply := make(chan error, 1)
	if !h.post(setLevelMsg{config: config, reply: reply}) {
		return ErrHandlerClosed
	}
	return <-reply
}

// Info delivers an out-of-band message. The handler ignores it, as the
// hosting contract requires.
func (h *Handler) Info(v any) {
	h.post(infoMsg{v: v})
}

// Upgrade is the hook a host calls around a live code swap. The mask
// carries over untouched; the call returns once the handler has passed the
// upgrade point.
func (h *Handler) Upgrade() {
	reply := make(chan struct{})
	if !h.post(upgradeMsg{reply: reply}) {
		return
	}
	<-reply
}

// Sync blocks until every event accepted before the call has been fully
// processed, including its dispatch into the target queue. It implements
// source.Handler for flush.
func (h *Handler) Sync() {
	reply := make(chan struct{})
	if !h.post(syncMsg{reply: reply}) {
		return
	}
	<-reply
}

// Close terminates the handler after draining its inbox. It always
// succeeds and may be called more than once.
func (h *Handler) Close() error {
	reply := make(chan struct{})
	if h.post(stopMsg{reply: reply}) {
		<-reply
	}
	<-h.done
	return nil
}

// post offers a message to the inbox, failing once the handler is closed.
func (h *Handler) post(m any) bool {
	select {
	case <-h.closed:
		return false
	default:
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.closed:
		return false
	}
}

func (h *Handler) run() {
	defer close(h.done)
	for raw := range h.inbox {
		switch m := raw.(type) {
		case eventMsg:
			h.handleEvent(m.ev)
		case getLevelMsg:
			m.reply <- h.mask
		case setLevelMsg:
			m.reply <- h.setLevel(m.config)
		case infoMsg:
			// Required by the hosting contract; deliberately ignored.
		case upgradeMsg:
			close(m.reply)
		case syncMsg:
			close(m.reply)
		case stopMsg:
			close(h.closed)
			h.drainInbox()
			close(m.reply)
			slog.Debug("bridge handler stopped", "handler", h.id)
			return
		}
	}
}

// drainInbox finishes events already accepted before termination and
// answers any control calls still waiting in the inbox.
func (h *Handler) drainInbox() {
	for {
		select {
		case raw := <-h.inbox:
			switch m := raw.(type) {
			case eventMsg:
				h.handleEvent(m.ev)
			case getLevelMsg:
				m.reply <- h.mask
			case setLevelMsg:
				m.reply <- ErrHandlerClosed
			case upgradeMsg:
				close(m.reply)
			case syncMsg:
				close(m.reply)
			case stopMsg:
				close(m.reply)
			}
		default:
			return
		}
	}
}

// handleEvent runs one event through the full pipeline: translate, query
// the target's runtime behavior, apply both gates, normalize, resolve, and
// dispatch. The mask is never changed here.
func (h *Handler) handleEvent(ev source.LogEvent) {
	level := TranslateSeverity(ev.Severity)

	behavior := h.opts.Gate.LevelBehavior(level)
	if behavior.Kind != target.BehaviorDeliver {
		return
	}
	if !source.IsLoggable(ev, h.mask) {
		return
	}

	meta := FixIdentifier(ev.Meta)
	rec := &target.Record{
		ID:      uuid.NewString(),
		Level:   level,
		Dest:    ResolveDestination(h.opts.Lookup, meta, h.opts.OwnDestination),
		Message: ev.Message,
		Stamp:   ConvertStamp(ev.Time, h.opts.UTC),
		Meta:    meta,
	}
	h.disp.Notify(behavior.Mode, rec)
}

func (h *Handler) setLevel(config string) error {
	mask, err := source.CompileMask(config)
	if err != nil {
		// Prior mask stays in place; the handler keeps running.
		slog.Warn("rejecting level change", "handler", h.id, "level", config, "error", err)
		return err
	}
	h.mask = mask
	slog.Info("level changed", "handler", h.id, "level", mask.String())
	return nil
}
