package bridge

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/setevik/logbridge/internal/source"
	"github.com/setevik/logbridge/internal/target"
)

// fakeQueue records dispatched records with the mode used for each.
type fakeQueue struct {
	mu    sync.Mutex
	recs  []*target.Record
	modes []target.DispatchMode
}

func (q *fakeQueue) Enqueue(rec *target.Record)      { q.add(target.ModeSync, rec) }
func (q *fakeQueue) EnqueueAsync(rec *target.Record) { q.add(target.ModeAsync, rec) }
func (q *fakeQueue) Drain()                          {}

func (q *fakeQueue) add(mode target.DispatchMode, rec *target.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recs = append(q.recs, rec)
	q.modes = append(q.modes, mode)
}

func (q *fakeQueue) snapshot() ([]*target.Record, []target.DispatchMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	recs := make([]*target.Record, len(q.recs))
	copy(recs, q.recs)
	modes := make([]target.DispatchMode, len(q.modes))
	copy(modes, q.modes)
	return recs, modes
}

func newTestHandler(t *testing.T, opts Options) (*Handler, *fakeQueue) {
	t.Helper()
	q := &fakeQueue{}
	if opts.Queue == nil {
		opts.Queue = q
	}
	if opts.Lookup == nil {
		opts.Lookup = fakeLookup{}
	}
	if opts.Gate == nil {
		opts.Gate = target.NewTableGate(target.Deliver(target.ModeAsync))
	}
	if opts.OwnDestination == nil {
		opts.OwnDestination = source.NewWriterDestination("handler", io.Discard)
	}
	h, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h, q
}

func event(sev source.Severity, msg string) source.LogEvent {
	return source.LogEvent{Severity: sev, Time: time.Now(), Message: msg}
}

func TestHandlerInitBadLevelIsFatal(t *testing.T) {
	h, err := New(Options{Level: "chartreuse", Queue: &fakeQueue{}, Gate: target.NewTableGate(target.Deliver(target.ModeAsync))})
	if err == nil {
		t.Fatal("New with a bad level should fail")
	}
	if h != nil {
		t.Error("handler must not start on a bad initial level")
	}
	var badLevel *source.BadLogLevelError
	if !errors.As(err, &badLevel) {
		t.Errorf("error = %v, want to wrap *BadLogLevelError", err)
	}
}

func TestHandlerDefaultLevelIsMostPermissive(t *testing.T) {
	h, q := newTestHandler(t, Options{})

	if got := h.GetLevel().String(); got != "all" {
		t.Errorf("default level = %q, want %q", got, "all")
	}

	h.HandleEvent(event(source.SevDebug, "verbose"))
	h.Sync()

	recs, _ := q.snapshot()
	if len(recs) != 1 {
		t.Fatalf("debug event not forwarded under the default mask, got %d records", len(recs))
	}
}

func TestHandlerForwardingRequiresBothGates(t *testing.T) {
	severities := []source.Severity{
		source.SevDebug, source.SevInfo, source.SevNotice, source.SevWarning,
		source.SevError, source.SevCritical, source.SevAlert, source.SevEmergency,
	}

	// Target gate discards warn: even severities the mask passes must be
	// stopped when the target's runtime check says no.
	gate := target.NewTableGate(target.Deliver(target.ModeAsync))
	gate.Set(target.LevelWarn, target.Discard())

	h, q := newTestHandler(t, Options{Level: "notice", Gate: gate})

	for _, sev := range severities {
		h.HandleEvent(event(sev, sev.String()))
	}
	h.Sync()

	recs, _ := q.snapshot()
	var got []string
	for _, rec := range recs {
		got = append(got, rec.Message)
	}

	// notice passes the mask; warning passes too but is discarded by the
	// target; debug and info fail the mask.
	want := []string{"notice", "error", "critical", "alert", "emergency"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("forwarded = %v, want %v", got, want)
	}
}

func TestHandlerDispatchModeFollowsGate(t *testing.T) {
	gate := target.NewTableGate(target.Deliver(target.ModeAsync))
	gate.Set(target.LevelError, target.Deliver(target.ModeSync))

	h, q := newTestHandler(t, Options{Gate: gate})

	h.HandleEvent(event(source.SevInfo, "chatty"))
	h.HandleEvent(event(source.SevCritical, "broken"))
	h.Sync()

	recs, modes := q.snapshot()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if modes[0] != target.ModeAsync {
		t.Errorf("info dispatched %v, want async", modes[0])
	}
	if modes[1] != target.ModeSync {
		t.Errorf("critical dispatched %v, want sync", modes[1])
	}
}

func TestHandlerSetLevelSwapsMask(t *testing.T) {
	h, q := newTestHandler(t, Options{})

	if err := h.SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error): %v", err)
	}
	if got := h.GetLevel().String(); got != "error" {
		t.Errorf("level = %q, want %q", got, "error")
	}

	h.HandleEvent(event(source.SevWarning, "below"))
	h.HandleEvent(event(source.SevAlert, "above"))
	h.Sync()

	recs, _ := q.snapshot()
	if len(recs) != 1 || recs[0].Message != "above" {
		t.Errorf("records = %v, want only the alert", recs)
	}
}

func TestHandlerSetLevelBadValueKeepsMask(t *testing.T) {
	h, _ := newTestHandler(t, Options{Level: "warning"})

	err := h.SetLevel("chartreuse")
	var badLevel *source.BadLogLevelError
	if !errors.As(err, &badLevel) {
		t.Fatalf("SetLevel error = %v, want *BadLogLevelError", err)
	}
	if badLevel.Value != "chartreuse" {
		t.Errorf("error value = %q, want %q", badLevel.Value, "chartreuse")
	}

	// An immediately following get-level returns the prior mask, and the
	// handler keeps processing.
	if got := h.GetLevel().String(); got != "warning" {
		t.Errorf("level after failed set = %q, want %q", got, "warning")
	}
	if err := h.SetLevel("info"); err != nil {
		t.Errorf("handler should still accept level changes: %v", err)
	}
}

func TestHandlerUpgradeKeepsState(t *testing.T) {
	h, q := newTestHandler(t, Options{Level: "critical"})

	h.Upgrade()

	if got := h.GetLevel().String(); got != "critical" {
		t.Errorf("level after upgrade = %q, want %q", got, "critical")
	}

	h.HandleEvent(event(source.SevEmergency, "still filtered correctly"))
	h.Sync()
	if recs, _ := q.snapshot(); len(recs) != 1 {
		t.Errorf("handler should keep forwarding after upgrade, got %d records", len(recs))
	}
}

func TestHandlerInfoIsNoOp(t *testing.T) {
	h, q := newTestHandler(t, Options{Level: "info"})

	h.Info("unexpected message")
	h.Info(struct{ X int }{X: 1})
	h.Sync()

	if recs, _ := q.snapshot(); len(recs) != 0 {
		t.Errorf("info messages produced %d records", len(recs))
	}
	if got := h.GetLevel().String(); got != "info" {
		t.Errorf("level after info = %q, want %q", got, "info")
	}
}

func TestHandlerCloseAlwaysSucceeds(t *testing.T) {
	h, _ := newTestHandler(t, Options{})

	if err := h.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	// Control calls against a terminated handler fail cleanly.
	if err := h.SetLevel("error"); !errors.Is(err, ErrHandlerClosed) {
		t.Errorf("SetLevel after close = %v, want ErrHandlerClosed", err)
	}
	h.HandleEvent(event(source.SevError, "dropped"))
	h.Info("dropped")
	h.Upgrade()
	h.Sync()
}

func TestHandlerRecordFields(t *testing.T) {
	procDest := source.NewWriterDestination("proc-console", io.Discard)
	lookup := fakeLookup{source.ProcID(9): procDest}

	h, q := newTestHandler(t, Options{Lookup: lookup, UTC: true})

	capture := time.Date(2026, time.August, 30, 10, 20, 30, 123456*1000, time.UTC)
	h.HandleEvent(source.LogEvent{
		Severity: source.SevNotice,
		Time:     capture,
		Message:  "deploy finished",
		Meta:     source.Metadata{{Key: source.MetaKeyProc, Value: "proc-9"}},
	})
	h.Sync()

	recs, _ := q.snapshot()
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]

	if rec.ID == "" {
		t.Error("record should carry an ID")
	}
	if rec.Level != target.LevelInfo {
		t.Errorf("level = %v, want info", rec.Level)
	}
	if rec.Message != "deploy finished" {
		t.Errorf("message = %q", rec.Message)
	}
	if rec.Stamp.Millisecond != 123 {
		t.Errorf("millisecond = %d, want 123", rec.Stamp.Millisecond)
	}
	// The stringified identifier was repaired to its native form, so the
	// record resolves to the proc's own destination.
	if rec.Dest != procDest {
		t.Errorf("destination = %q, want the proc's console", rec.Dest.Name())
	}
	if v, _ := rec.Meta.Get(source.MetaKeyProc); v != source.ProcID(9) {
		t.Errorf("record proc = %v, want ProcID(9)", v)
	}
}

func TestHandlerRecordsAreFresh(t *testing.T) {
	h, q := newTestHandler(t, Options{})

	h.HandleEvent(event(source.SevInfo, "one"))
	h.HandleEvent(event(source.SevInfo, "two"))
	h.Sync()

	recs, _ := q.snapshot()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0] == recs[1] || recs[0].ID == recs[1].ID {
		t.Error("each dispatch must build a fresh record")
	}
}
