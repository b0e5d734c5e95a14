package source

import (
	"context"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		sev  Severity
		msg  string
	}{
		{"0 kernel panic", SevEmergency, "kernel panic"},
		{"3 disk failure", SevError, "disk failure"},
		{"7 verbose detail", SevDebug, "verbose detail"},
		{"plain message", SevInfo, "plain message"},
		{"99 not a priority", SevInfo, "99 not a priority"},
	}

	for _, tt := range tests {
		sev, msg := parseLine(tt.line)
		if sev != tt.sev || msg != tt.msg {
			t.Errorf("parseLine(%q) = (%v, %q), want (%v, %q)", tt.line, sev, msg, tt.sev, tt.msg)
		}
	}
}

func TestPipeEmitterRun(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	h := &collectHandler{}
	bus.AddHandler(h)

	dest := NewWriterDestination("pipe", &strings.Builder{})
	emitter := NewPipeEmitter(bus, dest, strings.NewReader("4 warn line\n6 info line\n"))

	if err := emitter.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	bus.Sync()

	events := h.events
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Severity != SevWarning || events[0].Message != "warn line" {
		t.Errorf("first event = (%v, %q)", events[0].Severity, events[0].Message)
	}
	if events[1].Severity != SevInfo {
		t.Errorf("second severity = %v, want %v", events[1].Severity, SevInfo)
	}

	pidVal, ok := events[0].Meta.Get(MetaKeyProc)
	if !ok {
		t.Fatal("event should carry the proc key")
	}
	if pidVal != emitter.ProcID() {
		t.Errorf("proc = %v, want %v", pidVal, emitter.ProcID())
	}

	// Run returned, so the proc is terminated.
	if _, ok := bus.DestinationFor(emitter.ProcID()); ok {
		t.Error("emitter proc should be unregistered after Run returns")
	}
}
