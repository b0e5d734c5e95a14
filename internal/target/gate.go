package target

import (
	"strings"
	"sync/atomic"
)

// DispatchMode selects how a record enters the queue.
type DispatchMode int

const (
	// ModeAsync enqueues without waiting.
	ModeAsync DispatchMode = iota

	// ModeSync blocks the caller until the queue has accepted the record.
	ModeSync
)

// String returns "sync" or "async".
func (m DispatchMode) String() string {
	if m == ModeSync {
		return "sync"
	}
	return "async"
}

// ParseMode parses a dispatch mode name.
func ParseMode(name string) (DispatchMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sync":
		return ModeSync, true
	case "async":
		return ModeAsync, true
	}
	return 0, false
}

// BehaviorKind is the outcome of the per-level runtime query.
type BehaviorKind int

const (
	// BehaviorFiltered means the level is below the target's threshold.
	BehaviorFiltered BehaviorKind = iota

	// BehaviorDiscard means the level is accepted but thrown away.
	BehaviorDiscard

	// BehaviorDeliver means records at the level are delivered.
	BehaviorDeliver
)

// Behavior describes what the target currently does with a level.
type Behavior struct {
	Kind BehaviorKind
	Mode DispatchMode // meaningful only for BehaviorDeliver
}

// Filtered returns the filtered behavior.
func Filtered() Behavior { return Behavior{Kind: BehaviorFiltered} }

// Discard returns the discard behavior.
func Discard() Behavior { return Behavior{Kind: BehaviorDiscard} }

// Deliver returns a delivery behavior with the given mode.
func Deliver(mode DispatchMode) Behavior {
	return Behavior{Kind: BehaviorDeliver, Mode: mode}
}

// Gate answers the target's current runtime behavior for a level. It is
// queried per event; implementations must be safe for concurrent use.
type Gate interface {
	LevelBehavior(l Level) Behavior
}

// ThresholdGate is a Gate backed by a single runtime-adjustable minimum
// level. Levels at or above the threshold are delivered with one mode.
type ThresholdGate struct {
	min  atomic.Int32
	mode DispatchMode
}

// NewThresholdGate creates a threshold gate.
func NewThresholdGate(min Level, mode DispatchMode) *ThresholdGate {
	g := &ThresholdGate{mode: mode}
	g.min.Store(int32(min))
	return g
}

// Min returns the current threshold.
func (g *ThresholdGate) Min() Level {
	return Level(g.min.Load())
}

// SetMin adjusts the threshold. Takes effect for subsequent queries.
func (g *ThresholdGate) SetMin(min Level) {
	g.min.Store(int32(min))
}

// LevelBehavior implements Gate.
func (g *ThresholdGate) LevelBehavior(l Level) Behavior {
	if l < g.Min() {
		return Filtered()
	}
	return Deliver(g.mode)
}

// TableGate is a Gate with an explicit per-level behavior table and a
// default for unlisted levels. Configure before use; the table is not
// mutated afterwards.
type TableGate struct {
	behaviors map[Level]Behavior
	def       Behavior
}

// NewTableGate creates a table gate with the given default behavior.
func NewTableGate(def Behavior) *TableGate {
	return &TableGate{
		behaviors: make(map[Level]Behavior),
		def:       def,
	}
}

// Set assigns a behavior to a level.
func (g *TableGate) Set(l Level, b Behavior) {
	g.behaviors[l] = b
}

// LevelBehavior implements Gate.
func (g *TableGate) LevelBehavior(l Level) Behavior {
	if b, ok := g.behaviors[l]; ok {
		return b
	}
	return g.def
}
