package target

import (
	"fmt"
	"strings"
	"sync"
)

// Sink renders or stores delivered records.
type Sink interface {
	// Emit writes the record to the sink's output.
	Emit(rec *Record) error

	// Close releases any resources held by the sink.
	Close() error
}

// ConsoleSink renders each record to its own destination handle.
type ConsoleSink struct{}

// Emit implements Sink.
func (ConsoleSink) Emit(rec *Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", rec.Stamp, rec.Level, rec.Message)
	for _, f := range rec.Meta {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteByte('\n')
	_, err := rec.Dest.Write([]byte(b.String()))
	return err
}

// Close implements Sink.
func (ConsoleSink) Close() error { return nil }

// MemorySink captures delivered records for inspection in tests.
type MemorySink struct {
	mu      sync.Mutex
	records []*Record
}

// Emit implements Sink.
func (m *MemorySink) Emit(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Close implements Sink.
func (m *MemorySink) Close() error { return nil }

// Records returns a snapshot of the captured records.
func (m *MemorySink) Records() []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Record, len(m.records))
	copy(out, m.records)
	return out
}

// Count returns the number of captured records.
func (m *MemorySink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
