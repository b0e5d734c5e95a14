package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MetaKeyProc is the metadata key carrying the emitting process identifier.
const MetaKeyProc = "proc"

// ProcID identifies a process registered on the bus. The zero value is
// never handed out.
type ProcID uint64

// String returns the canonical text form, e.g. "proc-42".
func (p ProcID) String() string {
	return fmt.Sprintf("proc-%d", uint64(p))
}

// ParseProcID parses the canonical "proc-<n>" text form. Anything else,
// including a bare number, is an error.
func ParseProcID(s string) (ProcID, error) {
	rest, ok := strings.CutPrefix(s, "proc-")
	if !ok {
		return 0, fmt.Errorf("malformed proc identifier %q", s)
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("malformed proc identifier %q", s)
	}
	return ProcID(n), nil
}

// Field is a single metadata entry.
type Field struct {
	Key   string
	Value any
}

// Metadata is an ordered key/value mapping with unique keys. Entries keep
// their insertion position; Set of an existing key updates it in place.
type Metadata []Field

// Get returns the value for key.
func (m Metadata) Get(key string) (any, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set updates key in place or appends it, returning the resulting metadata.
func (m Metadata) Set(key string, value any) Metadata {
	for i, f := range m {
		if f.Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, Field{Key: key, Value: value})
}

// Delete removes key, returning the resulting metadata.
func (m Metadata) Delete(key string) Metadata {
	for i, f := range m {
		if f.Key == key {
			return append(m[:i:i], m[i+1:]...)
		}
	}
	return m
}

// Keys returns the keys in order.
func (m Metadata) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.Key
	}
	return keys
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	copy(out, m)
	return out
}

// LogEvent is a single event emitted on the bus. Events are immutable once
// emitted; the message arrives pre-formatted.
type LogEvent struct {
	Severity Severity
	Time     time.Time // local wall-clock capture, sub-millisecond precision
	Message  string
	Meta     Metadata
}
