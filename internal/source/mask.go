package source

import (
	"fmt"
	"strings"
)

// Mask is a compiled minimum-severity filter. Its internals belong to this
// package; consumers hold it and hand it back to IsLoggable.
type Mask struct {
	min  Severity
	none bool
	repr string
}

// String returns the configuration value the mask was compiled from.
func (m Mask) String() string {
	return m.repr
}

// BadLogLevelError reports a level configuration value that does not
// compile to a mask.
type BadLogLevelError struct {
	Value string
}

func (e *BadLogLevelError) Error() string {
	return fmt.Sprintf("bad log level %q", e.Value)
}

// CompileMask compiles a level configuration value into a mask. Valid
// values are the eight severity names plus "all" and "none". Malformed
// input is returned as a *BadLogLevelError, never a panic.
func CompileMask(config string) (Mask, error) {
	v := strings.ToLower(strings.TrimSpace(config))
	switch v {
	case "all":
		return Mask{min: SevDebug, repr: v}, nil
	case "none":
		return Mask{none: true, repr: v}, nil
	}
	if sev, ok := ParseSeverity(v); ok {
		return Mask{min: sev, repr: v}, nil
	}
	return Mask{}, &BadLogLevelError{Value: config}
}

// IsLoggable reports whether the event passes the mask. This predicate is
// the single place severity ordering is applied; callers must not
// reimplement it.
func IsLoggable(ev LogEvent, m Mask) bool {
	if m.none {
		return false
	}
	return ev.Severity >= m.min
}
