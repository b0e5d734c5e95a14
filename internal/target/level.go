// Package target implements the receiving logging subsystem: the four-level
// model, the per-level runtime behavior query, and the FIFO delivery queue
// with its sinks.
package target

import "strings"

// Level classifies a record on the target side, least severe first.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// String returns the lowercase level name.
func (l Level) String() string {
	if l >= LevelDebug && l <= LevelError {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses a level name. Matching is case-insensitive.
func ParseLevel(name string) (Level, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for lvl, n := range levelNames {
		if n == name {
			return Level(lvl), true
		}
	}
	return 0, false
}

// Levels returns all levels in ascending order.
func Levels() []Level {
	return []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
