// Package source implements the originating logging subsystem: the ordered
// severity model, the event bus with its process/destination registry, and
// the level-mask filtering oracle. Bridge handlers attach to the bus and
// receive every emitted event in order.
package source

import "strings"

// Severity classifies an event on the source side. The eight values follow
// syslog ordering, least severe first.
type Severity int

const (
	SevDebug Severity = iota
	SevInfo
	SevNotice
	SevWarning
	SevError
	SevCritical
	SevAlert
	SevEmergency
)

var severityNames = [...]string{
	SevDebug:     "debug",
	SevInfo:      "info",
	SevNotice:    "notice",
	SevWarning:   "warning",
	SevError:     "error",
	SevCritical:  "critical",
	SevAlert:     "alert",
	SevEmergency: "emergency",
}

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s >= SevDebug && s <= SevEmergency {
		return severityNames[s]
	}
	return "unknown"
}

// ParseSeverity parses a severity name. Matching is case-insensitive.
func ParseSeverity(name string) (Severity, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for sev, n := range severityNames {
		if n == name {
			return Severity(sev), true
		}
	}
	return 0, false
}
