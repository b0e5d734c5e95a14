// Package bridge forwards events from the source bus into the target
// queue. A Handler owns one level mask, processes events strictly one at a
// time, and answers control calls through the same serialized inbox.
package bridge

import (
	"fmt"

	"github.com/setevik/logbridge/internal/source"
	"github.com/setevik/logbridge/internal/target"
)

// TranslateSeverity maps the eight source severities onto the four target
// levels. The mapping is total over the closed severity set; any other
// value is a programming error and panics rather than silently defaulting.
func TranslateSeverity(sev source.Severity) target.Level {
	switch sev {
	case source.SevDebug:
		return target.LevelDebug
	case source.SevInfo, source.SevNotice:
		return target.LevelInfo
	case source.SevWarning:
		return target.LevelWarn
	case source.SevError, source.SevCritical, source.SevAlert, source.SevEmergency:
		return target.LevelError
	}
	panic(fmt.Sprintf("severity %d outside the closed severity set", sev))
}
