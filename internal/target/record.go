package target

import (
	"fmt"
	"time"

	"github.com/setevik/logbridge/internal/source"
)

// Stamp is a calendar date/time with millisecond resolution.
type Stamp struct {
	Year        int
	Month       time.Month
	Day         int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

// String formats the stamp as "2006-01-02 15:04:05.000".
func (s Stamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d",
		s.Year, s.Month, s.Day, s.Hour, s.Minute, s.Second, s.Millisecond)
}

// Record is a single delivery into the target subsystem. Records are built
// fresh per dispatched event and never reused.
type Record struct {
	ID      string
	Level   Level
	Dest    source.Destination
	Message string
	Stamp   Stamp
	Meta    source.Metadata
}
