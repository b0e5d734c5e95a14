package bridge

import (
	"time"

	"github.com/setevik/logbridge/internal/target"
)

// ConvertStamp converts a wall-clock capture into a calendar stamp with
// millisecond resolution, truncating the microsecond component toward
// zero. The source always captures in local time; the utc flag selects
// which calendar the capture is rendered in, matching the source's own
// maybe-UTC normalization so the bridge never drifts from what the source
// would have shown.
func ConvertStamp(t time.Time, utc bool) target.Stamp {
	if utc {
		t = t.UTC()
	} else {
		t = t.Local()
	}
	micro := t.Nanosecond() / int(time.Microsecond)
	year, month, day := t.Date()
	return target.Stamp{
		Year:        year,
		Month:       month,
		Day:         day,
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Millisecond: micro / 1000,
	}
}
