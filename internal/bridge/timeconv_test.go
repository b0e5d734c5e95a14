package bridge

import (
	"testing"
	"time"

	"github.com/setevik/logbridge/internal/target"
)

func TestConvertStampMillisecondTruncation(t *testing.T) {
	// Microsecond component 123456 must always yield millisecond 123.
	capture := time.Date(2026, time.March, 14, 15, 9, 26, 123456*1000, time.Local)

	local := ConvertStamp(capture, false)
	if local.Millisecond != 123 {
		t.Errorf("local millisecond = %d, want 123", local.Millisecond)
	}
	utc := ConvertStamp(capture, true)
	if utc.Millisecond != 123 {
		t.Errorf("utc millisecond = %d, want 123", utc.Millisecond)
	}
}

func TestConvertStampLocalFields(t *testing.T) {
	capture := time.Date(2026, time.March, 14, 15, 9, 26, 123999*1000, time.Local)
	got := ConvertStamp(capture, false)
	want := target.Stamp{
		Year: 2026, Month: time.March, Day: 14,
		Hour: 15, Minute: 9, Second: 26, Millisecond: 123,
	}
	if got != want {
		t.Errorf("ConvertStamp = %+v, want %+v", got, want)
	}
}

func TestConvertStampUTCCalendar(t *testing.T) {
	zone := time.FixedZone("east3", 3*60*60)
	capture := time.Date(2026, time.March, 14, 2, 30, 0, 123456*1000, zone)

	got := ConvertStamp(capture, true)
	want := target.Stamp{
		Year: 2026, Month: time.March, Day: 13,
		Hour: 23, Minute: 30, Second: 0, Millisecond: 123,
	}
	if got != want {
		t.Errorf("ConvertStamp(utc) = %+v, want %+v", got, want)
	}
}

func TestConvertStampModesDifferOnlyInCalendar(t *testing.T) {
	capture := time.Date(2026, time.July, 1, 8, 0, 0, 999999*1000, time.Local)
	local := ConvertStamp(capture, false)
	utc := ConvertStamp(capture, true)
	if local.Millisecond != utc.Millisecond {
		t.Errorf("milliseconds differ between modes: local=%d utc=%d",
			local.Millisecond, utc.Millisecond)
	}
}
