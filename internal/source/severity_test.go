package source

import "testing"

func TestSeverityOrdering(t *testing.T) {
	order := []Severity{
		SevDebug, SevInfo, SevNotice, SevWarning,
		SevError, SevCritical, SevAlert, SevEmergency,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("%v should rank below %v", order[i-1], order[i])
		}
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		name string
	}{
		{SevDebug, "debug"},
		{SevInfo, "info"},
		{SevNotice, "notice"},
		{SevWarning, "warning"},
		{SevError, "error"},
		{SevCritical, "critical"},
		{SevAlert, "alert"},
		{SevEmergency, "emergency"},
		{Severity(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.name {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.name)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		sev  Severity
		ok   bool
	}{
		{"debug", SevDebug, true},
		{"NOTICE", SevNotice, true},
		{" emergency ", SevEmergency, true},
		{"warn", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		sev, ok := ParseSeverity(tt.in)
		if ok != tt.ok || sev != tt.sev {
			t.Errorf("ParseSeverity(%q) = (%v, %v), want (%v, %v)", tt.in, sev, ok, tt.sev, tt.ok)
		}
	}
}
