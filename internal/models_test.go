package internal

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2014, 3, 1, 10, 5, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "plain", in: "2014-03-01 10:05:00"},
		{name: "milliseconds", in: "2014-03-01 10:05:00.000"},
		{name: "surrounding space", in: " 2014-03-01 10:05:00 "},
		{name: "iso separator", in: "2014-03-01T10:05:00", wantErr: true},
		{name: "date only", in: "2014-03-01", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(time.Time{}); got != "" {
		t.Errorf("FormatTimestamp(zero) = %q, want empty", got)
	}
	if got := FormatTimestamp(time.Date(2014, 3, 1, 10, 5, 0, 0, time.UTC)); got != "2014-03-01 10:05:00" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
}

func TestReading_Identity(t *testing.T) {
	base := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	a := CreateTestReading(ReadingSensor, base, -5*time.Hour, "120")
	b := *a
	b.Index, b.Source, b.Serial, b.Generation = 42, "other.csv", "SM1234", GenerationG4Platinum

	if a.Identity() != b.Identity() {
		t.Error("identity should ignore row index, source and device attributes")
	}

	changed := *a
	changed.Value = "121"
	if a.Identity() == changed.Identity() {
		t.Error("identity should include the value")
	}
}

func TestReading_ClockOffset(t *testing.T) {
	base := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	r := CreateTestReading(ReadingSensor, base, -5*time.Hour, "120")
	if got := r.ClockOffset(); got != -5*time.Hour {
		t.Errorf("ClockOffset() = %s, want -5h", got)
	}
}

func TestExportFile_Counts(t *testing.T) {
	base := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	f := &ExportFile{Readings: []*Reading{
		CreateTestReading(ReadingSensor, base, 0, "100"),
		CreateTestReading(ReadingSensor, base.Add(5*time.Minute), 0, "101"),
		CreateTestReading(ReadingCalibration, base, 0, "99"),
	}}
	counts := f.Counts()
	if counts[ReadingSensor] != 2 || counts[ReadingCalibration] != 1 || counts[ReadingEvent] != 0 {
		t.Errorf("Counts() = %v", counts)
	}
}
