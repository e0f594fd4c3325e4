package internal

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// CreateTestReading creates a reading whose display clock runs clockOffset
// ahead of its internal clock
func CreateTestReading(typ ReadingType, internal time.Time, clockOffset time.Duration, value string) *Reading {
	return &Reading{
		Type:         typ,
		InternalTime: internal,
		DisplayTime:  internal.Add(clockOffset),
		Value:        value,
	}
}

// CreateSensorSeries creates n sensor readings at a fixed cadence
func CreateSensorSeries(start time.Time, n int, cadence, clockOffset time.Duration) []*Reading {
	readings := make([]*Reading, 0, n)
	for i := 0; i < n; i++ {
		value := strconv.Itoa(80 + (i*7)%200)
		readings = append(readings, CreateTestReading(ReadingSensor, start.Add(time.Duration(i)*cadence), clockOffset, value))
	}
	return readings
}

// ShiftDisplay moves the display clock of readings by d
func ShiftDisplay(readings []*Reading, d time.Duration) {
	for _, r := range readings {
		r.DisplayTime = r.DisplayTime.Add(d)
	}
}

// RenderExport renders readings as an export file, one reading per row
func RenderExport(layout Layout, delim rune, extras []string, readings []*Reading) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delim
	_ = w.Write(layout.Header(extras))
	for _, r := range readings {
		if row, ok := layout.FormatRow(r, extras); ok {
			_ = w.Write(row)
		}
	}
	w.Flush()
	return buf.Bytes()
}

// CreateTestConversion creates a two segment conversion with one record in
// each segment
func CreateTestConversion() *Conversion {
	return &Conversion{
		Source:    "export.csv",
		Reference: "America/New_York",
		Segments: []Segment{
			{Start: 0, End: 0, ZoneName: "UTC-06:00", Offset: -6 * time.Hour, UTCOffset: "-06:00", Shift: time.Hour, Reason: ReasonClockChange, From: "2014-01-10 09:00:00", To: "2014-01-10 09:00:00"},
			{Start: 1, End: 1, ZoneName: "America/New_York", Offset: -5 * time.Hour, UTCOffset: "-05:00", Reason: ReasonReference, From: "2014-01-10 11:05:00", To: "2014-01-10 11:05:00"},
		},
		Records: []Record{
			{ID: "rec-1", Type: "cbg", Value: 120, DeviceTime: "2014-01-10T09:00:00", Timezone: "UTC-06:00", TimezoneAwareTime: "2014-01-10T09:00:00-06:00", UTCTime: "2014-01-10T15:00:00Z", Segment: 0},
			{ID: "rec-2", Type: "smbg", Value: 98, DeviceTime: "2014-01-10T11:05:00", Timezone: "America/New_York", TimezoneAwareTime: "2014-01-10T11:05:00-05:00", UTCTime: "2014-01-10T16:05:00Z", Segment: 1},
		},
		Skipped: 1,
		Ignored: 2,
	}
}
