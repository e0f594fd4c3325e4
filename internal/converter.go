package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Glucose values outside the numeric range are reported as Low/High
const (
	GlucoseLow  = 39
	GlucoseHigh = 401
	minGlucose  = 20
	maxGlucose  = 400
)

// ParseGlucoseValue converts a reading value to mg/dL. Calibrations can go below 40.
func ParseGlucoseValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "low":
		return GlucoseLow, nil
	case "high":
		return GlucoseHigh, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid glucose value %q", s)
	}
	if v < minGlucose || v > maxGlucose {
		return 0, fmt.Errorf("glucose value out of range: %d", v)
	}
	return v, nil
}

// Record is one converted reading with zone-qualified timestamps
type Record struct {
	ID                string `json:"id" yaml:"id"`
	Type              string `json:"type" yaml:"type"` // "cbg" sensor, "smbg" calibration
	Value             int    `json:"value" yaml:"value"`
	DeviceTime        string `json:"deviceTime" yaml:"device_time"`
	Timezone          string `json:"timezone" yaml:"timezone"`
	TimezoneAwareTime string `json:"timezoneAwareTime" yaml:"timezone_aware_time"`
	UTCTime           string `json:"utcTime" yaml:"utc_time"`
	Segment           int    `json:"segment" yaml:"segment"`
}

// Conversion is the result of converting one export file
type Conversion struct {
	Source      string        `json:"source" yaml:"source"`
	Reference   string        `json:"reference" yaml:"reference"`
	Segments    []Segment     `json:"segments" yaml:"segments"`
	Records     []Record      `json:"records" yaml:"records"`
	Skipped     int           `json:"skipped" yaml:"skipped"`
	Ignored     int           `json:"ignored" yaml:"ignored"` // events, which have no glucose value
	ParseErrors []*ParseError `json:"-" yaml:"-"`
}

// Converter turns export readings into zone-qualified records
type Converter struct {
	ref       *time.Location
	segmenter *Segmenter
	newID     func() string
}

// NewConverter creates a Converter for the given reference zone, which
// applies to the most recent reading
func NewConverter(zone string, policy Policy) (*Converter, error) {
	if strings.TrimSpace(zone) == "" {
		return nil, fmt.Errorf("a reference time zone is required (e.g. America/New_York)")
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", zone, err)
	}
	seg, err := NewSegmenter(loc, policy)
	if err != nil {
		return nil, err
	}
	return &Converter{ref: loc, segmenter: seg, newID: uuid.NewString}, nil
}

// ConvertFile reads an export file and converts it
func (c *Converter) ConvertFile(path string) (*Conversion, error) {
	f, err := ReadExportFile(path)
	if err != nil {
		return nil, err
	}
	return c.Convert(f)
}

// Convert segments the file's glucose readings and converts each into a record
func (c *Converter) Convert(f *ExportFile) (*Conversion, error) {
	conv := &Conversion{
		Source:      f.Path,
		Reference:   c.ref.String(),
		Skipped:     f.Skipped,
		ParseErrors: append([]*ParseError(nil), f.Errors...),
	}

	readings := make([]*Reading, 0, len(f.Readings))
	values := make(map[*Reading]int, len(f.Readings))
	for _, r := range f.Readings {
		if r.Type == ReadingEvent {
			conv.Ignored++
			continue
		}
		v, err := ParseGlucoseValue(r.Value)
		if err != nil {
			conv.Skipped++
			conv.ParseErrors = append(conv.ParseErrors, &ParseError{Source: f.Path, Line: r.Index, Err: err})
			LogDebug("Skipping reading on line %d: %v", r.Index, err)
			continue
		}
		values[r] = v
		readings = append(readings, r)
	}
	if len(readings) == 0 {
		return nil, &EmptyInputError{Files: []string{f.Path}, Skipped: conv.Skipped}
	}
	SortReadings(readings)

	segments, err := c.segmenter.Segment(readings)
	if err != nil {
		return nil, err
	}
	conv.Segments = segments

	conv.Records = make([]Record, 0, len(readings))
	for si, seg := range segments {
		for i := seg.Start; i <= seg.End; i++ {
			r := readings[i]
			local := LocalTime(r.DisplayTime, seg.Zone)
			conv.Records = append(conv.Records, Record{
				ID:                c.newID(),
				Type:              recordType(r.Type),
				Value:             values[r],
				DeviceTime:        r.DisplayTime.Format("2006-01-02T15:04:05"),
				Timezone:          seg.ZoneName,
				TimezoneAwareTime: local.Format(time.RFC3339),
				UTCTime:           local.UTC().Format(time.RFC3339),
				Segment:           si,
			})
		}
	}

	LogInfo("Converted %d reading(s) in %d time zone segment(s)", len(conv.Records), len(segments))
	return conv, nil
}

func recordType(t ReadingType) string {
	if t == ReadingCalibration {
		return "smbg"
	}
	return "cbg"
}
