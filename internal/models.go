package internal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used by Dexcom Studio exports
const TimeLayout = "2006-01-02 15:04:05"

// ReadingType identifies which column group a reading came from
type ReadingType string

const (
	ReadingSensor      ReadingType = "sensor"
	ReadingCalibration ReadingType = "calibration"
	ReadingEvent       ReadingType = "event"
)

// Generation identifies the Dexcom receiver generation
type Generation string

const (
	GenerationSevenPlus  Generation = "SevenPlus"
	GenerationG4Platinum Generation = "G4Platinum"
	GenerationUnknown    Generation = "Unknown"
)

var (
	g4PlatinumSerial = regexp.MustCompile(`^SM\d.+`)
	sevenPlusSerial  = regexp.MustCompile(`^\d.+`)
)

// GenerationFromSerial infers the receiver generation from its serial number
func GenerationFromSerial(serial string) Generation {
	switch {
	case serial == "":
		return GenerationUnknown
	case g4PlatinumSerial.MatchString(serial):
		return GenerationG4Platinum
	case sevenPlusSerial.MatchString(serial):
		return GenerationSevenPlus
	default:
		return GenerationUnknown
	}
}

// Reading is one timestamped record from a receiver export
type Reading struct {
	Index            int         `json:"index" yaml:"index"`
	Source           string      `json:"source,omitempty" yaml:"source,omitempty"`
	Type             ReadingType `json:"type" yaml:"type"`
	InternalTime     time.Time   `json:"internalTime" yaml:"internal_time"`
	DisplayTime      time.Time   `json:"displayTime" yaml:"display_time"`
	Value            string      `json:"value" yaml:"value"`
	EventType        string      `json:"eventType,omitempty" yaml:"event_type,omitempty"`
	EventDescription string      `json:"eventDescription,omitempty" yaml:"event_description,omitempty"`
	Generation       Generation  `json:"generation,omitempty" yaml:"generation,omitempty"`
	Serial           string      `json:"serial,omitempty" yaml:"serial,omitempty"`
}

// Identity returns the dedup key of a reading. Index, source and device
// attributes are not part of it since they differ across overlapping exports.
func (r *Reading) Identity() string {
	return strings.Join([]string{
		r.InternalTime.Format(TimeLayout),
		string(r.Type),
		r.DisplayTime.Format(TimeLayout),
		r.Value,
		r.EventType,
		r.EventDescription,
	}, "\x1f")
}

// ClockOffset is how far the display clock runs ahead of the internal clock
func (r *Reading) ClockOffset() time.Duration {
	return r.DisplayTime.Sub(r.InternalTime)
}

// ParseTimestamp parses an export timestamp. Seven Plus receivers append
// milliseconds, which are dropped.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	if len(s) > len(TimeLayout) {
		if t, err2 := time.Parse(TimeLayout, s[:len(TimeLayout)]); err2 == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp renders a naive timestamp in export format
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// ExportFile is the parsed content of one export file
type ExportFile struct {
	Path       string
	Layout     Layout
	Delimiter  rune
	Extras     []string
	Serial     string
	Generation Generation
	Readings   []*Reading
	Skipped    int
	Errors     []*ParseError
}

// Counts returns the number of readings per type
func (f *ExportFile) Counts() map[ReadingType]int {
	counts := make(map[ReadingType]int)
	for _, r := range f.Readings {
		counts[r.Type]++
	}
	return counts
}
