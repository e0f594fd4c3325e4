package internal

import (
	"fmt"
	"strings"
)

// Layout is the column layout of an export file
type Layout string

const (
	LayoutFull  Layout = "full"
	LayoutTerse Layout = "terse"
)

// Optional trailing columns
const (
	ColumnDeviceGeneration = "DeviceGeneration"
	ColumnSerialNumber     = "SerialNumber"
)

// columnGroup maps one reading type onto a set of columns. A negative index
// means the layout has no such column.
type columnGroup struct {
	Type        ReadingType
	Internal    int
	Display     int
	Value       int
	EventType   int
	Description int
}

type layoutSpec struct {
	columns []string
	groups  []columnGroup
	// shortest row that can still hold the first column group
	minColumns int
}

var layouts = map[Layout]layoutSpec{
	LayoutFull: {
		columns: []string{
			"PatientInfoField", "PatientInfoValue",
			"GlucoseInternalTime", "GlucoseDisplayTime", "GlucoseValue",
			"MeterInternalTime", "MeterDisplayTime", "MeterValue",
			"EventLoggedInternalTime", "EventLoggedDisplayTime", "EventTime", "EventType", "EventDescription",
		},
		groups: []columnGroup{
			{Type: ReadingSensor, Internal: 2, Display: 3, Value: 4, EventType: -1, Description: -1},
			{Type: ReadingCalibration, Internal: 5, Display: 6, Value: 7, EventType: -1, Description: -1},
			{Type: ReadingEvent, Internal: 8, Display: 9, Value: 10, EventType: 11, Description: 12},
		},
		minColumns: 2,
	},
	LayoutTerse: {
		columns: []string{
			"GlucoseInternalTime", "GlucoseDisplayTime", "GlucoseValue",
			"MeterInternalTime", "MeterDisplayTime", "MeterValue",
		},
		groups: []columnGroup{
			{Type: ReadingSensor, Internal: 0, Display: 1, Value: 2, EventType: -1, Description: -1},
			{Type: ReadingCalibration, Internal: 3, Display: 4, Value: 5, EventType: -1, Description: -1},
		},
		minColumns: 3,
	},
}

// ParseLayout parses a layout name
func ParseLayout(name string) (Layout, error) {
	switch Layout(strings.ToLower(name)) {
	case LayoutFull:
		return LayoutFull, nil
	case LayoutTerse:
		return LayoutTerse, nil
	default:
		return "", fmt.Errorf("unsupported layout: %s (supported: full, terse)", name)
	}
}

// Columns returns the fixed column names of the layout
func (l Layout) Columns() []string {
	return append([]string(nil), layouts[l].columns...)
}

// Header returns the header row for the layout followed by the extra columns
func (l Layout) Header(extras []string) []string {
	return append(l.Columns(), extras...)
}

// Supports reports whether the layout has columns for the reading type
func (l Layout) Supports(t ReadingType) bool {
	_, ok := l.group(t)
	return ok
}

func (l Layout) group(t ReadingType) (columnGroup, bool) {
	for _, g := range layouts[l].groups {
		if g.Type == t {
			return g, true
		}
	}
	return columnGroup{}, false
}

// ExtraColumns returns the optional trailing columns for the given output options
func ExtraColumns(deviceGen, serial bool) []string {
	var extras []string
	if deviceGen || serial {
		extras = append(extras, ColumnDeviceGeneration)
	}
	if serial {
		extras = append(extras, ColumnSerialNumber)
	}
	return extras
}

// DetectLayout identifies the layout of a header row and returns any
// recognized trailing columns
func DetectLayout(header []string) (Layout, []string, error) {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	// trailing empty cells come from a dangling delimiter
	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}

	for _, l := range []Layout{LayoutFull, LayoutTerse} {
		cols := layouts[l].columns
		if len(cleaned) < len(cols) || !equalColumns(cleaned[:len(cols)], cols) {
			continue
		}
		extras := cleaned[len(cols):]
		if !validExtras(extras) {
			return "", nil, fmt.Errorf("unrecognized trailing columns %v", extras)
		}
		return l, append([]string(nil), extras...), nil
	}
	return "", nil, fmt.Errorf("header does not match a known export layout")
}

func equalColumns(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func validExtras(extras []string) bool {
	switch len(extras) {
	case 0:
		return true
	case 1:
		return extras[0] == ColumnDeviceGeneration || extras[0] == ColumnSerialNumber
	case 2:
		return extras[0] == ColumnDeviceGeneration && extras[1] == ColumnSerialNumber
	default:
		return false
	}
}

// ParseRow maps one data row onto zero or more readings. Column groups that
// are entirely blank are skipped; a row with no readings is not an error.
func (l Layout) ParseRow(row []string, extras []string) ([]*Reading, error) {
	spec := layouts[l]
	width := len(spec.columns) + len(extras)
	for len(row) > width && strings.TrimSpace(row[len(row)-1]) == "" {
		row = row[:len(row)-1]
	}
	if len(row) < spec.minColumns || len(row) > width {
		return nil, fmt.Errorf("expected between %d and %d columns, got %d", spec.minColumns, width, len(row))
	}

	padded := make([]string, width)
	for i, cell := range row {
		padded[i] = strings.TrimSpace(cell)
	}

	var generation Generation
	var serial string
	for i, name := range extras {
		v := padded[len(spec.columns)+i]
		switch name {
		case ColumnDeviceGeneration:
			generation = Generation(v)
		case ColumnSerialNumber:
			serial = v
		}
	}

	var readings []*Reading
	for _, g := range spec.groups {
		internal, display, value := padded[g.Internal], padded[g.Display], padded[g.Value]
		if internal == "" && display == "" && value == "" {
			continue
		}
		it, err := ParseTimestamp(internal)
		if err != nil {
			return nil, fmt.Errorf("%s internal time: %w", g.Type, err)
		}
		dt, err := ParseTimestamp(display)
		if err != nil {
			return nil, fmt.Errorf("%s display time: %w", g.Type, err)
		}
		if value == "" {
			return nil, fmt.Errorf("%s reading has no value", g.Type)
		}
		r := &Reading{
			Type:         g.Type,
			InternalTime: it,
			DisplayTime:  dt,
			Value:        value,
			Generation:   generation,
			Serial:       serial,
		}
		if g.EventType >= 0 {
			r.EventType = padded[g.EventType]
		}
		if g.Description >= 0 {
			r.EventDescription = padded[g.Description]
		}
		readings = append(readings, r)
	}
	return readings, nil
}

// FormatRow renders a reading into a row of the layout. It reports false when
// the layout has no columns for the reading type.
func (l Layout) FormatRow(r *Reading, extras []string) ([]string, bool) {
	g, ok := l.group(r.Type)
	if !ok {
		return nil, false
	}
	cols := layouts[l].columns
	row := make([]string, len(cols)+len(extras))
	row[g.Internal] = FormatTimestamp(r.InternalTime)
	row[g.Display] = FormatTimestamp(r.DisplayTime)
	row[g.Value] = r.Value
	if g.EventType >= 0 {
		row[g.EventType] = r.EventType
	}
	if g.Description >= 0 {
		row[g.Description] = r.EventDescription
	}
	for i, name := range extras {
		switch name {
		case ColumnDeviceGeneration:
			gen := r.Generation
			if gen == "" {
				gen = GenerationUnknown
			}
			row[len(cols)+i] = string(gen)
		case ColumnSerialNumber:
			row[len(cols)+i] = r.Serial
		}
	}
	return row, true
}
