package internal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Detection selects how clock changes are recognized
type Detection string

const (
	// DetectionAuto uses internal detection when every reading carries both clocks
	DetectionAuto Detection = "auto"
	// DetectionCadence compares display-time gaps against the nominal sampling cadence
	DetectionCadence Detection = "cadence"
	// DetectionInternal compares the display-minus-internal clock difference of adjacent readings
	DetectionInternal Detection = "internal"
)

// ParseDetection parses a detection mode name
func ParseDetection(s string) (Detection, error) {
	switch Detection(strings.ToLower(s)) {
	case DetectionAuto, "":
		return DetectionAuto, nil
	case DetectionCadence:
		return DetectionCadence, nil
	case DetectionInternal:
		return DetectionInternal, nil
	default:
		return "", fmt.Errorf("unsupported detection mode: %s (supported: auto, cadence, internal)", s)
	}
}

// Policy is the explicit rule set for turning clock jumps into zone shifts
type Policy struct {
	Detection Detection     `yaml:"detection" validate:"omitempty,oneof=auto cadence internal"`
	Cadence   time.Duration `yaml:"cadence" validate:"gt=0s"`
	Tolerance time.Duration `yaml:"tolerance" validate:"gte=0s"`
	ShiftStep time.Duration `yaml:"shift_step" split_words:"true" validate:"gt=0s"`
	MaxShift  time.Duration `yaml:"max_shift" split_words:"true" validate:"gtefield=ShiftStep"`
	// Hints pin zones that cannot be inferred from the clocks alone
	Hints []ZoneHint `yaml:"hints,omitempty" validate:"dive"`
}

// DefaultPolicy returns the policy for a five-minute CGM stream
func DefaultPolicy() Policy {
	return Policy{
		Detection: DetectionAuto,
		Cadence:   5 * time.Minute,
		Tolerance: time.Minute,
		ShiftStep: 30 * time.Minute,
		MaxShift:  14 * time.Hour,
	}
}

// Validate checks that the policy can classify every deviation unambiguously
func (p Policy) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if 2*p.Tolerance >= p.ShiftStep {
		return fmt.Errorf("tolerance %s must be less than half the shift step %s", p.Tolerance, p.ShiftStep)
	}
	_, err := compileHints(p.Hints)
	return err
}

// matchShift returns the recognized zone shift a deviation corresponds to
func (p Policy) matchShift(dev time.Duration) (time.Duration, bool) {
	n := math.Round(float64(dev) / float64(p.ShiftStep))
	if n == 0 {
		return 0, false
	}
	shift := time.Duration(n) * p.ShiftStep
	if absDuration(shift) > p.MaxShift {
		return 0, false
	}
	if absDuration(dev-shift) > p.Tolerance {
		return 0, false
	}
	return shift, true
}

// droppedReadings reports whether a positive deviation is explained by
// missing samples
func (p Policy) droppedReadings(dev time.Duration) bool {
	if dev <= 0 {
		return false
	}
	n := math.Round(float64(dev) / float64(p.Cadence))
	return n >= 1 && absDuration(dev-time.Duration(n)*p.Cadence) <= p.Tolerance
}

// Segment is a contiguous run of readings sharing one resolved zone.
// Start and End are inclusive indices into the ascending reading sequence.
type Segment struct {
	Start     int            `json:"start" yaml:"start"`
	End       int            `json:"end" yaml:"end"`
	Zone      *time.Location `json:"-" yaml:"-"`
	ZoneName  string         `json:"timezone" yaml:"timezone"`
	Offset    time.Duration  `json:"-" yaml:"-"`
	UTCOffset string         `json:"utcOffset" yaml:"utc_offset"`
	// Shift is the clock change at the newer edge of the segment
	Shift  time.Duration `json:"-" yaml:"-"`
	Reason string        `json:"reason" yaml:"reason"`
	From   string        `json:"from" yaml:"from"`
	To     string        `json:"to" yaml:"to"`
}

// Len returns the number of readings in the segment
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

const (
	ReasonReference   = "reference zone"
	ReasonClockChange = "clock change"
	ReasonZoneHint    = "zone hint"
)

// Segmenter partitions readings into time zone segments by scanning back
// from the most recent reading, whose zone is known
type Segmenter struct {
	policy Policy
	ref    *time.Location
	hints  []zoneHint
}

// NewSegmenter creates a new Segmenter
func NewSegmenter(ref *time.Location, policy Policy) (*Segmenter, error) {
	if ref == nil {
		return nil, fmt.Errorf("reference zone is nil")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	hints, err := compileHints(policy.Hints)
	if err != nil {
		return nil, err
	}
	return &Segmenter{policy: policy, ref: ref, hints: hints}, nil
}

// Segment assigns every reading to exactly one segment. Readings must be in
// ascending internal time order. Segments are returned oldest first.
func (s *Segmenter) Segment(readings []*Reading) ([]Segment, error) {
	n := len(readings)
	if n == 0 {
		return nil, nil
	}

	mode := s.resolveDetection(readings)
	LogDebug("Segmenting %d reading(s) with %s detection", n, mode)

	boundaries, err := s.findBoundaries(readings, mode)
	if err != nil {
		return nil, err
	}

	// boundaries are newest first; each is the first index of a newer segment
	cur := Segment{
		End:      n - 1,
		Zone:     s.ref,
		ZoneName: s.ref.String(),
		Offset:   zoneOffsetAt(s.ref, readings[n-1].DisplayTime),
		Reason:   ReasonReference,
	}
	var reversed []Segment
	for _, b := range boundaries {
		cur.Start = b.start
		s.applyHint(&cur, readings)
		reversed = append(reversed, cur)

		offset := cur.Offset - b.shift
		zone, name := s.resolveZone(offset, readings[b.start-1].DisplayTime)
		LogInfo("Clock change of %s before %s: older readings use %s", b.shift, FormatTimestamp(readings[b.start].DisplayTime), name)
		cur = Segment{End: b.start - 1, Zone: zone, ZoneName: name, Offset: offset, Shift: b.shift, Reason: ReasonClockChange}
	}
	cur.Start = 0
	s.applyHint(&cur, readings)
	reversed = append(reversed, cur)

	segments := make([]Segment, len(reversed))
	for i := range reversed {
		seg := reversed[len(reversed)-1-i]
		seg.UTCOffset = formatOffset(seg.Offset)
		seg.From = FormatTimestamp(readings[seg.Start].DisplayTime)
		seg.To = FormatTimestamp(readings[seg.End].DisplayTime)
		segments[i] = seg
	}
	return segments, nil
}

// applyHint replaces the derived zone of seg with the first hint that selects
// any of its readings. Older segments are then derived from the hinted offset.
func (s *Segmenter) applyHint(seg *Segment, readings []*Reading) {
	h, ok := s.hintFor(readings[seg.Start : seg.End+1])
	if !ok {
		return
	}
	seg.Zone = h.loc
	seg.ZoneName = h.loc.String()
	seg.Offset = zoneOffsetAt(h.loc, readings[seg.End].DisplayTime)
	seg.Reason = ReasonZoneHint
	LogInfo("Zone hint %s applies to %s..%s", h.ZoneHint, FormatTimestamp(readings[seg.Start].DisplayTime), FormatTimestamp(readings[seg.End].DisplayTime))
}

func (s *Segmenter) hintFor(readings []*Reading) (zoneHint, bool) {
	for _, h := range s.hints {
		for _, r := range readings {
			if h.matches(r) {
				return h, true
			}
		}
	}
	return zoneHint{}, false
}

// unresolvable builds the error for the jump between older and the reading
// at idx, unless a hint pins the older side's zone
func (s *Segmenter) unresolvable(readings []*Reading, idx int, older *Reading, dev time.Duration) error {
	if _, ok := s.hintFor([]*Reading{older}); ok {
		LogInfo("Clock jump of %s before %s resolved by zone hint", dev, FormatTimestamp(readings[idx].DisplayTime))
		return nil
	}
	newer := readings[idx]
	return &UnresolvableTimezoneError{
		Index:     idx,
		Source:    newer.Source,
		Line:      newer.Index,
		Before:    older.DisplayTime,
		After:     newer.DisplayTime,
		Deviation: dev,
	}
}

type boundary struct {
	start int
	shift time.Duration
}

func (s *Segmenter) resolveDetection(readings []*Reading) Detection {
	if s.policy.Detection != DetectionAuto && s.policy.Detection != "" {
		return s.policy.Detection
	}
	for _, r := range readings {
		if r.InternalTime.IsZero() || r.DisplayTime.IsZero() {
			return DetectionCadence
		}
	}
	return DetectionInternal
}

func (s *Segmenter) findBoundaries(readings []*Reading, mode Detection) ([]boundary, error) {
	if mode == DetectionCadence {
		return s.cadenceBoundaries(readings)
	}
	return s.internalBoundaries(readings)
}

// internalBoundaries compares each reading's display-minus-internal
// difference against the baseline of the segment being scanned
func (s *Segmenter) internalBoundaries(readings []*Reading) ([]boundary, error) {
	var out []boundary
	baseline := readings[len(readings)-1].ClockOffset()
	for i := len(readings) - 1; i > 0; i-- {
		newer, older := readings[i], readings[i-1]
		if deviceChanged(older, newer) {
			LogInfo("Receiver changed before %s, resetting clock baseline", FormatTimestamp(newer.DisplayTime))
			baseline = older.ClockOffset()
			continue
		}
		dev := baseline - older.ClockOffset()
		if absDuration(dev) <= s.policy.Tolerance {
			continue
		}
		shift, ok := s.policy.matchShift(dev)
		if !ok {
			if err := s.unresolvable(readings, i, older, dev); err != nil {
				return nil, err
			}
			shift = dev
		}
		out = append(out, boundary{start: i, shift: shift})
		baseline = older.ClockOffset()
	}
	return out, nil
}

// cadenceBoundaries compares display-time gaps of the fixed-cadence stream
// (sensor readings, or everything if there are none) to the nominal cadence.
// Readings outside the stream join whichever side of a boundary their clock
// matches.
func (s *Segmenter) cadenceBoundaries(readings []*Reading) ([]boundary, error) {
	stream := make([]int, 0, len(readings))
	for i, r := range readings {
		if r.Type == ReadingSensor {
			stream = append(stream, i)
		}
	}
	if len(stream) == 0 {
		for i := range readings {
			stream = append(stream, i)
		}
	}

	var out []boundary
	for k := len(stream) - 1; k > 0; k-- {
		newerIdx, olderIdx := stream[k], stream[k-1]
		newer, older := readings[newerIdx], readings[olderIdx]
		dev := newer.DisplayTime.Sub(older.DisplayTime) - s.policy.Cadence
		if absDuration(dev) <= s.policy.Tolerance {
			continue
		}
		shift, ok := s.policy.matchShift(dev)
		if !ok {
			if s.policy.droppedReadings(dev) {
				LogDebug("Gap of %s before %s treated as missing readings", dev+s.policy.Cadence, FormatTimestamp(newer.DisplayTime))
				continue
			}
			if err := s.unresolvable(readings, newerIdx, older, dev); err != nil {
				return nil, err
			}
			shift = dev
		}
		start := newerIdx
		for start > olderIdx+1 && !onOlderClock(readings[start-1], older, newer) {
			start--
		}
		out = append(out, boundary{start: start, shift: shift})
	}
	return out, nil
}

// onOlderClock reports whether r, logged between two stream readings on
// either side of a clock change, was recorded on the older clock. The
// display-minus-internal difference decides when all three carry both
// clocks; otherwise the nearer display time does.
func onOlderClock(r, older, newer *Reading) bool {
	if hasBothClocks(r) && hasBothClocks(older) && hasBothClocks(newer) {
		return absDuration(r.ClockOffset()-older.ClockOffset()) < absDuration(r.ClockOffset()-newer.ClockOffset())
	}
	return absDuration(r.DisplayTime.Sub(older.DisplayTime)) < absDuration(newer.DisplayTime.Sub(r.DisplayTime))
}

func hasBothClocks(r *Reading) bool {
	return !r.InternalTime.IsZero() && !r.DisplayTime.IsZero()
}

// resolveZone keeps the reference location when it already has the derived
// offset at t (a daylight saving change); otherwise it returns a fixed zone
func (s *Segmenter) resolveZone(offset time.Duration, t time.Time) (*time.Location, string) {
	if zoneOffsetAt(s.ref, t) == offset {
		return s.ref, s.ref.String()
	}
	name := "UTC" + formatOffset(offset)
	return time.FixedZone(name, int(offset/time.Second)), name
}

func deviceChanged(a, b *Reading) bool {
	if a.Serial != "" && b.Serial != "" && a.Serial != b.Serial {
		return true
	}
	return a.Generation != "" && b.Generation != "" && a.Generation != b.Generation
}

// LocalTime interprets a naive timestamp as wall clock time in loc
func LocalTime(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func zoneOffsetAt(loc *time.Location, t time.Time) time.Duration {
	_, secs := LocalTime(t, loc).Zone()
	return time.Duration(secs) * time.Second
}

func formatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
