package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ZoneHint pins the time zone of the readings it selects. A hint selects by
// receiver serial, by a display time range, or both. From and To are
// inclusive and either may be empty.
type ZoneHint struct {
	Serial string `yaml:"serial,omitempty" json:"serial,omitempty"`
	From   string `yaml:"from,omitempty" json:"from,omitempty"`
	To     string `yaml:"to,omitempty" json:"to,omitempty"`
	Zone   string `yaml:"zone" json:"zone" validate:"required"`
}

// ParseZoneHint parses the command line form of a hint:
//
//	serial:SM40123456=America/Chicago
//	2014-01-10T08:00:00..2014-01-12T20:00:00=Europe/Berlin
//	..2014-01-12T20:00:00=-06:00
func ParseZoneHint(s string) (ZoneHint, error) {
	sel, zone, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok || zone == "" || sel == "" {
		return ZoneHint{}, fmt.Errorf("invalid zone hint %q: want SELECTOR=ZONE", s)
	}
	h := ZoneHint{Zone: strings.TrimSpace(zone)}
	if serial, found := strings.CutPrefix(sel, "serial:"); found {
		h.Serial = strings.TrimSpace(serial)
	} else {
		from, to, found := strings.Cut(sel, "..")
		if !found {
			return ZoneHint{}, fmt.Errorf("invalid zone hint %q: selector must be serial:SN or FROM..TO", s)
		}
		h.From, h.To = strings.TrimSpace(from), strings.TrimSpace(to)
	}
	if _, err := h.compile(); err != nil {
		return ZoneHint{}, err
	}
	return h, nil
}

// Decode lets envconfig read DEXCOM_CONVERT_POLICY_HINTS as a comma separated
// list of hints
func (h *ZoneHint) Decode(value string) error {
	parsed, err := ParseZoneHint(value)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h ZoneHint) String() string {
	sel := h.From + ".." + h.To
	if h.Serial != "" {
		sel = "serial:" + h.Serial
		if h.From != "" || h.To != "" {
			sel += " " + h.From + ".." + h.To
		}
	}
	return sel + "=" + h.Zone
}

type zoneHint struct {
	ZoneHint
	from, to time.Time
	loc      *time.Location
}

func (h ZoneHint) compile() (zoneHint, error) {
	c := zoneHint{ZoneHint: h}
	if h.Serial == "" && h.From == "" && h.To == "" {
		return c, fmt.Errorf("zone hint %s selects nothing", h)
	}
	var err error
	if h.From != "" {
		if c.from, err = parseHintTime(h.From); err != nil {
			return c, fmt.Errorf("zone hint %s: %w", h, err)
		}
	}
	if h.To != "" {
		if c.to, err = parseHintTime(h.To); err != nil {
			return c, fmt.Errorf("zone hint %s: %w", h, err)
		}
	}
	if !c.from.IsZero() && !c.to.IsZero() && c.to.Before(c.from) {
		return c, fmt.Errorf("zone hint %s ends before it starts", h)
	}
	if c.loc, err = ParseZone(h.Zone); err != nil {
		return c, fmt.Errorf("zone hint %s: %w", h, err)
	}
	return c, nil
}

func (h zoneHint) matches(r *Reading) bool {
	if h.Serial != "" && r.Serial != h.Serial {
		return false
	}
	if !h.from.IsZero() && r.DisplayTime.Before(h.from) {
		return false
	}
	if !h.to.IsZero() && r.DisplayTime.After(h.to) {
		return false
	}
	return true
}

func compileHints(hints []ZoneHint) ([]zoneHint, error) {
	out := make([]zoneHint, 0, len(hints))
	for _, h := range hints {
		c, err := h.compile()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseHintTime(s string) (time.Time, error) {
	return ParseTimestamp(strings.Replace(s, "T", " ", 1))
}

// ParseZone resolves an IANA zone name or a fixed UTC offset such as -06:00
// or UTC+05:30
func ParseZone(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	raw := strings.TrimPrefix(s, "UTC")
	if raw != "" && (raw[0] == '+' || raw[0] == '-') {
		offset, err := parseOffset(raw)
		if err != nil {
			return nil, err
		}
		return time.FixedZone("UTC"+formatOffset(offset), int(offset/time.Second)), nil
	}
	if s == "" {
		return nil, fmt.Errorf("empty time zone")
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", s, err)
	}
	return loc, nil
}

func parseOffset(s string) (time.Duration, error) {
	sign := time.Duration(1)
	if s[0] == '-' {
		sign = -1
	}
	hh, mm, _ := strings.Cut(s[1:], ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m > 59 {
			return 0, fmt.Errorf("invalid UTC offset %q", s)
		}
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}
