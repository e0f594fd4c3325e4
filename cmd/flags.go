package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iksnae/dexcom-tools/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// policyFlags holds the segmentation policy overrides shared by convert and
// segments
type policyFlags struct {
	timezone  string
	detection string
	cadence   time.Duration
	tolerance time.Duration
	shiftStep time.Duration
	maxShift  time.Duration
	zoneHints []string
}

func (p *policyFlags) register(cmd *cobra.Command) {
	def := internal.DefaultPolicy()
	cmd.Flags().StringVar(&p.timezone, "tz", "", "IANA time zone of the most recent reading (e.g. America/New_York)")
	cmd.Flags().StringVar(&p.detection, "detection", string(def.Detection), "Clock change detection (auto, cadence, internal)")
	cmd.Flags().DurationVar(&p.cadence, "cadence", def.Cadence, "Nominal sensor sampling interval")
	cmd.Flags().DurationVar(&p.tolerance, "tolerance", def.Tolerance, "Allowed deviation from the cadence or a shift step")
	cmd.Flags().DurationVar(&p.shiftStep, "shift-step", def.ShiftStep, "Granularity of recognized clock changes")
	cmd.Flags().DurationVar(&p.maxShift, "max-shift", def.MaxShift, "Largest recognized clock change")
	cmd.Flags().StringArrayVar(&p.zoneHints, "zone-hint", nil, "Pin a zone: serial:SN=ZONE or FROM..TO=ZONE (repeatable, replaces configured hints)")
}

// timezoneFor returns the --tz value, falling back to the config file
func (p *policyFlags) timezoneFor(cmd *cobra.Command) string {
	return stringFlag(cmd.Flags(), "tz", p.timezone, cfg.Convert.Timezone)
}

// policyFor layers explicitly set flags over the configured policy
func (p *policyFlags) policyFor(cmd *cobra.Command) (internal.Policy, error) {
	policy := cfg.Convert.Policy
	flags := cmd.Flags()
	if flags.Changed("detection") {
		d, err := internal.ParseDetection(p.detection)
		if err != nil {
			return policy, err
		}
		policy.Detection = d
	}
	if flags.Changed("cadence") {
		policy.Cadence = p.cadence
	}
	if flags.Changed("tolerance") {
		policy.Tolerance = p.tolerance
	}
	if flags.Changed("shift-step") {
		policy.ShiftStep = p.shiftStep
	}
	if flags.Changed("max-shift") {
		policy.MaxShift = p.maxShift
	}
	if flags.Changed("zone-hint") {
		policy.Hints = make([]internal.ZoneHint, 0, len(p.zoneHints))
		for _, s := range p.zoneHints {
			h, err := internal.ParseZoneHint(s)
			if err != nil {
				return policy, err
			}
			policy.Hints = append(policy.Hints, h)
		}
	}
	return policy, nil
}

func (p *policyFlags) converter(cmd *cobra.Command) (*internal.Converter, error) {
	policy, err := p.policyFor(cmd)
	if err != nil {
		return nil, err
	}
	return internal.NewConverter(p.timezoneFor(cmd), policy)
}

// stringFlag prefers an explicitly set flag, then the config value, then the
// flag default
func stringFlag(flags *pflag.FlagSet, name, value, configured string) string {
	if flags.Changed(name) || configured == "" {
		return value
	}
	return configured
}

// boolFlag prefers an explicitly set flag over the config value
func boolFlag(flags *pflag.FlagSet, name string, value, configured bool) bool {
	if flags.Changed(name) {
		return value
	}
	return configured
}

// hintOnUnresolvable suggests a zone hint when err is an unresolvable clock
// change
func hintOnUnresolvable(err error) {
	var tzErr *internal.UnresolvableTimezoneError
	if !errors.As(err, &tzErr) {
		return
	}
	before := internal.FormatTimestamp(tzErr.Before)
	internal.PrintWarning(fmt.Sprintf("Pin the zone of readings up to %s with --zone-hint '..%s=ZONE', or try a different --shift-step or --tolerance",
		before, strings.Replace(before, " ", "T", 1)))
}
