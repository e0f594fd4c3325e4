package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/dexcom-tools/internal"
	"github.com/spf13/cobra"
)

// defaultCheckZone is resolved when no zone is configured
const defaultCheckZone = "America/New_York"

var healthcheckPath string

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that dexcom can convert exports on this machine",
	Long: `Check the health of dexcom by verifying:
  • The config file loads
  • The segmentation policy is consistent
  • The time zone database can resolve the configured zone
  • Which exports under --path are recognized

This command is useful when conversions fail with unknown time zones, which
usually means the system has no tzdata installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		pass := func(msg string) { _, _ = fmt.Fprintln(out, successStyle.Render("✅ "+msg)) }
		warn := func(msg string) { _, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  "+msg)) }
		fail := func(msg string, err error) {
			failed++
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ "+msg+":"), err)
		}
		step := func(msg string) { _, _ = fmt.Fprintln(out, infoStyle.Render(msg)) }

		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Dexcom Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: config was loaded by the root command; report where from
		step("Step 1: Loading configuration...")
		source := configPath
		if source == "" {
			if p, err := internal.DefaultConfigPath(); err == nil {
				source = p + " (optional)"
			}
		}
		pass("Configuration loaded")
		if verbose {
			_, _ = fmt.Fprintf(out, "   File: %s\n", source)
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: policy
		step("Step 2: Validating segmentation policy...")
		policy := cfg.Convert.Policy
		if err := policy.Validate(); err != nil {
			fail("Invalid policy", err)
		} else {
			pass(fmt.Sprintf("Policy valid: %s detection, %s cadence, %s steps up to %s",
				policy.Detection, policy.Cadence, policy.ShiftStep, policy.MaxShift))
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: time zone database
		step("Step 3: Resolving time zone...")
		zone := cfg.Convert.Timezone
		if zone == "" {
			zone = defaultCheckZone
		}
		if loc, err := time.LoadLocation(zone); err != nil {
			fail("Cannot load time zone "+zone, err)
		} else {
			name, offset := time.Now().In(loc).Zone()
			pass(fmt.Sprintf("Time zone %s resolves (currently %s, UTC%+.1fh)", zone, name, float64(offset)/3600))
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: exports
		dir := stringFlag(cmd.Flags(), "path", healthcheckPath, cfg.Merge.Path)
		if dir == "" {
			dir = "."
		}
		step(fmt.Sprintf("Step 4: Scanning %s for exports...", dir))
		recognized := 0
		files, err := internal.FindExportFiles(dir)
		if err != nil {
			warn(fmt.Sprintf("Cannot scan %s: %v", dir, err))
		} else {
			for _, path := range files {
				report, err := inspectFile(path)
				if err != nil || !report.Recognized {
					if verbose {
						_, _ = fmt.Fprintf(out, "   skip %s\n", path)
					}
					continue
				}
				recognized++
				if verbose {
					_, _ = fmt.Fprintf(out, "   %s: %s, %d sensor reading(s)\n", path, report.Layout, report.Sensor)
				}
			}
			if recognized > 0 {
				pass(fmt.Sprintf("Found %d Dexcom export(s) among %d candidate file(s)", recognized, len(files)))
			} else {
				warn(fmt.Sprintf("No Dexcom exports among %d candidate file(s)", len(files)))
			}
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)
		if failed > 0 {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: %d check(s) failed", failed)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().StringVar(&healthcheckPath, "path", "", "Directory to scan for exports (default: current directory)")
}
