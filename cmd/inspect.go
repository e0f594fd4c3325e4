package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iksnae/dexcom-tools/internal"
	"github.com/spf13/cobra"
)

var (
	inspectPath       string
	inspectFormat     string
	inspectSampleRows int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [files...]",
	Short: "Inspect the layout and contents of Dexcom exports",
	Long: `Inspect Dexcom exports without changing them.

This command reports for each file:
  • Detected layout (full or terse) and delimiter
  • Receiver serial number and device generation
  • Reading counts per type and malformed rows
  • The first and last display time

Examples:
  dexcom inspect export.txt
  dexcom inspect --path ~/Downloads/dexcom --format json
  dexcom inspect export.txt --sample 5          # also print the first 5 readings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectFormat != "text" && inspectFormat != "json" {
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}
		paths, err := internal.ResolveInputs(args, stringFlag(cmd.Flags(), "path", inspectPath, cfg.Merge.Path))
		if err != nil {
			return err
		}

		reports := make([]fileReport, 0, len(paths))
		for _, path := range paths {
			report, err := inspectFile(path)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}

		out := cmd.OutOrStdout()
		if inspectFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		}
		for _, r := range reports {
			printReport(out, r)
		}
		return nil
	},
}

type fileReport struct {
	Path         string              `json:"path"`
	Recognized   bool                `json:"recognized"`
	Problem      string              `json:"problem,omitempty"`
	Layout       internal.Layout     `json:"layout,omitempty"`
	Delimiter    string              `json:"delimiter,omitempty"`
	ExtraColumns []string            `json:"extraColumns,omitempty"`
	Serial       string              `json:"serial,omitempty"`
	Generation   internal.Generation `json:"generation,omitempty"`
	Sensor       int                 `json:"sensor"`
	Calibration  int                 `json:"calibration"`
	Event        int                 `json:"event"`
	Skipped      int                 `json:"skipped"`
	First        string              `json:"first,omitempty"`
	Last         string              `json:"last,omitempty"`
	Sample       []*internal.Reading `json:"-"`
}

// inspectFile reports on one export. Unrecognized files are reported rather
// than failing the whole run; unreadable files are an error.
func inspectFile(path string) (fileReport, error) {
	report := fileReport{Path: path}
	f, err := internal.ReadExportFile(path)
	if err != nil {
		var fe *internal.FileError
		if errors.As(err, &fe) && fe.Op == "parse" {
			report.Problem = fe.Err.Error()
			return report, nil
		}
		return report, err
	}

	report.Recognized = true
	report.Layout = f.Layout
	report.Delimiter = delimiterName(f.Delimiter)
	report.ExtraColumns = f.Extras
	report.Serial = f.Serial
	report.Generation = f.Generation
	counts := f.Counts()
	report.Sensor = counts[internal.ReadingSensor]
	report.Calibration = counts[internal.ReadingCalibration]
	report.Event = counts[internal.ReadingEvent]
	report.Skipped = f.Skipped

	if len(f.Readings) > 0 {
		sorted := append([]*internal.Reading(nil), f.Readings...)
		internal.SortReadings(sorted)
		report.First = internal.FormatTimestamp(sorted[0].DisplayTime)
		report.Last = internal.FormatTimestamp(sorted[len(sorted)-1].DisplayTime)
		n := inspectSampleRows
		if n > len(sorted) {
			n = len(sorted)
		}
		if n > 0 {
			report.Sample = sorted[:n]
		}
	}
	return report, nil
}

func printReport(out io.Writer, r fileReport) {
	_, _ = fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	_, _ = fmt.Fprintf(out, "%s\n", titleStyle.Render(r.Path))
	_, _ = fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	if !r.Recognized {
		_, _ = fmt.Fprintf(out, "⚠️  Not a Dexcom export: %s\n\n", r.Problem)
		return
	}

	_, _ = fmt.Fprintf(out, "  Layout:      %s (%s separated)\n", r.Layout, r.Delimiter)
	if len(r.ExtraColumns) > 0 {
		_, _ = fmt.Fprintf(out, "  Extra:       %v\n", r.ExtraColumns)
	}
	serial := r.Serial
	if serial == "" {
		serial = "-"
	}
	_, _ = fmt.Fprintf(out, "  Receiver:    %s (%s)\n", serial, r.Generation)
	_, _ = fmt.Fprintf(out, "  Readings:    %s sensor, %s calibration, %s event\n",
		countStyle.Render(fmt.Sprint(r.Sensor)), countStyle.Render(fmt.Sprint(r.Calibration)), countStyle.Render(fmt.Sprint(r.Event)))
	if r.Skipped > 0 {
		_, _ = fmt.Fprintf(out, "  Skipped:     %d malformed row(s)\n", r.Skipped)
	}
	if r.First != "" {
		_, _ = fmt.Fprintf(out, "  Display:     %s → %s\n", dateStyle.Render(r.First), dateStyle.Render(r.Last))
	}

	if len(r.Sample) > 0 {
		_, _ = fmt.Fprintf(out, "\n  Sample (%d reading(s)):\n", len(r.Sample))
		for _, reading := range r.Sample {
			value := reading.Value
			if reading.Type == internal.ReadingEvent {
				value = reading.EventType
			}
			_, _ = fmt.Fprintf(out, "  • %s  %-11s %s\n", internal.FormatTimestamp(reading.DisplayTime), reading.Type, value)
		}
	}
	_, _ = fmt.Fprintln(out)
}

func delimiterName(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ',':
		return "comma"
	default:
		return string(r)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectPath, "path", "", "Directory to search for exports")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 0, "Number of readings to print per file")
}
