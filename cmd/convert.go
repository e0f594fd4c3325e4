package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iksnae/dexcom-tools/internal"
	"github.com/iksnae/dexcom-tools/internal/export"
	"github.com/spf13/cobra"
)

var (
	convertFormat string
	convertOutput string
	convertPolicy policyFlags
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Convert an export to zone-aware JSON",
	Long: `Convert a Dexcom export to records with time zone qualified timestamps.

--tz names the zone the receiver clock was set to at the most recent reading.
Earlier clock changes (travel, daylight saving) are detected from the readings
and each stretch between changes is assigned its own zone. Use
'dexcom segments' to review the detected changes first.

Formats: json (array of records), jsonl, yaml (records and segments),
md (segment summary).

Examples:
  dexcom convert merged-dexcom.csv --tz America/New_York
  dexcom convert export.txt --tz Europe/Berlin -f yaml -o -
  dexcom convert export.txt --tz America/Denver --detection cadence
  dexcom convert export.txt --tz UTC --zone-hint serial:SM40123456=America/Chicago`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		format := stringFlag(cmd.Flags(), "format", convertFormat, cfg.Convert.Format)
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		converter, err := convertPolicy.converter(cmd)
		if err != nil {
			return err
		}

		output := stringFlag(cmd.Flags(), "output", convertOutput, cfg.Convert.Output)
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + exporter.Extension()
		}
		if filepath.Clean(output) == filepath.Clean(input) {
			return fmt.Errorf("output %s would overwrite the input file", output)
		}

		var conv *internal.Conversion
		ctx := context.Background()
		err = internal.ShowProgress(ctx, fmt.Sprintf("Converting %s", input), func() error {
			var convErr error
			conv, convErr = converter.ConvertFile(input)
			return convErr
		})
		if err != nil {
			hintOnUnresolvable(err)
			return err
		}

		write := func(w io.Writer) error {
			if err := exporter.Export(conv, w); err != nil {
				return &internal.ExportError{Format: format, Path: output, Err: err}
			}
			return nil
		}
		if output == "-" {
			return write(cmd.OutOrStdout())
		}
		if err := internal.WriteFileAtomic(output, write); err != nil {
			return err
		}

		if conv.Skipped > 0 {
			internal.PrintWarning(fmt.Sprintf("Skipped %d row(s) that could not be parsed", conv.Skipped))
		}
		if n := len(conv.Segments); n > 1 {
			internal.PrintWarning(fmt.Sprintf("Found %d clock change(s); see 'dexcom segments %s --tz %s'", n-1, input, conv.Reference))
		}
		internal.PrintSuccess(fmt.Sprintf("Converted %d reading(s) to %s", len(conv.Records), output))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "json", "Output format ("+strings.Join(export.Formats, ", ")+")")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file, or - for stdout (default: input name with the format's extension)")
	convertPolicy.register(convertCmd)
}

