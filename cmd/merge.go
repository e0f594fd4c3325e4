package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/iksnae/dexcom-tools/internal"
	"github.com/spf13/cobra"
)

var (
	mergePath      string
	mergeOutput    string
	mergeTerse     bool
	mergeCSV       bool
	mergeDeviceGen bool
	mergeSerial    bool
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge Dexcom exports into one deduplicated file",
	Long: `Merge any number of Dexcom Studio exports into one file.

Readings that appear in more than one export are written once, and the result
is sorted by receiver time. Files are given as arguments, found under --path,
or both. Without either, the current directory is searched for .csv and .txt
files. Files whose header is not a Dexcom layout are skipped with a warning.

Examples:
  dexcom merge --path ~/Downloads/dexcom
  dexcom merge jan.txt feb.txt --terse --csv -o glucose.csv
  dexcom merge --path exports --serial       # add DeviceGeneration and SerialNumber columns`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		dir := stringFlag(flags, "path", mergePath, cfg.Merge.Path)
		output := stringFlag(flags, "output", mergeOutput, cfg.Merge.Output)

		opts := internal.MergeOptions{
			Layout:           internal.LayoutFull,
			Delimiter:        '\t',
			DeviceGeneration: boolFlag(flags, "device-gen", mergeDeviceGen, cfg.Merge.DeviceGen),
			Serial:           boolFlag(flags, "serial", mergeSerial, cfg.Merge.Serial),
		}
		if boolFlag(flags, "terse", mergeTerse, cfg.Merge.Terse) {
			opts.Layout = internal.LayoutTerse
		}
		if boolFlag(flags, "csv", mergeCSV, cfg.Merge.CSV) {
			opts.Delimiter = ','
		}

		paths, err := internal.ResolveInputs(args, dir)
		if err != nil {
			return err
		}

		merger := internal.NewMerger(opts)
		var result *internal.MergeResult
		var written, dropped int

		ctx := context.Background()
		steps := []internal.ProgressStep{
			{
				Message: fmt.Sprintf("Reading %d export file(s)", len(paths)),
				Fn: func() error {
					var mergeErr error
					result, mergeErr = merger.Merge(paths)
					return mergeErr
				},
			},
			{
				Message: fmt.Sprintf("Writing %s", output),
				Fn: func() error {
					return internal.WriteFileAtomic(output, func(w io.Writer) error {
						var writeErr error
						written, dropped, writeErr = merger.Write(w, result)
						return writeErr
					})
				},
			},
		}
		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		for _, path := range result.Ignored {
			internal.PrintWarning(fmt.Sprintf("Skipped %s: not a Dexcom export", path))
		}
		if result.Skipped > 0 {
			internal.PrintWarning(fmt.Sprintf("Skipped %d malformed row(s); run with --verbose for details", result.Skipped))
		}
		if dropped > 0 {
			internal.PrintWarning(fmt.Sprintf("%d event reading(s) not written: the terse layout has no event columns", dropped))
		}
		internal.PrintSuccess(fmt.Sprintf("Merged %d reading(s) from %d file(s) into %s (%d duplicate(s) removed)",
			written, len(result.Files), output, result.Duplicates))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergePath, "path", "", "Directory to search for exports")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged-dexcom.csv", "Output file")
	mergeCmd.Flags().BoolVar(&mergeTerse, "terse", false, "Write the six column glucose and meter layout")
	mergeCmd.Flags().BoolVar(&mergeCSV, "csv", false, "Separate columns with commas instead of tabs")
	mergeCmd.Flags().BoolVar(&mergeDeviceGen, "device-gen", false, "Add a DeviceGeneration column")
	mergeCmd.Flags().BoolVar(&mergeSerial, "serial", false, "Add DeviceGeneration and SerialNumber columns")
}
