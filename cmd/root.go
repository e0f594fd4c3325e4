package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/dexcom-tools/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is loaded before every subcommand runs
	cfg = internal.DefaultConfig()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dexcom",
	Short: "Merge Dexcom CGM exports and convert them to zone-aware JSON",
	Long: `A small CLI for working with the tab or comma separated exports written by
Dexcom Studio.

Features:
  • Merge any number of exports into one deduplicated, sorted file
  • Convert an export to JSON with time zone qualified timestamps
  • Detect where the receiver clock was changed (travel, daylight saving)
  • Inspect exports for layout, receiver serial and reading counts

Quick Start:
  dexcom merge --path ~/Downloads/dexcom       # Merge every export in a folder
  dexcom segments merged-dexcom.csv --tz America/New_York
  dexcom convert merged-dexcom.csv --tz America/New_York -o readings.json

Defaults can be set in ~/` + internal.DefaultConfigName + ` (see --config).`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/"+internal.DefaultConfigName+")")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
