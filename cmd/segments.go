package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/dexcom-tools/internal"
	"github.com/spf13/cobra"
)

var segmentsPolicy policyFlags

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	zoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var segmentsCmd = &cobra.Command{
	Use:   "segments FILE",
	Short: "Show the time zone segments inferred for an export",
	Long: `Show where the receiver clock was changed and which zone each stretch of
readings is assigned, without writing any output file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		converter, err := segmentsPolicy.converter(cmd)
		if err != nil {
			return err
		}

		conv, err := converter.ConvertFile(args[0])
		if err != nil {
			hintOnUnresolvable(err)
			return err
		}

		displaySegments(cmd.OutOrStdout(), conv)
		return nil
	},
}

func displaySegments(out io.Writer, conv *internal.Conversion) {
	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d segment(s) in %s", len(conv.Segments), conv.Source)))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("#")+"\t"+titleStyle.Render("From")+"\t"+titleStyle.Render("To")+"\t"+
		titleStyle.Render("Readings")+"\t"+titleStyle.Render("Zone")+"\t"+titleStyle.Render("Offset")+"\t"+titleStyle.Render("Reason")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for i, seg := range conv.Segments {
		reason := seg.Reason
		if seg.Shift != 0 {
			reason = fmt.Sprintf("%s (%+.1fh)", reason, seg.Shift.Hours())
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			strconv.Itoa(i),
			dateStyle.Render(seg.From),
			dateStyle.Render(seg.To),
			countStyle.Render(strconv.Itoa(seg.Len())),
			zoneStyle.Render(seg.ZoneName),
			seg.UTCOffset,
			reason)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Reference zone %s applies to the most recent reading; %d row(s) skipped, %d event(s) ignored",
		conv.Reference, conv.Skipped, conv.Ignored)))
}

func init() {
	rootCmd.AddCommand(segmentsCmd)
	segmentsPolicy.register(segmentsCmd)
}
