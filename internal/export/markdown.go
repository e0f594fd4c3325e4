package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/dexcom-tools/internal"
)

// MarkdownExporter writes a human readable summary: one table row per time
// zone segment, followed by the per-type record counts
type MarkdownExporter struct{}

// Export exports a conversion to Markdown format
func (e *MarkdownExporter) Export(conv *internal.Conversion, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Dexcom export %s\n\n", escapeMarkdown(conv.Source))
	_, _ = fmt.Fprintf(w, "**Reference zone:** %s  \n", conv.Reference)
	_, _ = fmt.Fprintf(w, "**Records:** %d  \n", len(conv.Records))
	_, _ = fmt.Fprintf(w, "**Skipped rows:** %d  \n", conv.Skipped)
	_, _ = fmt.Fprintf(w, "**Ignored events:** %d\n\n", conv.Ignored)

	_, _ = fmt.Fprintf(w, "## Time zone segments\n\n")
	_, _ = fmt.Fprintf(w, "| # | From | To | Readings | Zone | UTC offset | Reason |\n")
	_, _ = fmt.Fprintf(w, "|---|------|----|----------|------|------------|--------|\n")
	for i, seg := range conv.Segments {
		_, _ = fmt.Fprintf(w, "| %d | %s | %s | %d | %s | %s | %s |\n",
			i, seg.From, seg.To, seg.Len(), seg.ZoneName, seg.UTCOffset, seg.Reason)
	}

	cbg, smbg := 0, 0
	for _, rec := range conv.Records {
		if rec.Type == "smbg" {
			smbg++
		} else {
			cbg++
		}
	}
	_, _ = fmt.Fprintf(w, "\n## Readings\n\n")
	_, _ = fmt.Fprintf(w, "- cbg (sensor): %d\n", cbg)
	_, _ = fmt.Fprintf(w, "- smbg (calibration): %d\n", smbg)

	return nil
}

// escapeMarkdown escapes characters that would break a heading or table cell
func escapeMarkdown(text string) string {
	r := strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_")
	return r.Replace(text)
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
