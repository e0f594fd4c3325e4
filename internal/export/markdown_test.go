package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/dexcom-tools/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name string
		conv *internal.Conversion
		want []string
	}{
		{
			name: "two segments",
			conv: internal.CreateTestConversion(),
			want: []string{
				"# Dexcom export export.csv",
				"**Reference zone:** America/New_York",
				"**Records:** 2",
				"**Skipped rows:** 1",
				"**Ignored events:** 2",
				"| 0 | 2014-01-10 09:00:00 | 2014-01-10 09:00:00 | 1 | UTC-06:00 | -06:00 | clock change |",
				"| 1 | 2014-01-10 11:05:00 | 2014-01-10 11:05:00 | 1 | America/New_York | -05:00 | reference zone |",
				"- cbg (sensor): 1",
				"- smbg (calibration): 1",
			},
		},
		{
			name: "escapes source name",
			conv: &internal.Conversion{Source: "my_export*.csv", Reference: "UTC"},
			want: []string{
				"# Dexcom export my\\_export\\*.csv",
				"- cbg (sensor): 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.conv, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("Export() output missing %q\n%s", want, output)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain.csv", "plain.csv"},
		{"a|b", "a\\|b"},
		{"**bold**", "\\*\\*bold\\*\\*"},
		{"snake_case", "snake\\_case"},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
