package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/dexcom-tools/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	conv := internal.CreateTestConversion()
	var buf bytes.Buffer

	if err := (&YAMLExporter{}).Export(conv, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"reference: America/New_York",
		"timezone: UTC-06:00",
		"reason: clock change",
		"timezone_aware_time:",
		"2014-01-10T09:00:00-06:00",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Export() output missing %q\n%s", want, output)
		}
	}

	var decoded internal.Conversion
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Export() produced invalid YAML: %v", err)
	}
	if len(decoded.Segments) != 2 || len(decoded.Records) != 2 {
		t.Errorf("decoded %d segments, %d records, want 2, 2", len(decoded.Segments), len(decoded.Records))
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if ext := (&YAMLExporter{}).Extension(); ext != "yaml" {
		t.Errorf("Extension() = %v, want yaml", ext)
	}
}
