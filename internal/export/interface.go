package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/dexcom-tools/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(conv *internal.Conversion, w io.Writer) error
	Extension() string
}

// Formats lists the supported format names
var Formats = []string{"json", "jsonl", "yaml", "md"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}
