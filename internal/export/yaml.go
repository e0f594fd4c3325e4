package export

import (
	"io"

	"github.com/iksnae/dexcom-tools/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the whole conversion, segments included, in YAML format
type YAMLExporter struct{}

// Export exports a conversion to YAML format
func (e *YAMLExporter) Export(conv *internal.Conversion, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(conv)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
