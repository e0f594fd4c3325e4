package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/dexcom-tools/internal"
)

// JSONExporter writes the records as one pretty-printed JSON array
type JSONExporter struct{}

// Export exports the records to JSON format
func (e *JSONExporter) Export(conv *internal.Conversion, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	records := conv.Records
	if records == nil {
		records = []internal.Record{}
	}
	return enc.Encode(records)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
