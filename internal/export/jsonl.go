package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/dexcom-tools/internal"
)

// JSONLExporter exports records in JSONL format (one record per line)
type JSONLExporter struct{}

// Export exports the records to JSONL format
func (e *JSONLExporter) Export(conv *internal.Conversion, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i := range conv.Records {
		if err := enc.Encode(&conv.Records[i]); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", conv.Records[i].ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
