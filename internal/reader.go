package internal

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// SniffDelimiter returns tab if the first line contains one, otherwise comma
func SniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.IndexByte(line, '\t') >= 0 {
		return '\t'
	}
	return ','
}

// ReadExportFile reads and parses an export file from disk
func ReadExportFile(path string) (*ExportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}
	return ParseExport(path, data)
}

// ParseExport parses export content. Malformed rows are skipped and recorded
// on the returned file; an unrecognized header is an error.
func ParseExport(path string, data []byte) (*ExportFile, error) {
	delim := SniffDelimiter(data)
	rdr := csv.NewReader(bytes.NewReader(data))
	rdr.Comma = delim
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	header, err := rdr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FileError{Path: path, Op: "parse", Err: errors.New("file is empty")}
		}
		return nil, &FileError{Path: path, Op: "parse", Err: fmt.Errorf("failed to read header: %w", err)}
	}

	layout, extras, err := DetectLayout(header)
	if err != nil {
		return nil, &FileError{Path: path, Op: "parse", Err: err}
	}

	file := &ExportFile{
		Path:      path,
		Layout:    layout,
		Delimiter: delim,
		Extras:    extras,
	}

	line := 1
	for {
		row, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.StartLine
			} else {
				line++
			}
			file.skip(&ParseError{Source: path, Line: line, Err: err})
			continue
		}
		line, _ = rdr.FieldPos(0)
		if isBlankRow(row) {
			continue
		}
		if layout == LayoutFull && len(row) > 1 && row[0] == ColumnSerialNumber {
			file.Serial = row[1]
		}

		readings, err := layout.ParseRow(row, extras)
		if err != nil {
			file.skip(&ParseError{Source: path, Line: line, Err: err})
			continue
		}
		for _, r := range readings {
			r.Index = line
			r.Source = path
			file.Readings = append(file.Readings, r)
		}
	}

	file.Generation = GenerationFromSerial(file.Serial)
	for _, r := range file.Readings {
		if r.Serial == "" {
			r.Serial = file.Serial
		}
		if r.Generation == "" {
			r.Generation = GenerationFromSerial(r.Serial)
		}
	}

	LogDebug("%s: %s layout, %d reading(s), %d row(s) skipped", path, layout, len(file.Readings), file.Skipped)
	return file, nil
}

func (f *ExportFile) skip(err *ParseError) {
	f.Skipped++
	f.Errors = append(f.Errors, err)
	LogDebug("Skipping row: %v", err)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
