package internal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// MergeOptions controls the merged output
type MergeOptions struct {
	Layout           Layout
	Delimiter        rune
	DeviceGeneration bool
	Serial           bool
}

// Extras returns the trailing columns written for these options
func (o MergeOptions) Extras() []string {
	return ExtraColumns(o.DeviceGeneration, o.Serial)
}

// FileSummary describes what one input contributed to a merge
type FileSummary struct {
	Path       string     `json:"path" yaml:"path"`
	Layout     Layout     `json:"layout" yaml:"layout"`
	Serial     string     `json:"serial,omitempty" yaml:"serial,omitempty"`
	Generation Generation `json:"generation" yaml:"generation"`
	Readings   int        `json:"readings" yaml:"readings"`
	Added      int        `json:"added" yaml:"added"`
	Duplicates int        `json:"duplicates" yaml:"duplicates"`
	Skipped    int        `json:"skipped" yaml:"skipped"`
}

// MergeResult is the deduplicated, time-ordered union of the inputs
type MergeResult struct {
	Files       []FileSummary
	Ignored     []string // inputs whose header is not a known layout
	Readings    []*Reading
	Duplicates  int
	Skipped     int
	ParseErrors []*ParseError
}

// Merger combines export files into one deduplicated set
type Merger struct {
	opts MergeOptions
}

// NewMerger creates a new Merger
func NewMerger(opts MergeOptions) *Merger {
	if opts.Layout == "" {
		opts.Layout = LayoutFull
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	return &Merger{opts: opts}
}

// Options returns the effective merge options
func (m *Merger) Options() MergeOptions {
	return m.opts
}

// Merge reads every path and merges their readings. Files with an
// unrecognized header are skipped with a warning.
func (m *Merger) Merge(paths []string) (*MergeResult, error) {
	files := make([]*ExportFile, 0, len(paths))
	result := &MergeResult{}
	for _, path := range paths {
		f, err := ReadExportFile(path)
		if err != nil {
			var fe *FileError
			if errors.As(err, &fe) && fe.Op == "parse" {
				LogWarn("This file doesn't look like a Dexcom export, skipping it: %s (%v)", path, fe.Err)
				result.Ignored = append(result.Ignored, path)
				continue
			}
			return nil, err
		}
		files = append(files, f)
	}
	m.mergeFiles(files, result)

	if len(result.Readings) == 0 {
		return nil, &EmptyInputError{Files: paths, Skipped: result.Skipped}
	}
	return result, nil
}

// MergeFiles merges already parsed export files
func (m *Merger) MergeFiles(files []*ExportFile) (*MergeResult, error) {
	result := &MergeResult{}
	m.mergeFiles(files, result)
	if len(result.Readings) == 0 {
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		return nil, &EmptyInputError{Files: paths, Skipped: result.Skipped}
	}
	return result, nil
}

func (m *Merger) mergeFiles(files []*ExportFile, result *MergeResult) {
	dedup := NewDeduplicator()
	for _, f := range files {
		added, dups := dedup.Add(f.Readings)
		result.Files = append(result.Files, FileSummary{
			Path:       f.Path,
			Layout:     f.Layout,
			Serial:     f.Serial,
			Generation: f.Generation,
			Readings:   len(f.Readings),
			Added:      added,
			Duplicates: dups,
			Skipped:    f.Skipped,
		})
		result.Duplicates += dups
		result.Skipped += f.Skipped
		result.ParseErrors = append(result.ParseErrors, f.Errors...)

		LogInfo("%d readings in %s", len(f.Readings), f.Path)
		LogInfo("%d items in merged set", dedup.Len())
		if dups > 0 {
			LogInfo("%d duplicate records in this file", dups)
		}
		if f.Skipped > 0 {
			LogWarn("%d malformed row(s) skipped in %s", f.Skipped, f.Path)
		}
	}
	result.Readings = dedup.Sorted()
}

// Write renders the merged readings in the configured layout. It returns the
// number of rows written and the number of readings the layout cannot hold.
func (m *Merger) Write(w io.Writer, result *MergeResult) (written, dropped int, err error) {
	extras := m.opts.Extras()
	wrtr := csv.NewWriter(w)
	wrtr.Comma = m.opts.Delimiter

	if err := wrtr.Write(m.opts.Layout.Header(extras)); err != nil {
		return 0, 0, fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range result.Readings {
		row, ok := m.opts.Layout.FormatRow(r, extras)
		if !ok {
			dropped++
			continue
		}
		if err := wrtr.Write(row); err != nil {
			return written, dropped, fmt.Errorf("failed to write record %d: %w", written, err)
		}
		written++
	}
	wrtr.Flush()
	if err := wrtr.Error(); err != nil {
		return written, dropped, err
	}
	return written, dropped, nil
}
