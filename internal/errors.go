package internal

import (
	"fmt"
	"time"
)

// FileError represents errors accessing export or output files
type FileError struct {
	Path string
	Op   string // "open", "read", "write", "rename"
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ParseError represents a malformed row. These are recovered by skipping the row.
type ParseError struct {
	Source string // file path
	Line   int    // 1-based line number including the header
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] line %d: %v", e.Source, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmptyInputError is returned when no valid readings were found in any input
type EmptyInputError struct {
	Files   []string
	Skipped int
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no valid readings in %d file(s) (%d row(s) skipped)", len(e.Files), e.Skipped)
}

// UnresolvableTimezoneError is returned when a clock jump does not match any
// recognized offset delta. Index points into the ascending reading sequence;
// Source and Line locate the first reading after the jump in its export file.
type UnresolvableTimezoneError struct {
	Index     int
	Source    string
	Line      int
	Before    time.Time
	After     time.Time
	Deviation time.Duration
}

func (e *UnresolvableTimezoneError) Error() string {
	where := fmt.Sprintf("reading %d", e.Index)
	if e.Line > 0 {
		where = fmt.Sprintf("%s line %d", e.Source, e.Line)
	}
	return fmt.Sprintf("unresolvable clock change at %s (%s -> %s): deviation %s matches no known offset",
		where, FormatTimestamp(e.Before), FormatTimestamp(e.After), e.Deviation)
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
