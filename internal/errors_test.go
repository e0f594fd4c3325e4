package internal

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFileError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &FileError{
		Path: "/exports/dexcom.csv",
		Op:   "read",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "file error") {
		t.Errorf("FileError.Error() should contain 'file error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/exports/dexcom.csv") {
		t.Errorf("FileError.Error() should contain path, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("FileError.Unwrap() should return original error")
	}
}

func TestParseError(t *testing.T) {
	originalErr := errors.New("invalid timestamp")
	err := &ParseError{
		Source: "a.csv",
		Line:   12,
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "parse error") {
		t.Errorf("ParseError.Error() should contain 'parse error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "line 12") {
		t.Errorf("ParseError.Error() should contain the line, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ParseError.Unwrap() should return original error")
	}
}

func TestEmptyInputError(t *testing.T) {
	var err error = &EmptyInputError{Files: []string{"a.csv", "b.csv"}, Skipped: 3}

	var empty *EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatal("errors.As should match *EmptyInputError")
	}
	if !strings.Contains(err.Error(), "2 file(s)") || !strings.Contains(err.Error(), "3 row(s)") {
		t.Errorf("EmptyInputError.Error() = %q, want file and row counts", err.Error())
	}
}

func TestUnresolvableTimezoneError(t *testing.T) {
	before := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	err := &UnresolvableTimezoneError{
		Index:     41,
		Before:    before,
		After:     before.Add(42 * time.Minute),
		Deviation: 37 * time.Minute,
	}

	errorMsg := err.Error()
	for _, want := range []string{"reading 41", "2014-03-01 10:00:00", "2014-03-01 10:42:00", "37m0s"} {
		if !strings.Contains(errorMsg, want) {
			t.Errorf("UnresolvableTimezoneError.Error() should contain %q, got: %q", want, errorMsg)
		}
	}

	err.Source = "export.txt"
	err.Line = 52
	errorMsg = err.Error()
	if !strings.Contains(errorMsg, "export.txt line 52") || strings.Contains(errorMsg, "reading 41") {
		t.Errorf("UnresolvableTimezoneError.Error() = %q, want the file line instead of the index", errorMsg)
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/file.jsonl",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
