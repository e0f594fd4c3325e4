package internal

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestLogFiltering(t *testing.T) {
	originalLevel := logLevel
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer func() {
		logLevel = originalLevel
		SetLogOutput(os.Stderr)
	}()

	SetLogLevel(LogLevelWarn)
	LogError("bad row")
	LogWarn("odd header")
	LogInfo("merged")
	LogDebug("details")

	out := buf.String()
	for _, want := range []string{"[ERROR] bad row", "[WARN] odd header"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q, got %q", want, out)
		}
	}
	for _, unwanted := range []string{"[INFO]", "[DEBUG]"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("log output should not contain %q at warn level, got %q", unwanted, out)
		}
	}
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}
