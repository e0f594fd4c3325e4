package internal

import (
	"io"
	"log"
	"os"
)

// LogLevel orders diagnostic output from fatal problems to scan details
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = LogLevelInfo
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLogLevel drops every message above level
func SetLogLevel(level LogLevel) {
	logLevel = level
}

// SetVerbose shows per-row and per-boundary details, as --verbose does
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput sends diagnostics to w instead of stderr
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

func logf(level LogLevel, prefix, format string, args ...interface{}) {
	if logLevel >= level {
		logger.Printf(prefix+format, args...)
	}
}

// LogError reports a failure the command cannot recover from
func LogError(format string, args ...interface{}) {
	logf(LogLevelError, "[ERROR] ", format, args...)
}

// LogWarn reports skipped input
func LogWarn(format string, args ...interface{}) {
	logf(LogLevelWarn, "[WARN] ", format, args...)
}

// LogInfo reports detected clock changes and conversion totals
func LogInfo(format string, args ...interface{}) {
	logf(LogLevelInfo, "[INFO] ", format, args...)
}

// LogDebug reports per-row detail
func LogDebug(format string, args ...interface{}) {
	logf(LogLevelDebug, "[DEBUG] ", format, args...)
}
