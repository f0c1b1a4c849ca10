// Package logging builds the zap loggers used across biblio. Components take
// a named *zap.SugaredLogger; binaries configure the global logger once at
// startup from BIBLIO_LOG_LEVEL / BIBLIO_LOG_FORMAT or their config file.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a textual log level (DEBUG, INFO, WARN, ERROR).
type Level string

// Format selects the encoder.
type Format string

const (
	DebugLevel Level = "DEBUG"
	InfoLevel  Level = "INFO"
	WarnLevel  Level = "WARN"
	ErrorLevel Level = "ERROR"

	// FormatConsole is the human-readable encoder.
	FormatConsole Format = "CONSOLE"
	// FormatJSON is the structured encoder.
	FormatJSON Format = "JSON"
)

// Environment variables read by Initialize.
const (
	EnvLevel  = "BIBLIO_LOG_LEVEL"
	EnvFormat = "BIBLIO_LOG_FORMAT"
)

var initOnce sync.Once

// parseLevel converts a textual level to zapcore.Level, defaulting to WARN so
// the CLI stays quiet unless asked.
func parseLevel(level Level) zapcore.Level {
	switch strings.ToUpper(string(level)) {
	case string(DebugLevel):
		return zapcore.DebugLevel
	case string(InfoLevel):
		return zapcore.InfoLevel
	case string(WarnLevel):
		return zapcore.WarnLevel
	case string(ErrorLevel):
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

func parseFormat(format Format) Format {
	switch Format(strings.ToUpper(string(format))) {
	case FormatJSON:
		return FormatJSON
	default:
		return FormatConsole
	}
}

// timeEncoder encodes the time as a human-readable timestamp.
func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

// New creates a zap logger writing to w with the given level and format.
func New(level Level, format Format, w io.Writer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if parseFormat(format) == FormatJSON {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(parseLevel(level)))
	return zap.New(core, zap.AddCaller())
}

// Initialize replaces the global zap logger. Later calls are no-ops.
// Empty arguments fall back to the environment, then to WARN / CONSOLE.
func Initialize(level Level, format Format) {
	initOnce.Do(func() {
		if level == "" {
			level = Level(os.Getenv(EnvLevel))
		}
		if format == "" {
			format = Format(os.Getenv(EnvFormat))
		}
		zap.ReplaceGlobals(New(level, format, os.Stderr))
	})
}

// For returns a named logger for a component.
func For(component string) *zap.SugaredLogger {
	Initialize("", "")
	return zap.S().Named(component)
}

// Sync flushes any buffered log entries.
func Sync() error {
	return zap.L().Sync()
}

// OrNop returns log, or a no-op logger when log is nil.
func OrNop(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}
