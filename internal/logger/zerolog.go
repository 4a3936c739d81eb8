package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologAdapter wraps a zerolog.Logger to implement the Logger interface.
// Key-value pairs become event fields.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new adapter around logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewZerolog builds a zerolog logger writing JSON to w at the given level
// ("debug", "info", ...). An unknown level falls back to info; a nil writer
// uses stderr.
func NewZerolog(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func (a *ZerologAdapter) log(level zerolog.Level, msg string, args []any) {
	event := a.logger.WithLevel(level)
	if event == nil {
		return
	}
	if len(args) > 0 {
		event = event.Fields(args)
	}
	event.Msg(msg)
}

// Debug logs a debug-level message.
func (a *ZerologAdapter) Debug(msg string, args ...any) {
	a.log(zerolog.DebugLevel, msg, args)
}

// Info logs an info-level message.
func (a *ZerologAdapter) Info(msg string, args ...any) {
	a.log(zerolog.InfoLevel, msg, args)
}

// Warn logs a warning-level message.
func (a *ZerologAdapter) Warn(msg string, args ...any) {
	a.log(zerolog.WarnLevel, msg, args)
}

// Error logs an error-level message.
func (a *ZerologAdapter) Error(msg string, args ...any) {
	a.log(zerolog.ErrorLevel, msg, args)
}
