package core

import (
	"context"

	"github.com/coregx/sqlquery/internal/logger"
)

// TraceLogger receives every statement right before it is executed.
type TraceLogger interface {
	Trace(ctx context.Context, sql string, params Params, debugSQL string)
}

// TraceLoggerFunc adapts a function to TraceLogger.
type TraceLoggerFunc func(ctx context.Context, sql string, params Params, debugSQL string)

// Trace calls f.
func (f TraceLoggerFunc) Trace(ctx context.Context, sql string, params Params, debugSQL string) {
	f(ctx, sql, params, debugSQL)
}

// logTrace writes statements to a Logger at debug level. Sensitive
// parameter values are masked; the debug SQL, which would inline them, is
// then left out.
type logTrace struct {
	logger    logger.Logger
	sanitizer *logger.Sanitizer
}

// NewLogTrace returns a TraceLogger writing to l. A nil sanitizer uses the
// default sensitive fields.
func NewLogTrace(l logger.Logger, sanitizer *logger.Sanitizer) TraceLogger {
	if l == nil {
		l = &logger.NoopLogger{}
	}
	if sanitizer == nil {
		sanitizer = logger.NewSanitizer(nil)
	}
	return &logTrace{logger: l, sanitizer: sanitizer}
}

func (t *logTrace) Trace(_ context.Context, sql string, params Params, debugSQL string) {
	masked, sensitive := t.sanitizer.MaskParams(sql, params)
	args := []any{"sql", sql, "params", t.sanitizer.FormatParams(masked)}
	if !sensitive {
		args = append(args, "debug_sql", debugSQL)
	}
	t.logger.Debug("executing query", args...)
}
