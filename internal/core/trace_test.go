package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlquery/internal/logger"
)

type recordingLogger struct {
	logger.NoopLogger
	msgs []string
	args [][]any
}

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.msgs = append(l.msgs, msg)
	l.args = append(l.args, args)
}

func (l *recordingLogger) field(i int, key string) (string, bool) {
	args := l.args[i]
	for j := 0; j+1 < len(args); j += 2 {
		if args[j] == key {
			return fmt.Sprint(args[j+1]), true
		}
	}
	return "", false
}

func TestLogTrace(t *testing.T) {
	rec := &recordingLogger{}
	trace := NewLogTrace(rec, nil)

	trace.Trace(context.Background(), "Select * From users Where id={:id}", Params{"id": 7}, "Select * From users Where id=7")

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "executing query", rec.msgs[0])
	params, _ := rec.field(0, "params")
	assert.Equal(t, "{id=7}", params)
	debug, ok := rec.field(0, "debug_sql")
	assert.True(t, ok)
	assert.Equal(t, "Select * From users Where id=7", debug)
}

func TestLogTrace_MasksSensitive(t *testing.T) {
	rec := &recordingLogger{}
	trace := NewLogTrace(rec, logger.NewSanitizer(nil))

	trace.Trace(context.Background(), "Where password={:password}", Params{"password": "hunter2"}, "Where password='hunter2'")

	require.Len(t, rec.msgs, 1)
	params, _ := rec.field(0, "params")
	assert.NotContains(t, params, "hunter2")
	_, ok := rec.field(0, "debug_sql")
	assert.False(t, ok)
}

func TestTraceLoggerFunc(t *testing.T) {
	var got string
	f := TraceLoggerFunc(func(_ context.Context, sql string, _ Params, _ string) { got = sql })
	f.Trace(context.Background(), "Select 1", nil, "")
	assert.Equal(t, "Select 1", got)
}
