package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/tracer"
)

func TestQuery_Span(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db := openTestDB(t, WithTracing(tracer.NewOtelTracer(tp.Tracer("test"))))
	ctx := context.Background()

	q := db.Query().From("users").Where("status", clause.OpEqual, 1).OrderBy("id")
	_, err := Page[testUser](ctx, q, clause.NewPager(1, 2), nil)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2, "count and page")
	for _, span := range spans {
		assert.Equal(t, "sqlquery.select", span.Name)
		assert.Equal(t, codes.Ok, span.Status.Code)

		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range span.Attributes {
			attrs[kv.Key] = kv.Value
		}
		assert.Equal(t, "sqlite", attrs["db.system"].AsString())
		assert.Equal(t, "users", attrs["db.table"].AsString())
	}
	assert.Contains(t, spans[0].Attributes, attribute.Int("db.params_count", 1))
	assert.Contains(t, spans[1].Attributes, attribute.Int("db.params_count", 3))
}

func TestQuery_SpanRecordsError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db := openTestDB(t, WithTracing(tracer.NewOtelTracer(tp.Tracer("test"))))
	_, err := All[testUser](context.Background(), db.Query().From("missing"), nil)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}
