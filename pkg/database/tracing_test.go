package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func spanAttrs(s tracetest.SpanStub) map[string]string {
	attrs := make(map[string]string, len(s.Attributes))
	for _, a := range s.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	return attrs
}

func TestQueryTracer_Success(t *testing.T) {
	exporter := setupTestTracer(t)

	qt := NewQueryTracer(SystemMongo, 0, nil)
	_, end := qt.Start(context.Background(), "ListTasks", "tasks.find")
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.ListTasks", spans[0].Name)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "mongodb", attrs["db.system"])
	assert.Equal(t, "ListTasks", attrs["db.operation"])
	assert.Equal(t, "tasks.find", attrs["db.statement"])
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestQueryTracer_Error(t *testing.T) {
	exporter := setupTestTracer(t)

	qt := NewQueryTracer(SystemPostgres, 0, nil)
	_, end := qt.Start(context.Background(), "UpdateTask", "UPDATE tasks SET title = $1")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "error event should be recorded")
}

func TestQueryTracer_NilDefaultsToPostgres(t *testing.T) {
	exporter := setupTestTracer(t)

	var qt *QueryTracer
	_, end := qt.Start(context.Background(), "GetUser", "SELECT 1")
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "postgresql", spanAttrs(spans[0])["db.system"])
}

func TestQueryTracer_ChildOfParent(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	_, end := NewQueryTracer(SystemPostgres, 0, nil).Start(ctx, "ListTasks", "SELECT")
	end(nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestQueryTracer_SlowQueryLogged(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	qt := NewQueryTracer(SystemPostgres, time.Nanosecond, slog.New(slog.NewJSONHandler(&buf, nil)))
	_, end := qt.Start(context.Background(), "CountTasks", "SELECT COUNT(*) FROM tasks")
	time.Sleep(time.Millisecond)
	end(errors.New("statement timeout"))

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "CountTasks")
	assert.Contains(t, out, "SELECT COUNT(*) FROM tasks")
	assert.Contains(t, out, "statement timeout")
}

func TestQueryTracer_FastQueryNotLogged(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	qt := NewQueryTracer(SystemPostgres, time.Hour, slog.New(slog.NewJSONHandler(&buf, nil)))
	_, end := qt.Start(context.Background(), "GetTask", "SELECT 1")
	end(nil)

	assert.Empty(t, buf.String())
}
