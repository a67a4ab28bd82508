package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Sagar-1103/taskify/pkg/database"

// Database system names used for the db.system span attribute.
const (
	SystemPostgres = "postgresql"
	SystemMongo    = "mongodb"
)

// QueryTracer wraps storage operations in client spans and warns about
// operations slower than a threshold. A nil *QueryTracer still traces but
// never logs.
type QueryTracer struct {
	system    string
	threshold time.Duration
	logger    *slog.Logger
}

// NewQueryTracer returns a tracer for the given db.system. A zero threshold
// disables slow operation logging.
func NewQueryTracer(system string, slowThreshold time.Duration, logger *slog.Logger) *QueryTracer {
	return &QueryTracer{system: system, threshold: slowThreshold, logger: logger}
}

// Start begins a span named "db.<operation>". Call the returned function with
// the operation's error when it completes:
//
//	ctx, end := t.Start(ctx, "GetTask", getTaskQuery)
//	defer func() { end(err) }()
func (t *QueryTracer) Start(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	system := SystemPostgres
	if t != nil && t.system != "" {
		system = t.system
	}

	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if t == nil || t.threshold <= 0 || t.logger == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= t.threshold {
			attrs := []any{
				slog.String("db_system", system),
				slog.String("operation", operation),
				slog.String("statement", statement),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			t.logger.WarnContext(ctx, "slow query detected", attrs...)
		}
	}
}
