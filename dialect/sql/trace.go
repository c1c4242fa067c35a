package sql

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/syssam/arrayrel/dialect"
)

const tracerName = "github.com/syssam/arrayrel/dialect/sql"

// TraceDriver wraps a dialect.Driver and records an OpenTelemetry span
// for every statement it executes.
type TraceDriver struct {
	dialect.Driver
	tracer trace.Tracer
}

// TraceOption configures the TraceDriver.
type TraceOption func(*traceConfig)

type traceConfig struct {
	provider trace.TracerProvider
}

// WithTracerProvider sets the tracer provider used by the driver.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) TraceOption {
	return func(c *traceConfig) {
		c.provider = tp
	}
}

// NewTraceDriver wraps a Driver with span recording.
//
//	drv, _ := sql.Open("postgres", dsn)
//	client := arrayrel.NewClient(sql.NewTraceDriver(drv), g)
func NewTraceDriver(drv dialect.Driver, opts ...TraceOption) *TraceDriver {
	cfg := &traceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}
	return &TraceDriver{Driver: drv, tracer: cfg.provider.Tracer(tracerName)}
}

// Query executes a query inside a span.
func (d *TraceDriver) Query(ctx context.Context, query string, args, v any) error {
	return traced(ctx, d.tracer, "arrayrel.query", query, func(ctx context.Context) error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec executes a statement inside a span.
func (d *TraceDriver) Exec(ctx context.Context, query string, args, v any) error {
	return traced(ctx, d.tracer, "arrayrel.exec", query, func(ctx context.Context) error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements are traced.
func (d *TraceDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &TraceTx{Tx: tx, tracer: d.tracer}, nil
}

// TraceTx wraps a transaction with span recording.
type TraceTx struct {
	dialect.Tx
	tracer trace.Tracer
}

// Query executes a query within the transaction inside a span.
func (tx *TraceTx) Query(ctx context.Context, query string, args, v any) error {
	return traced(ctx, tx.tracer, "arrayrel.tx.query", query, func(ctx context.Context) error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

// Exec executes a statement within the transaction inside a span.
func (tx *TraceTx) Exec(ctx context.Context, query string, args, v any) error {
	return traced(ctx, tx.tracer, "arrayrel.tx.exec", query, func(ctx context.Context) error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

func traced(ctx context.Context, tracer trace.Tracer, name, query string, f func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.statement", query),
		),
	)
	defer span.End()
	if err := f(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

var (
	_ dialect.Driver = (*TraceDriver)(nil)
	_ dialect.Tx     = (*TraceTx)(nil)
)
