package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func spanAttributes(span tracetest.SpanStub) map[string]string {
	attrs := make(map[string]string)
	for _, a := range span.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	return attrs
}

func TestTraceQuery_RecordsOperationAndStatement(t *testing.T) {
	exporter := installTestTracer(t)

	const sql = "SELECT id, slug, name FROM products WHERE slug = $1"
	_, end := TraceQuery(context.Background(), "GetProductBySlug", sql)
	end(nil)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	span := spans[0]
	assert.Equal(t, "db.GetProductBySlug", span.Name)

	attrs := spanAttributes(span)
	assert.Equal(t, "postgresql", attrs["db.system"])
	assert.Equal(t, "GetProductBySlug", attrs["db.operation"])
	assert.Equal(t, sql, attrs["db.statement"])

	assert.Equal(t, codes.Unset, span.Status.Code)
}

func TestTraceQuery_ErrorMarksSpan(t *testing.T) {
	exporter := installTestTracer(t)

	_, end := TraceQuery(context.Background(), "CreateOrder", "INSERT INTO orders (user_id) VALUES ($1)")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "error must be recorded as a span event")
}

func TestTraceQuery_NestsUnderParentSpan(t *testing.T) {
	installTestTracer(t)

	ctx, parent := otel.Tracer("order-flow").Start(context.Background(), "checkout")
	ctx, end := TraceQuery(ctx, "ListCartItems", "SELECT * FROM cart_items WHERE cart_id = $1")
	end(nil)
	parent.End()

	require.NotNil(t, ctx)
}

func TestSlowQueryLogging_LogsAboveThreshold(t *testing.T) {
	installTestTracer(t)

	var buf bytes.Buffer
	SetSlowQueryLogging(1*time.Nanosecond, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "ListCatalog", "SELECT * FROM products")
	end(nil)

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "ListCatalog")
	assert.Contains(t, out, "SELECT * FROM products")
}

func TestSlowQueryLogging_QuietBelowThreshold(t *testing.T) {
	installTestTracer(t)

	var buf bytes.Buffer
	SetSlowQueryLogging(1*time.Hour, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "GetSector", "SELECT * FROM sectors WHERE id = $1")
	end(nil)

	assert.False(t, strings.Contains(buf.String(), "slow query detected"))
}

func TestSlowQueryLogging_DisabledIsSafe(t *testing.T) {
	installTestTracer(t)
	SetSlowQueryLogging(0, nil)

	_, end := TraceQuery(context.Background(), "GetUser", "SELECT 1")
	end(nil)
}

func TestSlowQueryLogging_IncludesQueryError(t *testing.T) {
	installTestTracer(t)

	var buf bytes.Buffer
	SetSlowQueryLogging(1*time.Nanosecond, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "CreateSaleUnit", "INSERT INTO sale_units (sku) VALUES ($1)")
	end(errors.New(`duplicate key value violates unique constraint "sale_units_sku_key"`))

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "sale_units_sku_key")
}

func TestSetSlowQueryLogging_ConcurrentAccess(t *testing.T) {
	installTestTracer(t)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetSlowQueryLogging(time.Duration(i)*time.Millisecond, logger)
		}
	}()

	for i := 0; i < 100; i++ {
		getSlowQueryConfig()
	}

	<-done
}
