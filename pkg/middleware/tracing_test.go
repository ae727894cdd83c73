package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installTestTracer swaps the global provider for an in-memory exporter for
// the duration of the test.
func installTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

// tracedRequest serves one request through the Tracing middleware on a chi
// route that answers with the given status.
func tracedRequest(t *testing.T, path string, status int, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(Tracing("catalog"))
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTracing_SpanNamedAfterRoute(t *testing.T) {
	exporter := installTestTracer(t)

	rec := tracedRequest(t, "/api/v1/products", http.StatusOK, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "GET /api/v1/products", spans[0].Name)
}

func TestTracing_RecordsStatusCodeAttribute(t *testing.T) {
	exporter := installTestTracer(t)

	tracedRequest(t, "/api/v1/products/desconocido", http.StatusNotFound, nil)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	var got int64 = -1
	for _, attr := range spans[0].Attributes {
		if string(attr.Key) == "http.status_code" {
			got = attr.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(http.StatusNotFound), got)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	exporter := installTestTracer(t)

	tracedRequest(t, "/api/v1/orders", http.StatusInternalServerError, nil)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	exporter := installTestTracer(t)

	header := http.Header{}
	header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := tracedRequest(t, "/api/v1/cart", http.StatusOK, header)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.NotEmpty(t, rec.Header().Get("traceparent"), "trace context must flow back to the caller")
}

func TestTracing_InjectsTraceparentHeader(t *testing.T) {
	installTestTracer(t)

	rec := tracedRequest(t, "/api/v1/favorites", http.StatusOK, nil)

	assert.NotEmpty(t, rec.Header().Get("traceparent"))
}
