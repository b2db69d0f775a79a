package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"academy/config"
	"academy/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceEntry_SpansOnlyNonProbeRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	tr := &telemetry.Trace{
		TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)),
		ServiceName:    "academy",
	}
	conf := &config.Configuration{}
	conf.App.Name = "academy"

	engine := gin.New()
	engine.Use(NewTraceEntry(tr, conf).Handler())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	engine.GET("/health/liveness", ok)
	engine.GET("/health/indexes", ok)
	engine.GET("/metrics", ok)

	for _, path := range []string{"/health/liveness", "/metrics", "/health/indexes", "/missing"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /health/indexes", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, int64(http.StatusOK), attrs["http.response.status_code"].AsInt64())
	assert.Equal(t, "/health/indexes", attrs["http.route"].AsString())
}
