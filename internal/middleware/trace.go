package middleware

import (
	"strings"

	"academy/config"
	"academy/internal/core"
	"academy/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type TraceEntry struct {
	trace *telemetry.Trace
	conf  *config.Configuration
}

func NewTraceEntry(trace *telemetry.Trace, conf *config.Configuration) *TraceEntry {
	return &TraceEntry{trace: trace, conf: conf}
}

// Handler 為每個維運請求開 server span；/metrics 與探針不追蹤
func (m *TraceEntry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" ||
			strings.HasPrefix(endpoint, "/metrics") ||
			strings.HasPrefix(endpoint, "/health/liveness") ||
			strings.HasPrefix(endpoint, "/health/readiness") {
			c.Next()
			return
		}
		carrier := propagation.HeaderCarrier(c.Request.Header)
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), carrier)
		spanName := core.TraceSpanName(c.Request.Method + " " + endpoint)
		ctx, span := m.trace.StartSpanForLayer(ctx, spanName, trace.WithSpanKind(trace.SpanKindServer))
		c.Request = c.Request.WithContext(ctx)

		meta := core.TraceHttpServerMeta{
			ClientAddr:        c.ClientIP(),
			HttpRequestMethod: c.Request.Method,
			HttpRoute:         endpoint,
			UserAgent:         c.Request.UserAgent(),
			ServerAddress:     m.conf.App.Name,
		}
		m.trace.ApplyTraceAttributes(span, &meta)

		c.Next()

		meta.HttpStatusCode = c.Writer.Status()
		m.trace.ApplyTraceAttributes(span, &meta)
		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last().Err
		}
		m.trace.EndSpan(span, err)
	}
}
