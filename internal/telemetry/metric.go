package telemetry

import (
	"net/http"
	"strings"
	"time"

	"academy/config"
	"academy/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric struct
type Metric struct {
	ConnectionEventsTotal *prometheus.CounterVec
	IndexResultsTotal     *prometheus.CounterVec
	IndexDuration         *prometheus.HistogramVec
	ProvisionRunsTotal    *prometheus.CounterVec
	IndexesMissing        prometheus.Gauge

	registry *prometheus.Registry
	config   *config.Configuration
}

// NewMetric 建立所有指標；每個實例擁有自己的 registry，測試可重複建立
func NewMetric(config *config.Configuration) *Metric {
	registry := prometheus.NewRegistry()
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{registry: registry}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	return &Metric{
		config:   config,
		registry: registry,
		ConnectionEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricName(config, core.MetricConnectionEventsTotal),
				Help: "MongoDB connection lifecycle events observed",
			},
			labelNames(core.MetricLabelEvent),
		),
		IndexResultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricName(config, core.MetricIndexResultsTotal),
				Help: "Index creation attempts by collection, index and outcome",
			},
			labelNames(core.MetricLabelCollection, core.MetricLabelIndex, core.MetricLabelStatus, core.MetricLabelReason),
		),
		IndexDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricName(config, core.MetricIndexDuration),
				Help:    "Duration of a single createIndexes request (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelCollection),
		),
		ProvisionRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricName(config, core.MetricProvisionRunsTotal),
				Help: "Index provisioning runs by outcome (complete / partial)",
			},
			labelNames(core.MetricLabelStatus),
		),
		IndexesMissing: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: metricName(config, core.MetricIndexesMissing),
				Help: "Indexes that failed in the latest provisioning run",
			},
		),
	}
}

func (m *Metric) ObserveConnectionEvent(event string) {
	if m == nil || m.ConnectionEventsTotal == nil {
		return
	}
	m.ConnectionEventsTotal.WithLabelValues(event).Inc()
}

func (m *Metric) ObserveIndex(collection, index, reason string, duration time.Duration) {
	if m == nil || m.IndexResultsTotal == nil || m.IndexDuration == nil {
		return
	}
	status := "created"
	if reason != "" {
		status = "failed"
	}
	m.IndexResultsTotal.WithLabelValues(collection, index, status, reason).Inc()
	m.IndexDuration.WithLabelValues(collection).Observe(duration.Seconds())
}

func (m *Metric) ObserveProvisionRun(failed int) {
	if m == nil || m.ProvisionRunsTotal == nil || m.IndexesMissing == nil {
		return
	}
	status := "complete"
	if failed > 0 {
		status = "partial"
	}
	m.ProvisionRunsTotal.WithLabelValues(status).Inc()
	m.IndexesMissing.Set(float64(failed))
}

// Registry 供測試讀取指標
func (m *Metric) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 輸出 /metrics
func (m *Metric) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func metricName(config *config.Configuration, name core.MetricName) string {
	if config.App.Name == "" {
		return string(name)
	}
	// 服務名稱可能含 "-"，prometheus 名稱只接受 [a-zA-Z0-9_]
	prefix := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, config.App.Name)
	return prefix + "_" + string(name)
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
