package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"academy/config"
	client "academy/internal/database/client"
	"academy/internal/database/mongodb/index"
	"academy/internal/handler"
	"academy/internal/middleware"
	"academy/internal/service"
	"academy/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, conf *config.Configuration) (*service.HealthService, http.Handler) {
	t.Helper()
	logger := zap.NewNop()
	trace := &telemetry.Trace{}
	metric := telemetry.NewMetric(conf)
	provisioner := index.NewProvisioner(logger, conf, trace, metric)
	mongoClient := client.NewMongoClient(logger, conf, trace, provisioner)
	health := service.NewHealthService()

	engine := NewRouter(
		conf,
		middleware.NewRecovery(logger),
		middleware.NewLogger(logger),
		middleware.NewTraceEntry(trace, conf),
		metric,
		NewHealthRouter(handler.NewHealthHandler(health, mongoClient)),
	)
	return health, engine
}

func testConfig() *config.Configuration {
	conf := &config.Configuration{}
	conf.App.Env = "test"
	conf.App.Name = "academy"
	conf.Telemetry.Metric.Enabled = true
	return conf
}

func get(engine http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthRoutes(t *testing.T) {
	health, engine := newTestRouter(t, testConfig())

	assert.Equal(t, http.StatusOK, get(engine, "/health/liveness").Code)

	rec := get(engine, "/health/readiness")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, false, body["connected"])

	health.OnEvent(client.Event{Kind: client.EventConnected})
	health.SetReady(true)
	assert.Equal(t, http.StatusOK, get(engine, "/health/readiness").Code)

	health.OnEvent(client.Event{Kind: client.EventDisconnected})
	assert.Equal(t, http.StatusServiceUnavailable, get(engine, "/health/readiness").Code)
}

func TestIndexesRouteBeforeProvisioning(t *testing.T) {
	_, engine := newTestRouter(t, testConfig())

	rec := get(engine, "/health/indexes")
	require.Equal(t, http.StatusOK, rec.Code)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["attempted"])
	assert.Equal(t, []any{}, body["failures"])
}

func TestVersionHeaderOnEveryRoute(t *testing.T) {
	conf := testConfig()
	conf.App.Version = "1.4.0"
	_, engine := newTestRouter(t, conf)

	for _, path := range []string{"/health/liveness", "/health/indexes", "/metrics", "/missing"} {
		assert.Equal(t, "1.4.0", get(engine, path).Header().Get("X-App-Version"), path)
	}

	_, engine = newTestRouter(t, testConfig())
	assert.Empty(t, get(engine, "/health/liveness").Header().Get("X-App-Version"))
}

func TestMetricsRoute(t *testing.T) {
	_, engine := newTestRouter(t, testConfig())

	rec := get(engine, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPprofIsOptIn(t *testing.T) {
	_, engine := newTestRouter(t, testConfig())
	assert.Equal(t, http.StatusNotFound, get(engine, "/debug/pprof/").Code)

	conf := testConfig()
	conf.App.PprofEnabled = true
	_, engine = newTestRouter(t, conf)
	assert.Equal(t, http.StatusOK, get(engine, "/debug/pprof/").Code)
}
