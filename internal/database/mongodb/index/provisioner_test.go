package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"academy/config"
	"academy/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type createCall struct {
	collection  string
	keys        any
	ctxErr      error
	hasDeadline bool
}

// fakeCreator 記錄每次呼叫，failOn 指定的 collection/index 回傳錯誤
type fakeCreator struct {
	mu     sync.Mutex
	calls  []createCall
	failOn map[string]error
}

func (f *fakeCreator) CreateIndex(ctx context.Context, collection string, model mongo.IndexModel) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	f.calls = append(f.calls, createCall{collection: collection, keys: model.Keys, ctxErr: ctx.Err(), hasDeadline: hasDeadline})

	if err, ok := f.failOn[collection+"."+indexName(model)]; ok {
		return "", err
	}
	return indexName(model), nil
}

func (f *fakeCreator) DatabaseName() string { return "academy_test" }

func indexName(model mongo.IndexModel) string {
	keys, _ := model.Keys.(bson.D)
	return Spec{Keys: keys}.Name()
}

func newTestProvisioner(t *testing.T, logger *zap.Logger) (*Provisioner, *telemetry.Metric) {
	t.Helper()

	conf := &config.Configuration{}
	conf.Telemetry.Metric.Enabled = true
	conf.Index.Timeout = time.Second
	metric := telemetry.NewMetric(conf)

	return NewProvisioner(logger, conf, &telemetry.Trace{}, metric), metric
}

func TestProvision_CreatesEveryIndexInOrder(t *testing.T) {
	provisioner, metric := newTestProvisioner(t, zap.NewNop())
	creator := &fakeCreator{}

	report := provisioner.Provision(context.Background(), creator)

	plan := Plan()
	require.Len(t, creator.calls, len(plan))
	for i, spec := range plan {
		assert.Equal(t, string(spec.Collection), creator.calls[i].collection, "position %d", i)
		assert.Equal(t, spec.Keys, creator.calls[i].keys, "position %d", i)
		assert.True(t, creator.calls[i].hasDeadline, "each request carries its own timeout")
	}

	assert.Equal(t, "academy_test", report.Database)
	assert.Equal(t, 22, report.Attempted())
	assert.Equal(t, 22, report.Created())
	assert.Equal(t, 0, report.Failed())
	assert.NoError(t, report.Err())
	assert.Equal(t, float64(0), testutil.ToFloat64(metric.IndexesMissing))
	assert.Equal(t, float64(1), testutil.ToFloat64(metric.ProvisionRunsTotal.WithLabelValues("complete")))
}

func TestProvision_FailureDoesNotStopLaterIndexes(t *testing.T) {
	observedCore, logs := observer.New(zapcore.DebugLevel)
	provisioner, metric := newTestProvisioner(t, zap.New(observedCore))

	duplicate := mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error collection: academy.users index: email_1"}
	creator := &fakeCreator{failOn: map[string]error{
		"users.email_1":        duplicate,
		"payments.paymentId_1": errors.New("socket closed"),
	}}

	report := provisioner.Provision(context.Background(), creator)

	require.Len(t, creator.calls, 22, "no short-circuit on failure")
	assert.Equal(t, 20, report.Created())
	assert.Equal(t, 2, report.Failed())

	first := report.Results[0]
	assert.False(t, first.Created())
	assert.Equal(t, ReasonDuplicateKey, first.Reason)
	assert.ErrorIs(t, first.Err, ErrCreateIndex)
	assert.Equal(t, "email_1", first.Name)

	payment := report.Results[9]
	assert.Equal(t, "paymentId_1", payment.Name)
	assert.Equal(t, ReasonOther, payment.Reason)

	assert.True(t, report.Results[1].Created())
	assert.True(t, report.Results[21].Created())

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreateIndex)
	assert.Contains(t, err.Error(), "collection=users index=email_1")
	assert.Contains(t, err.Error(), "collection=payments index=paymentId_1")

	warns := logs.FilterMessage("failed to create index").All()
	require.Len(t, warns, 2)
	assert.Equal(t, zapcore.WarnLevel, warns[0].Level)
	assert.Equal(t, "duplicate_key", warns[0].ContextMap()["reason"])
	assert.Len(t, logs.FilterMessage("error creating database indexes").All(), 1)

	assert.Equal(t, float64(2), testutil.ToFloat64(metric.IndexesMissing))
	assert.Equal(t, float64(1), testutil.ToFloat64(metric.ProvisionRunsTotal.WithLabelValues("partial")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metric.IndexResultsTotal.WithLabelValues("users", "email_1", "failed", "duplicate_key")))
}

func TestProvision_IgnoresCallerCancellation(t *testing.T) {
	provisioner, _ := newTestProvisioner(t, zap.NewNop())
	creator := &fakeCreator{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := provisioner.Provision(ctx, creator)

	require.Len(t, creator.calls, 22)
	for _, call := range creator.calls {
		assert.NoError(t, call.ctxErr)
	}
	assert.Equal(t, 22, report.Created())
}

func TestNewProvisioner_DefaultTimeout(t *testing.T) {
	provisioner := NewProvisioner(zap.NewNop(), &config.Configuration{}, &telemetry.Trace{}, telemetry.NewMetric(nil))
	assert.Equal(t, defaultTimeout, provisioner.timeout)

	plan := provisioner.Plan()
	plan[0].Unique = false
	assert.True(t, provisioner.Plan()[0].Unique)
}
