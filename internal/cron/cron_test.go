package cron

import (
	"context"
	"testing"

	"academy/config"
	client "academy/internal/database/client"
	"academy/internal/database/mongodb/index"
	"academy/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestCron(t *testing.T, spec string) (*Cron, *observer.ObservedLogs) {
	t.Helper()
	observedCore, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(observedCore)
	conf := &config.Configuration{}
	conf.Index.ResyncSpec = spec
	trace := &telemetry.Trace{}
	provisioner := index.NewProvisioner(logger, conf, trace, telemetry.NewMetric(conf))
	mongoClient := client.NewMongoClient(logger, conf, trace, provisioner)
	forwarder := client.NewEventForwarder(&client.NoopClient{}, logger, conf)
	return NewCron(logger, conf, trace, mongoClient, forwarder), logs
}

func TestCron_RunWithoutSpecSchedulesNothing(t *testing.T) {
	c, logs := newTestCron(t, "")
	require.NoError(t, c.Run())
	defer c.Stop(context.Background())

	assert.Empty(t, c.server.Entries())
	assert.Equal(t, 0, logs.FilterMessage("index resync scheduled").Len())
}

func TestCron_RunSchedulesResync(t *testing.T) {
	c, logs := newTestCron(t, "0 */5 * * * *")
	require.NoError(t, c.Run())
	defer c.Stop(context.Background())

	assert.Len(t, c.server.Entries(), 1)
	assert.Equal(t, 1, logs.FilterMessage("index resync scheduled").Len())
}

func TestCron_RunRejectsInvalidSpec(t *testing.T) {
	c, _ := newTestCron(t, "every five minutes")
	assert.Error(t, c.Run())
}

func TestCron_ResyncSkipsWhenDisconnected(t *testing.T) {
	c, logs := newTestCron(t, "")

	c.ResyncIndexes()

	assert.Equal(t, 1, logs.FilterMessage("skip index resync: mongodb not connected").Len())
	assert.Zero(t, c.mongoClient.LastReport().Attempted())
}

func TestCron_StopHonoursContext(t *testing.T) {
	c, _ := newTestCron(t, "")
	require.NoError(t, c.Run())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Stop(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
