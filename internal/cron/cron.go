package cron

import (
	"context"

	"academy/config"
	"academy/internal/core"
	client "academy/internal/database/client"
	"academy/internal/telemetry"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron)

type Cron struct {
	logger      *zap.Logger
	server      *cron.Cron
	conf        *config.Configuration
	trace       *telemetry.Trace
	mongoClient *client.MongoClient
	forwarder   *client.EventForwarder
}

// NewCron .
func NewCron(
	logger *zap.Logger,
	conf *config.Configuration,
	trace *telemetry.Trace,
	mongoClient *client.MongoClient,
	forwarder *client.EventForwarder,
) *Cron {
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Cron{
		logger:      logger,
		server:      server,
		conf:        conf,
		trace:       trace,
		mongoClient: mongoClient,
		forwarder:   forwarder,
	}
}

func (c *Cron) Run() error {
	if spec := c.conf.Index.ResyncSpec; spec != "" {
		if _, err := c.server.AddFunc(spec, c.ResyncIndexes); err != nil {
			return err
		}
		c.logger.Info("index resync scheduled", zap.String("spec", spec))
	}

	c.server.Start()
	return nil
}

// ResyncIndexes 重新送出整份索引清單；既有且選項相同的索引為 no-op
func (c *Cron) ResyncIndexes() {
	if !c.mongoClient.IsConnected() {
		c.logger.Warn("skip index resync: mongodb not connected")
		return
	}
	ctx, _, end := c.trace.WithSpan(context.Background(), core.SpanCronIndexResync)
	report := c.mongoClient.ProvisionIndexes(ctx)
	c.forwarder.ForwardReport(report)
	end(report.Err())
}

func (c *Cron) Stop(ctx context.Context) error {
	stopCtx := c.server.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
