package client

import (
	"context"
	"time"

	"academy/config"
	"academy/internal/core"
	"academy/internal/database/mongodb/index"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.uber.org/zap"
)

const defaultTagPrefix = "academy"

// FluentdPoster is a minimal interface to allow mocking in tests.
type FluentdPoster interface {
	Post(ctx context.Context, tag string, message any) error
	Close() error
}

// FluentdClient implements FluentdPoster using fluent-logger-golang.
type FluentdClient struct {
	client    *fluent.Fluent
	tagPrefix string
}

// NewFluentdClient 停用時回傳 NoopClient；啟用時以 async 模式連線，不阻塞 driver 的 monitor goroutine
func NewFluentdClient(logger *zap.Logger, config *config.Configuration) (FluentdPoster, func(), error) {
	if !config.Fluentd.Enabled {
		return &NoopClient{}, func() {}, nil
	}
	prefix := defaultTagPrefix
	if config.Fluentd.TagPrefix != "" {
		prefix = config.Fluentd.TagPrefix
	}
	var timeout time.Duration
	if config.Fluentd.Timeout > 0 {
		timeout = time.Duration(config.Fluentd.Timeout) * time.Millisecond
	}

	fluentLogger, err := fluent.New(fluent.Config{
		FluentHost: config.Fluentd.Host,
		FluentPort: config.Fluentd.Port,
		Timeout:    timeout,
		TagPrefix:  prefix,
		Async:      true,
	})
	if err != nil {
		return nil, nil, err
	}
	fluentdClient := &FluentdClient{client: fluentLogger, tagPrefix: prefix}
	cleanup := func() {
		logger.Info("closing the Fluentd resources")
		if err := fluentdClient.Close(); err != nil {
			logger.Error("failed to close Fluentd client", zap.Error(err))
		}
	}
	return fluentdClient, cleanup, nil
}

func (c *FluentdClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Post sends a record to Fluentd; fluent prepends the configured TagPrefix.
func (c *FluentdClient) Post(ctx context.Context, tag string, message any) error {
	// fluent-logger-golang doesn't support context cancellation directly;
	// we still accept ctx for API symmetry.
	return c.client.Post(tag, message)
}

// --------------------
// Noop client (disabled mode)
// --------------------

type NoopClient struct{}

func (n *NoopClient) Post(ctx context.Context, tag string, message any) error { return nil }
func (n *NoopClient) Close() error                                            { return nil }

// EventForwarder 把連線事件與索引報告送到 Fluentd
type EventForwarder struct {
	poster  FluentdPoster
	logger  *zap.Logger
	appName string
}

func NewEventForwarder(poster FluentdPoster, logger *zap.Logger, config *config.Configuration) *EventForwarder {
	return &EventForwarder{poster: poster, logger: logger, appName: config.App.Name}
}

func (f *EventForwarder) OnEvent(e Event) {
	record := map[string]any{
		"project": f.appName,
		"event":   string(e.Kind),
		"address": e.Address,
		"at":      e.At.UTC().Format(time.RFC3339Nano),
	}
	if e.Err != nil {
		record["error"] = e.Err.Error()
	}
	f.post(string(core.FluentdConnectionEvent), record)
}

func (f *EventForwarder) ForwardReport(report index.Report) {
	failures := make([]map[string]any, 0, report.Failed())
	for _, result := range report.Results {
		if result.Err == nil {
			continue
		}
		failures = append(failures, map[string]any{
			"collection": string(result.Spec.Collection),
			"index":      result.Name,
			"reason":     string(result.Reason),
			"error":      result.Err.Error(),
		})
	}
	f.post(string(core.FluentdIndexReport), map[string]any{
		"project":   f.appName,
		"database":  report.Database,
		"attempted": report.Attempted(),
		"created":   report.Created(),
		"failed":    report.Failed(),
		"failures":  failures,
	})
}

func (f *EventForwarder) post(tag string, record map[string]any) {
	if err := f.poster.Post(context.Background(), tag, record); err != nil {
		f.logger.Debug("failed to forward record to fluentd", zap.String("tag", tag), zap.Error(err))
	}
}
