package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"academy/config"
	"academy/internal/core"
	"academy/internal/telemetry"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// ErrCreateIndex 包裝單一索引建立失敗
var ErrCreateIndex = errors.New("mongo create index failed")

// Creator 對已開啟的連線送出一個 createIndexes 請求，回傳索引名稱
type Creator interface {
	CreateIndex(ctx context.Context, collection string, model mongo.IndexModel) (string, error)
	DatabaseName() string
}

// Result 單一索引的結果
type Result struct {
	Spec     Spec
	Name     string
	Err      error
	Reason   Reason
	Duration time.Duration
}

func (r Result) Created() bool {
	return r.Err == nil
}

// Report 一次 provisioning 的完整結果，順序與 Plan 相同
type Report struct {
	Database string
	Results  []Result
}

func (r Report) Attempted() int {
	return len(r.Results)
}

func (r Report) Created() int {
	n := 0
	for _, result := range r.Results {
		if result.Created() {
			n++
		}
	}
	return n
}

func (r Report) Failed() int {
	return r.Attempted() - r.Created()
}

// Err 合併所有失敗；全部成功時為 nil
func (r Report) Err() error {
	var errs []error
	for _, result := range r.Results {
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}
	return errors.Join(errs...)
}

type Provisioner struct {
	logger  *zap.Logger
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	timeout time.Duration
	plan    []Spec
}

func NewProvisioner(
	logger *zap.Logger,
	conf *config.Configuration,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
) *Provisioner {
	timeout := conf.Index.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provisioner{
		logger:  logger,
		trace:   trace,
		metric:  metric,
		timeout: timeout,
		plan:    Plan(),
	}
}

// Plan 回傳此 provisioner 使用的索引清單副本
func (p *Provisioner) Plan() []Spec {
	plan := make([]Spec, len(p.plan))
	copy(plan, p.plan)
	return plan
}

// Provision 依序建立每一個索引。任何失敗只記錄、不重試、不中斷，也不回滾已建立的索引。
// 單一請求不受呼叫端 ctx 取消影響，只受 Index.Timeout 限制。
func (p *Provisioner) Provision(ctx context.Context, creator Creator) Report {
	ctx, span, end := p.trace.WithSpan(ctx, core.SpanMongoProvisionIndex)
	report := Report{
		Database: creator.DatabaseName(),
		Results:  make([]Result, 0, len(p.plan)),
	}

	for position, spec := range p.plan {
		report.Results = append(report.Results, p.create(ctx, creator, position, spec))
	}

	p.trace.ApplyTraceAttributes(span, core.TraceProvisionMeta{
		Database:  report.Database,
		Attempted: report.Attempted(),
		Created:   report.Created(),
		Failed:    report.Failed(),
	})
	p.metric.ObserveProvisionRun(report.Failed())

	if report.Failed() > 0 {
		p.logger.Error("error creating database indexes",
			zap.String("database", report.Database),
			zap.Int("attempted", report.Attempted()),
			zap.Int("failed", report.Failed()),
			zap.Error(report.Err()),
		)
		end(report.Err())
		return report
	}
	p.logger.Info("database indexes created successfully",
		zap.String("database", report.Database),
		zap.Int("count", report.Created()),
	)
	end(nil)
	return report
}

func (p *Provisioner) create(ctx context.Context, creator Creator, position int, spec Spec) Result {
	ctx, span, end := p.trace.WithSpan(ctx, core.SpanMongoCreateIndex)
	requestCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	collection := string(spec.Collection)
	startAt := time.Now()
	name, err := creator.CreateIndex(requestCtx, collection, spec.Model())
	result := Result{
		Spec:     spec,
		Name:     spec.Name(),
		Reason:   Classify(err),
		Duration: time.Since(startAt),
	}
	if name != "" {
		result.Name = name
	}

	meta := core.TraceCreateIndexMeta{
		Collection: collection,
		Index:      result.Name,
		Unique:     spec.Unique,
		Position:   position,
	}
	p.metric.ObserveIndex(collection, result.Name, string(result.Reason), result.Duration)

	if err != nil {
		reason := string(result.Reason)
		meta.Reason = &reason
		result.Err = fmt.Errorf("%w: collection=%s index=%s: %w", ErrCreateIndex, collection, result.Name, err)
		p.logger.Warn("failed to create index",
			zap.String("collection", collection),
			zap.String("index", result.Name),
			zap.String("fields", spec.Fields()),
			zap.Bool("unique", spec.Unique),
			zap.String("reason", reason),
			zap.Error(err),
		)
	} else {
		p.logger.Debug("index ensured",
			zap.String("collection", collection),
			zap.String("index", result.Name),
			zap.Duration("duration", result.Duration),
		)
	}
	p.trace.ApplyTraceAttributes(span, meta)
	end(err)
	return result
}
