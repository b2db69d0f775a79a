package core

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanMongoConnect        TraceSpanName = "mongo.connect"
	SpanMongoProvisionIndex TraceSpanName = "mongo.provision_indexes"
	SpanMongoCreateIndex    TraceSpanName = "mongo.create_index"
	SpanMongoClose          TraceSpanName = "mongo.close"
	SpanCronIndexResync     TraceSpanName = "cron.index_resync"
	SpanCommandIndexSync    TraceSpanName = "command.index_sync"
)

// 指標名稱常數
type MetricName string

const (
	MetricConnectionEventsTotal MetricName = "mongo_connection_events_total"
	MetricIndexResultsTotal     MetricName = "mongo_index_results_total"
	MetricIndexDuration         MetricName = "mongo_index_duration_seconds"
	MetricProvisionRunsTotal    MetricName = "mongo_index_provision_runs_total"
	MetricIndexesMissing        MetricName = "mongo_indexes_missing"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEvent      MetricLabelName = "event"
	MetricLabelCollection MetricLabelName = "collection"
	MetricLabelIndex      MetricLabelName = "index"
	MetricLabelStatus     MetricLabelName = "status"
	MetricLabelReason     MetricLabelName = "reason"
)

type TraceConnectMeta struct {
	Hosts    []string `trace:"db.mongodb.hosts"`
	Database string   `trace:"db.name"`
	System   string   `trace:"db.system"`
}

type TraceCreateIndexMeta struct {
	Collection string  `trace:"db.mongodb.collection"`
	Index      string  `trace:"db.mongodb.index"`
	Unique     bool    `trace:"db.mongodb.index_unique"`
	Position   int     `trace:"index.position"`
	Reason     *string `trace:"error.reason"`
}

type TraceProvisionMeta struct {
	Database  string `trace:"db.name"`
	Attempted int    `trace:"index.attempted"`
	Created   int    `trace:"index.created"`
	Failed    int    `trace:"index.failed"`
}

type TraceHttpServerMeta struct {
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
}
