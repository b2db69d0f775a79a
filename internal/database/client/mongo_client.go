package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"academy/config"
	"academy/internal/core"
	"academy/internal/database/mongodb/index"
	"academy/internal/telemetry"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
)

const defaultConnectTimeout = 10 * time.Second

var (
	// ErrEmptyURI 未提供連線字串
	ErrEmptyURI = errors.New("mongo uri cannot be empty")
	// ErrClientClosed 連線尚未建立或已關閉
	ErrClientClosed = fmt.Errorf("mongo client is closed: %w", index.ErrNotConnected)
	ErrConnect      = errors.New("mongo connect failed")
	ErrPing         = errors.New("mongo ping failed")
	ErrDisconnect   = errors.New("mongo disconnect failed")
	// ErrShuttingDown Shutdown 之後不再建立連線
	ErrShuttingDown = fmt.Errorf("mongo client is shutting down: %w", index.ErrNotConnected)
)

// MongoClient 連接 MongoDB，負責連線生命週期與索引建立
type MongoClient struct {
	mu         sync.RWMutex
	client     *mongo.Client
	hosts      []string
	database   string
	lastReport index.Report

	conf        config.MongoDB
	logger      *zap.Logger
	trace       *telemetry.Trace
	provisioner *index.Provisioner
	events      *eventBus
	deps        driverDeps

	connectMu     sync.Mutex
	cancelConnect context.CancelFunc
	shuttingDown  atomic.Bool
}

func NewMongoClient(
	logger *zap.Logger,
	conf *config.Configuration,
	trace *telemetry.Trace,
	provisioner *index.Provisioner,
) *MongoClient {
	return &MongoClient{
		conf:        conf.MongoDB,
		logger:      logger,
		trace:       trace,
		provisioner: provisioner,
		events:      newEventBus(),
		deps:        defaultDeps(),
	}
}

// ProvideMongoClient 建立尚未連線的 client 並註冊 observer；cleanup 會關閉連線（已關閉則略過）
func ProvideMongoClient(
	logger *zap.Logger,
	conf *config.Configuration,
	trace *telemetry.Trace,
	provisioner *index.Provisioner,
	observers Observers,
) (*MongoClient, func()) {
	mongoClient := NewMongoClient(logger, conf, trace, provisioner)
	for _, observer := range observers {
		mongoClient.Subscribe(observer)
	}
	cleanup := func() {
		logger.Info("closing the MongoDB resources")
		if err := mongoClient.Close(context.Background()); err != nil {
			logger.Error("failed to close MongoDB client", zap.Error(err))
		}
	}
	return mongoClient, cleanup
}

// Subscribe 註冊連線事件 observer，需在 Connect 前呼叫才收得到第一個 connected
func (m *MongoClient) Subscribe(observer Observer) {
	m.events.subscribe(observer)
}

// MustConnect 建立連線；失敗時記錄錯誤並以 exit code 1 結束行程，不重試。
// 連線途中被 Shutdown 中斷時回傳 nil，交由 signal 流程以 exit 0 結束。
func (m *MongoClient) MustConnect(ctx context.Context) *MongoClient {
	if err := m.Connect(ctx); err != nil {
		if errors.Is(err, ErrShuttingDown) {
			return nil
		}
		_ = m.logger.Sync()
		m.deps.exit(1)
		return nil
	}
	return m
}

// Connect 建立連線並執行索引建立。索引失敗不會讓 Connect 失敗。
// 已連線時直接返回；Close 之後可再次呼叫以重新連線並重跑索引。
func (m *MongoClient) Connect(ctx context.Context) error {
	if m.shuttingDown.Load() {
		return ErrShuttingDown
	}
	connectCtx, span, end := m.trace.WithSpan(ctx, core.SpanMongoConnect)
	connectCtx, done := m.beginConnect(connectCtx)
	defer done()

	m.mu.Lock()
	if m.client != nil {
		m.mu.Unlock()
		end(nil)
		return nil
	}
	err := m.connectLocked(connectCtx)
	if m.shuttingDown.Load() {
		// Shutdown 可能在 connect 完成前就跑完 Close
		if err == nil {
			if disconnectErr := m.deps.disconnect(context.Background(), m.client); disconnectErr != nil {
				m.logger.Warn("failed to disconnect after shutdown", zap.Error(disconnectErr))
			}
			m.client = nil
			err = ErrShuttingDown
		} else {
			err = fmt.Errorf("%w: %w", ErrShuttingDown, err)
		}
	}
	hosts, database := m.hosts, m.database
	m.mu.Unlock()

	m.trace.ApplyTraceAttributes(span, core.TraceConnectMeta{
		Hosts:    hosts,
		Database: database,
		System:   string(core.Mongo),
	})
	if errors.Is(err, ErrShuttingDown) {
		m.logger.Info("mongodb connect aborted by shutdown", zap.Error(err))
		end(err)
		return err
	}
	if err != nil {
		m.logger.Error("mongodb connection error", zap.Error(err))
		end(err)
		return err
	}
	end(nil)

	m.logger.Info("mongodb connected",
		zap.String("host", strings.Join(hosts, ",")),
		zap.String("database", database),
	)

	m.ProvisionIndexes(ctx)
	return nil
}

// beginConnect 讓 Shutdown 能取消進行中的 connect / ping
func (m *MongoClient) beginConnect(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	m.connectMu.Lock()
	m.cancelConnect = cancel
	m.connectMu.Unlock()
	return ctx, func() {
		m.connectMu.Lock()
		m.cancelConnect = nil
		m.connectMu.Unlock()
		cancel()
	}
}

// connectLocked 呼叫端必須持有 m.mu 寫鎖
func (m *MongoClient) connectLocked(ctx context.Context) error {
	uri := buildMongoURI(strings.TrimSpace(m.conf.URI), m.conf.Options)
	if uri == "" {
		return ErrEmptyURI
	}
	connString, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	m.hosts = connString.Hosts
	m.database = resolveDatabaseName(m.conf.Database, connString.Database)

	timeout := m.conf.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerMonitor(m.events.serverMonitor())
	if m.conf.ServerSelectionTimeout > 0 {
		clientOptions.SetServerSelectionTimeout(m.conf.ServerSelectionTimeout)
	}

	mongoClient, err := m.deps.connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := m.deps.ping(pingCtx, mongoClient); err != nil {
		if disconnectErr := m.deps.disconnect(context.Background(), mongoClient); disconnectErr != nil {
			m.logger.Warn("failed to disconnect after ping failure", zap.Error(disconnectErr))
		}
		return fmt.Errorf("%w: %w", ErrPing, err)
	}

	m.client = mongoClient
	return nil
}

// ProvisionIndexes 依固定順序建立所有索引，失敗只記錄
func (m *MongoClient) ProvisionIndexes(ctx context.Context) index.Report {
	report := m.provisioner.Provision(ctx, m)
	m.mu.Lock()
	m.lastReport = report
	m.mu.Unlock()
	return report
}

// CreateIndex 實作 index.Creator
func (m *MongoClient) CreateIndex(ctx context.Context, collection string, model mongo.IndexModel) (string, error) {
	m.mu.RLock()
	mongoClient, database := m.client, m.database
	m.mu.RUnlock()
	if mongoClient == nil {
		return "", ErrClientClosed
	}
	return m.deps.createIndex(ctx, mongoClient, database, collection, model)
}

// Client 回傳 MongoDB 連線
func (m *MongoClient) Client() (*mongo.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, ErrClientClosed
	}
	return m.client, nil
}

// Database 回傳設定的 database handle；關閉後回傳 ErrClientClosed
func (m *MongoClient) Database() (*mongo.Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, ErrClientClosed
	}
	return m.client.Database(m.database), nil
}

func (m *MongoClient) Ping(ctx context.Context) error {
	mongoClient, err := m.Client()
	if err != nil {
		return err
	}
	if err := m.deps.ping(ctx, mongoClient); err != nil {
		return fmt.Errorf("%w: %w", ErrPing, err)
	}
	return nil
}

func (m *MongoClient) DatabaseName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.database
}

// Host 回傳第一個 host（多 host 時以 Hosts 取得全部）
func (m *MongoClient) Host() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.hosts) == 0 {
		return ""
	}
	return m.hosts[0]
}

func (m *MongoClient) Hosts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hosts := make([]string, len(m.hosts))
	copy(hosts, m.hosts)
	return hosts
}

func (m *MongoClient) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// LastReport 最近一次索引建立的結果
func (m *MongoClient) LastReport() index.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReport
}

// Close 關閉 MongoDB 連線；不論 disconnect 成功與否都視為已關閉
func (m *MongoClient) Close(ctx context.Context) error {
	ctx, _, end := m.trace.WithSpan(ctx, core.SpanMongoClose)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		end(nil)
		return nil
	}
	err := m.deps.disconnect(ctx, m.client)
	m.client = nil
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDisconnect, err)
	}
	end(err)
	return err
}

// Shutdown 由上層的 signal 處理呼叫：中斷進行中的 connect、關閉連線並記錄。
// 之後 Connect 一律回傳 ErrShuttingDown。
func (m *MongoClient) Shutdown(ctx context.Context) error {
	m.shuttingDown.Store(true)
	m.connectMu.Lock()
	if m.cancelConnect != nil {
		m.cancelConnect()
	}
	m.connectMu.Unlock()

	if err := m.Close(ctx); err != nil {
		m.logger.Error("failed to close mongodb connection", zap.Error(err))
		return err
	}
	m.logger.Info("mongodb connection closed through app termination")
	return nil
}

func buildMongoURI(baseURI, optionStr string) string {
	if optionStr == "" || baseURI == "" {
		return baseURI
	}
	if strings.Contains(baseURI, "?") {
		return baseURI + "&" + optionStr
	}
	return baseURI + "?" + optionStr
}

func resolveDatabaseName(configured, fromURI string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	if fromURI != "" {
		return fromURI
	}
	return string(core.MongoDBAcademy)
}
