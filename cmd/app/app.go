package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"academy/config"
	"academy/internal/cron"
	client "academy/internal/database/client"
	"academy/internal/service"
	"academy/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RuntimeInfo struct {
	Env       string        `json:"env"`
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	GoVersion string        `json:"go_version"`
	Database  string        `json:"database"`
	StartAt   time.Time     `json:"start_at"`
	Uptime    time.Duration `json:"uptime"`
}

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	Router        *gin.Engine
	httpServer    *http.Server
	healthService *service.HealthService
	mongoClient   *client.MongoClient
	forwarder     *client.EventForwarder

	startAt time.Time   // 程式啟動時間（非環境變數）
	appInfo RuntimeInfo // 版本/環境快照（來源 = conf.App）

	// mu 讓 Run 的啟動段與 Stop 互斥；stopped 之後 Run 不再啟動 HTTP / cron
	mu      sync.Mutex
	stopped bool
}

// lifecycle 由 App 實作，serve 只依賴這兩個方法
type lifecycle interface {
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}

// serve 在 signal 已註冊的前提下啟動 app：啟動中（連線、建索引）或啟動後收到 signal 都會走 Stop。
// Stop 成功即回傳 nil，行程以 exit 0 結束。
func serve(ctx context.Context, logger *zap.Logger, app lifecycle, quit <-chan os.Signal, stopTimeout time.Duration) error {
	runErr := make(chan error, 1)
	go func() { runErr <- app.Run(ctx) }()

	var sig os.Signal
	select {
	case err := <-runErr:
		if err != nil {
			return err
		}
		runErr = nil
		sig = <-quit
	case sig = <-quit:
	}

	logger.Info("shutdown app ...", zap.String("signal", sig.String()))
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	err := app.Stop(stopCtx)

	if runErr != nil {
		// Run 被 Stop 中斷時的錯誤不影響結束狀態
		select {
		case <-runErr:
		case <-stopCtx.Done():
			logger.Warn("app run did not return before stop timeout")
		}
	}
	return err
}

func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// newObservers 連線事件的訂閱者：log、metric、readiness、fluentd
func newObservers(
	logger *zap.Logger,
	metric *telemetry.Metric,
	healthService *service.HealthService,
	forwarder *client.EventForwarder,
) client.Observers {
	return client.Observers{
		client.NewLoggingObserver(logger),
		client.NewMetricObserver(metric),
		healthService,
		forwarder,
	}
}

// newCommandObservers 一次性指令不需要 readiness
func newCommandObservers(
	logger *zap.Logger,
	metric *telemetry.Metric,
	forwarder *client.EventForwarder,
) client.Observers {
	return client.Observers{
		client.NewLoggingObserver(logger),
		client.NewMetricObserver(metric),
		forwarder,
	}
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	router *gin.Engine,
	httpServer *http.Server,
	healthService *service.HealthService,
	mongoClient *client.MongoClient,
	forwarder *client.EventForwarder,
	cronSrv *cron.Cron,
) *App {
	startAt := time.Now()
	return &App{
		conf:          conf,
		logger:        logger,
		Router:        router,
		httpServer:    httpServer,
		healthService: healthService,
		mongoClient:   mongoClient,
		forwarder:     forwarder,
		cronSrv:       cronSrv,
		startAt:       startAt,
		appInfo: RuntimeInfo{
			Env:       conf.App.Env,
			Name:      conf.App.Name,
			Version:   conf.App.Version,
			GoVersion: runtime.Version(),
			StartAt:   startAt,
		},
	}
}

func (a *App) Run(ctx context.Context) error {
	// 1) 啟動時寫入版本/環境資訊
	info := a.appInfo
	a.logger.Info("app runtime info",
		zap.String("env", info.Env),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("go_version", info.GoVersion),
		zap.Time("start_at", info.StartAt),
	)

	// 2) 連線 + 建立索引；連線失敗會直接 exit 1，被 Stop 中斷則回傳 ErrShuttingDown
	if a.mongoClient.MustConnect(ctx) == nil {
		return client.ErrShuttingDown
	}
	a.forwarder.ForwardReport(a.mongoClient.LastReport())

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return client.ErrShuttingDown
	}
	a.appInfo.Database = a.mongoClient.DatabaseName()
	a.healthService.SetReady(true)

	// 3) /version：回傳 JSON（含 uptime）
	if a.Router != nil {
		a.Router.GET("/version", func(c *gin.Context) {
			a.mu.Lock()
			resp := a.appInfo
			a.mu.Unlock()
			resp.Uptime = time.Since(a.startAt)
			c.JSON(http.StatusOK, resp)
		})
	}

	// 4) 維運 HTTP（port 0 表示不啟動）
	if a.httpServer != nil && a.conf.App.Port > 0 {
		go func() {
			if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("ops http server stopped", zap.Error(err))
			}
		}()
		a.logger.Info("ops http server started", zap.String("addr", a.httpServer.Addr))
	}

	// 5) 啟動 cron
	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	return nil
}

// Stop 依序：readiness 關閉 → 停 HTTP → 停 cron → 關 MongoDB
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()

	if a.healthService != nil {
		a.healthService.SetReady(false)
	}
	var errs []error
	if a.httpServer != nil && a.conf.App.Port > 0 {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.cronSrv != nil {
		if err := a.cronSrv.Stop(ctx); err != nil {
			errs = append(errs, err)
		} else {
			a.logger.Info("cron server has been stop")
		}
	}
	if err := a.mongoClient.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
