package router

import (
	"academy/config"
	"academy/internal/middleware"
	"academy/internal/telemetry"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewRouter,
	NewHealthRouter,
)

// NewRouter 只掛維運用路由：health、metrics、pprof
func NewRouter(
	config *config.Configuration,
	recovery *middleware.Recovery,
	logger *middleware.Logger,
	traceEntry *middleware.TraceEntry,
	metric *telemetry.Metric,
	healthRouter *HealthRouter,
) *gin.Engine {

	switch config.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	if version := config.App.Version; version != "" {
		router.Use(func(c *gin.Context) {
			c.Header("X-App-Version", version)
			c.Next()
		})
	}
	router.Use(logger.LoggerHandler())
	router.Use(recovery.ErrorHandler())
	router.Use(traceEntry.Handler())

	router.GET("/metrics", gin.WrapH(metric.Handler()))
	healthRouter.RegisterHealthRoutes(router)

	if config.App.PprofEnabled {
		pprof.Register(router)
	}
	return router
}
