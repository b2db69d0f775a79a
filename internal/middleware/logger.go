package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

// LoggerHandler 記錄每個請求；探針與 metrics 只在 debug 輸出，避免洗版
func (m *Logger) LoggerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		startAt := time.Now()
		c.Next()

		path := c.Request.URL.Path
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startAt)),
			zap.String("client_ip", c.ClientIP()),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/metrics") {
			m.logger.Debug("[Request] ops endpoint", fields...)
			return
		}
		m.logger.Info("[Request] logging middleware message", fields...)
	}
}
