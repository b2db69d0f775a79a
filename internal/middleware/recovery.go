package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Recovery struct {
	logger *zap.Logger
}

func NewRecovery(logger *zap.Logger) *Recovery {
	return &Recovery{logger: logger}
}

func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		// ---- panic recover 必須在 c.Next() 之前註冊 ----
		defer func() {
			if rec := recover(); rec != nil {
				middleware.logger.Error("[PANIC] Recovered",
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("client_ip", c.ClientIP()),
					zap.Duration("duration", time.Since(requestTime)),
					zap.String("panic", fmt.Sprint(rec)),
					zap.String("stacktrace", string(debug.Stack())),
				)
				// 尚未回寫才輸出
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal-server-error"})
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
