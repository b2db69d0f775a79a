package handler

import (
	"net/http"

	client "academy/internal/database/client"
	"academy/internal/service"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthStatus *service.HealthService
	mongoClient  *client.MongoClient
}

func NewHealthHandler(status *service.HealthService, mongoClient *client.MongoClient) *HealthHandler {
	return &HealthHandler{healthStatus: status, mongoClient: mongoClient}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	if h.healthStatus.IsLive() {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
		return
	}
	c.Status(http.StatusServiceUnavailable)
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.healthStatus.IsReady() {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":    "not_ready",
		"connected": h.healthStatus.IsConnected(),
	})
}

// Indexes 回傳最近一次索引建立的結果（失敗的索引會列出原因）
func (h *HealthHandler) Indexes(c *gin.Context) {
	report := h.mongoClient.LastReport()
	failures := make([]gin.H, 0, report.Failed())
	for _, result := range report.Results {
		if result.Err == nil {
			continue
		}
		failures = append(failures, gin.H{
			"collection": string(result.Spec.Collection),
			"index":      result.Name,
			"reason":     string(result.Reason),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"database":  report.Database,
		"attempted": report.Attempted(),
		"created":   report.Created(),
		"failed":    report.Failed(),
		"failures":  failures,
	})
}
