package service

import (
	"sync/atomic"

	client "academy/internal/database/client"
)

// HealthService：ready = 索引建立流程已跑完 且 連線可用
type HealthService struct {
	live        atomic.Bool
	provisioned atomic.Bool
	connected   atomic.Bool
}

func NewHealthService() *HealthService {
	s := &HealthService{}
	s.live.Store(true)
	return s
}

// SetReady 標記啟動流程（連線 + 索引）已完成，關閉時收回；連線狀態只由事件決定
func (s *HealthService) SetReady(v bool) {
	s.provisioned.Store(v)
}

// OnEvent 實作 client.Observer，斷線期間 readiness 回 503
func (s *HealthService) OnEvent(e client.Event) {
	switch e.Kind {
	case client.EventConnected:
		s.connected.Store(true)
	case client.EventDisconnected:
		s.connected.Store(false)
	}
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

func (s *HealthService) IsReady() bool {
	return s.provisioned.Load() && s.connected.Load()
}

func (s *HealthService) IsConnected() bool {
	return s.connected.Load()
}
