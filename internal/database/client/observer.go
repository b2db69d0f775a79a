package client

import (
	"academy/internal/telemetry"

	"go.uber.org/zap"
)

// NewLoggingObserver 記錄連線事件：connected=info、error=error、disconnected=warn
func NewLoggingObserver(logger *zap.Logger) Observer {
	return ObserverFunc(func(e Event) {
		fields := []zap.Field{zap.String("address", e.Address)}
		switch e.Kind {
		case EventConnected:
			logger.Info("mongodb connection established", fields...)
		case EventError:
			logger.Error("mongodb connection error", append(fields, zap.Error(e.Err))...)
		case EventDisconnected:
			if e.Err != nil {
				fields = append(fields, zap.Error(e.Err))
			}
			logger.Warn("mongodb connection disconnected", fields...)
		}
	})
}

// NewMetricObserver 以 event 標籤累計連線事件
func NewMetricObserver(metric *telemetry.Metric) Observer {
	return ObserverFunc(func(e Event) {
		metric.ObserveConnectionEvent(string(e.Kind))
	})
}
