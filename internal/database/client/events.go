package client

import (
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/description"
)

// EventKind 連線生命週期事件
type EventKind string

const (
	EventConnected    EventKind = "connected"
	EventError        EventKind = "error"
	EventDisconnected EventKind = "disconnected"
)

type Event struct {
	Kind    EventKind
	Address string
	Err     error
	At      time.Time
}

// Observer 只被動接收事件，不做任何修復動作
type Observer interface {
	OnEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Observers 供 wire 注入多個 observer
type Observers []Observer

// eventBus 把 driver 的 SDAM 事件轉成 connected / error / disconnected
type eventBus struct {
	mu        sync.RWMutex
	observers []Observer

	stateMu sync.Mutex
	servers map[string]bool // address -> 是否可用
	now     func() time.Time
}

func newEventBus() *eventBus {
	return &eventBus{
		servers: make(map[string]bool),
		now:     time.Now,
	}
}

func (b *eventBus) subscribe(observer Observer) {
	if observer == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, observer)
}

func (b *eventBus) publish(kind EventKind, address string, err error) {
	b.mu.RLock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	e := Event{Kind: kind, Address: address, Err: err, At: b.now()}
	for _, observer := range observers {
		observer.OnEvent(e)
	}
}

func (b *eventBus) descriptionChanged(address string, available bool, lastErr error) {
	b.stateMu.Lock()
	was := b.servers[address]
	b.servers[address] = available
	b.stateMu.Unlock()

	switch {
	case available && !was:
		b.publish(EventConnected, address, nil)
	case !available && was:
		b.publish(EventDisconnected, address, lastErr)
	}
}

func (b *eventBus) heartbeatFailed(address string, err error) {
	b.publish(EventError, address, err)
}

func (b *eventBus) serverClosed(address string) {
	b.stateMu.Lock()
	was := b.servers[address]
	delete(b.servers, address)
	b.stateMu.Unlock()

	if was {
		b.publish(EventDisconnected, address, nil)
	}
}

// connected 是否至少有一台 server 可用
func (b *eventBus) connected() bool {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	for _, available := range b.servers {
		if available {
			return true
		}
	}
	return false
}

func (b *eventBus) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerDescriptionChanged: func(e *event.ServerDescriptionChangedEvent) {
			b.descriptionChanged(e.Address.String(), e.NewDescription.Kind != description.Unknown, e.NewDescription.LastError)
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			b.heartbeatFailed(serverAddress(e.ConnectionID), e.Failure)
		},
		ServerClosed: func(e *event.ServerClosedEvent) {
			b.serverClosed(e.Address.String())
		},
	}
}

// serverAddress 去掉 heartbeat 連線 ID 的 "[-N]" 後綴，與其他事件的 address 一致
func serverAddress(connectionID string) string {
	if i := strings.LastIndex(connectionID, "["); i > 0 && strings.HasSuffix(connectionID, "]") {
		return connectionID[:i]
	}
	return connectionID
}
