package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeLifecycle 模擬 App：Run 可以卡在「連線 / 建索引」直到 Stop 被呼叫
type fakeLifecycle struct {
	mu       sync.Mutex
	runErr   error
	block    bool
	started  chan struct{}
	stopping chan struct{}
	stops    int
	stopErr  error
}

func newFakeLifecycle(block bool) *fakeLifecycle {
	return &fakeLifecycle{block: block, started: make(chan struct{}), stopping: make(chan struct{})}
}

func (f *fakeLifecycle) Run(ctx context.Context) error {
	close(f.started)
	if f.block {
		<-f.stopping
		return errors.New("connect aborted by shutdown")
	}
	return f.runErr
}

func (f *fakeLifecycle) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.stops == 1 {
		close(f.stopping)
	}
	return f.stopErr
}

func TestServe_SignalDuringStartupStopsAndExitsCleanly(t *testing.T) {
	observedCore, logs := observer.New(zapcore.InfoLevel)
	app := newFakeLifecycle(true)
	quit := make(chan os.Signal, 1)

	result := make(chan error, 1)
	go func() { result <- serve(context.Background(), zap.New(observedCore), app, quit, time.Second) }()

	<-app.started
	quit <- syscall.SIGINT

	select {
	case err := <-result:
		assert.NoError(t, err, "graceful stop exits 0")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after SIGINT")
	}
	assert.Equal(t, 1, app.stops)
	entries := logs.FilterMessage("shutdown app ...").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "interrupt", entries[0].ContextMap()["signal"])
}

func TestServe_SignalAfterStartup(t *testing.T) {
	app := newFakeLifecycle(false)
	quit := make(chan os.Signal, 1)

	result := make(chan error, 1)
	go func() { result <- serve(context.Background(), zap.NewNop(), app, quit, time.Second) }()

	<-app.started
	quit <- syscall.SIGTERM

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after SIGTERM")
	}
	assert.Equal(t, 1, app.stops)
}

func TestServe_RunErrorSkipsStop(t *testing.T) {
	app := newFakeLifecycle(false)
	app.runErr = errors.New("invalid cron spec")

	err := serve(context.Background(), zap.NewNop(), app, make(chan os.Signal), time.Second)

	assert.EqualError(t, err, "invalid cron spec")
	assert.Zero(t, app.stops)
}

func TestServe_StopErrorIsReturned(t *testing.T) {
	app := newFakeLifecycle(false)
	app.stopErr = errors.New("mongo disconnect failed")
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM

	err := serve(context.Background(), zap.NewNop(), app, quit, time.Second)

	assert.EqualError(t, err, "mongo disconnect failed")
}
