package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingSyncer struct {
	calls atomic.Int32
}

func (c *countingSyncer) SyncPendingCalendarEvents(context.Context, int) (int, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	syncer := &countingSyncer{}
	scheduler := NewScheduler(syncer, 10*time.Millisecond, zap.NewNop())

	scheduler.Start(context.Background())
	assert.Eventually(t, func() bool { return syncer.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	scheduler.Stop()
	stopped := syncer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, syncer.calls.Load())

	// повторный Stop безопасен
	scheduler.Stop()
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	syncer := &countingSyncer{}
	scheduler := NewScheduler(syncer, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)
	assert.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}
