package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopTicksOnlyWhileRunning(t *testing.T) {
	var running atomic.Bool
	var ticks atomic.Int32
	loop := New(5*time.Millisecond, running.Load, func(time.Time) {
		ticks.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), ticks.Load(), "stopped loop must not tick")

	running.Store(true)
	loop.Wake()
	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	running.Store(false)
	loop.Wake()
	time.Sleep(20 * time.Millisecond)
	settled := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load(), "paused loop must not tick")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestLoopTicksAreSequential(t *testing.T) {
	var mu sync.Mutex
	inTick := false
	overlapped := false
	var ticks atomic.Int32

	loop := New(time.Millisecond, func() bool { return true }, func(time.Time) {
		mu.Lock()
		if inTick {
			overlapped = true
		}
		inTick = true
		mu.Unlock()

		time.Sleep(3 * time.Millisecond)

		mu.Lock()
		inTick = false
		mu.Unlock()
		ticks.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.Eventually(t, func() bool { return ticks.Load() >= 5 }, time.Second, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, overlapped)
}

func TestNewDefaultsInterval(t *testing.T) {
	loop := New(0, func() bool { return false }, func(time.Time) {})
	assert.Equal(t, time.Second, loop.Interval())
}
