package backdrop

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_RendersEachTick(t *testing.T) {
	e, surface := newTestEngine(t, DefaultConfig())
	src := newManualSource()

	var callbacks atomic.Int32
	h := Start(context.Background(), e, src, func(*Engine) error {
		callbacks.Add(1)
		return nil
	})
	defer h.Stop()

	for i := 0; i < 3; i++ {
		require.True(t, src.tick())
	}
	require.Eventually(t, func() bool { return h.Frames() == 3 }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 3, callbacks.Load())
	assert.Contains(t, surface.ops(), "clear")
	assert.NoError(t, h.Err())
}

func TestDriver_DispatchSerializesInput(t *testing.T) {
	e, _ := newTestEngine(t, emptyConfig())
	src := newManualSource()

	var stats atomic.Value
	h := Start(context.Background(), e, src, func(e *Engine) error {
		stats.Store(e.Stats())
		return nil
	})
	defer h.Stop()

	require.True(t, h.Dispatch(Event{Kind: EventClick, X: 10, Y: 10}))
	require.True(t, h.Dispatch(Event{Kind: EventMove, X: 20, Y: 20}))
	require.True(t, src.tick())

	require.Eventually(t, func() bool { return stats.Load() != nil }, time.Second, 5*time.Millisecond)
	got := stats.Load().(Stats)
	assert.Equal(t, BurstLineCount, got.BurstLines)
	assert.Equal(t, 1, got.PointerLines)
}

func TestDriver_StopDetachesEverything(t *testing.T) {
	e, _ := newTestEngine(t, emptyConfig())
	src := newManualSource()

	var callbacks atomic.Int32
	h := Start(context.Background(), e, src, func(*Engine) error {
		callbacks.Add(1)
		return nil
	})

	h.Stop()
	h.Stop()

	assert.False(t, src.tick(), "no frame may be taken after teardown")
	assert.False(t, h.Dispatch(Event{Kind: EventClick, X: 1, Y: 1}))
	assert.Zero(t, callbacks.Load())
	assert.Zero(t, h.Frames())
	assert.Empty(t, e.Lines())
	assert.ErrorIs(t, h.Err(), ErrStopped)

	select {
	case <-src.stopped:
	default:
		t.Fatal("frame source was not stopped")
	}
}

func TestDriver_ContextCancel(t *testing.T) {
	e, _ := newTestEngine(t, emptyConfig())
	ctx, cancel := context.WithCancel(context.Background())
	h := Start(ctx, e, newManualSource(), nil)

	cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("driver did not exit on context cancel")
	}
	assert.False(t, h.Dispatch(Event{Kind: EventMove}))
}

func TestDriver_FrameErrorStops(t *testing.T) {
	e, _ := newTestEngine(t, emptyConfig())
	src := newManualSource()
	boom := errors.New("socket closed")

	h := Start(context.Background(), e, src, func(*Engine) error { return boom })
	require.True(t, src.tick())

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("driver did not exit on frame error")
	}
	assert.ErrorIs(t, h.Err(), boom)
	h.Stop()
}

func TestDriver_BadEventKeepsRunning(t *testing.T) {
	e, _ := newTestEngine(t, emptyConfig())
	src := newManualSource()
	h := Start(context.Background(), e, src, nil)
	defer h.Stop()

	require.True(t, h.Dispatch(Event{Kind: EventResize, Width: -1, Height: 10}))
	require.True(t, src.tick())
	require.Eventually(t, func() bool { return h.Frames() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Viewport{Width: 800, Height: 600}, e.Viewport())
}

func TestNewTicker(t *testing.T) {
	src := NewTicker(200)
	defer src.Stop()
	select {
	case <-src.C():
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}
}
