package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextWake(t *testing.T) {
	s := &Aligned{Interval: 24 * time.Hour, Offset: 15 * time.Minute}

	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 15, 0, 0, time.UTC), s.nextWake(now))

	// Exactly on a boundary still waits for the next one.
	onBoundary := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 15, 0, 0, time.UTC), s.nextWake(onBoundary))

	hourly := &Aligned{Interval: time.Hour}
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), hourly.nextWake(now))
}

func TestStartFiresOnBoundaries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s := NewAligned(ctx, "test", 20*time.Millisecond, 0)
	done := make(chan struct{})
	go func() {
		s.Start(func() { runs.Add(1) })
		close(done)
	}()

	time.Sleep(110 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestStartRunImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs atomic.Int32
	s := NewAligned(ctx, "test", time.Hour, 0)
	s.RunImmediately = true
	s.Start(func() { runs.Add(1) })

	assert.Equal(t, int32(1), runs.Load())
}

func TestStartRejectsBadInput(t *testing.T) {
	s := NewAligned(context.Background(), "test", 0, 0)
	// Returns instead of spinning.
	s.Start(func() {})

	var nilSched *Aligned
	nilSched.Start(func() {})
}
