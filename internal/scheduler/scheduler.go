// Package scheduler runs maintenance tasks on interval-aligned boundaries.
package scheduler

import (
	"context"
	"time"

	"chartfeed/internal/logger"
)

// Aligned fires a task at every UTC boundary of Interval, shifted by Offset.
// With Interval=24h and Offset=15m the task runs daily at 00:15 UTC.
type Aligned struct {
	Name           string
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewAligned(ctx context.Context, name string, interval, offset time.Duration) *Aligned {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Aligned{
		Name:     name,
		Interval: interval,
		Offset:   offset,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks until the context is cancelled, running task once per boundary.
func (s *Aligned) Start(task func()) {
	if s == nil || task == nil {
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("[scheduler] %s: invalid interval=%s, exit", s.Name, s.Interval)
		return
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	logger.Infof("[scheduler] %s: started interval=%s offset=%s", s.Name, s.Interval, s.Offset)

	if s.RunImmediately {
		task()
	}

	for {
		wakeAt := s.nextWake(s.nowFn().UTC())
		if !s.waitUntil(wakeAt) {
			logger.Infof("[scheduler] %s: ctx done, exit", s.Name)
			return
		}
		task()
	}
}

// nextWake is the first shifted boundary strictly after now.
func (s *Aligned) nextWake(now time.Time) time.Time {
	boundary := now.Truncate(s.Interval).Add(s.Interval)
	return boundary.Add(s.Offset)
}

func (s *Aligned) waitUntil(target time.Time) bool {
	wait := target.Sub(s.nowFn().UTC())
	if wait <= 0 {
		select {
		case <-s.ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(wait)
	select {
	case <-s.ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
		return true
	}
}
