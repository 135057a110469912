package connector

import (
	"sync"
	"time"
)

// Scheduler runs fn after delay without blocking the caller.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// TimerScheduler fires callbacks on timers. Each callback also waits for the
// one scheduled before it, so callbacks run in scheduling order even when a
// later delay is shorter.
type TimerScheduler struct {
	mu   sync.Mutex
	last chan struct{}
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	prev := s.last
	done := make(chan struct{})
	s.last = done
	s.mu.Unlock()

	time.AfterFunc(delay, func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		fn()
	})
}

// Wait blocks until every callback scheduled so far has run.
func (s *TimerScheduler) Wait() {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last != nil {
		<-last
	}
}
