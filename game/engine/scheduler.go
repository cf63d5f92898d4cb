package engine

import (
	"sync"
	"time"
)

// Timer is a pending delayed callback
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. Engines never call time.AfterFunc directly
// so tests can drive them with virtual time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// TimeScheduler is the wall-clock Scheduler
type TimeScheduler struct{}

// AfterFunc schedules f on its own goroutine after d
func (TimeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Now returns the current wall-clock time
func (TimeScheduler) Now() time.Time {
	return time.Now()
}

// ManualScheduler is a Scheduler whose clock only moves when Advance is called.
// Callbacks due at the same instant run in the order they were scheduled.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s    *ManualScheduler
	when time.Time
	seq  int
	f    func()
	done bool
}

// NewManualScheduler creates a virtual clock starting at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// AfterFunc registers f to run once the virtual clock reaches now+d
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{s: s, when: s.now.Add(d), seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Now returns the virtual time
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d, running every callback that falls due.
// Callbacks run without the scheduler lock held and may schedule further callbacks.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.popDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.when
		s.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of callbacks that have not fired or been stopped
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// popDue removes and returns the earliest callback due at or before target. Caller holds s.mu.
func (s *ManualScheduler) popDue(target time.Time) *manualTimer {
	idx := -1
	for i, t := range s.pending {
		if t.when.After(target) {
			continue
		}
		if idx == -1 || t.when.Before(s.pending[idx].when) ||
			(t.when.Equal(s.pending[idx].when) && t.seq < s.pending[idx].seq) {
			idx = i
		}
	}
	if idx == -1 {
		return nil
	}

	t := s.pending[idx]
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	t.done = true
	return t
}

// Stop cancels the callback. It reports false if it already fired or was stopped.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	for i, p := range t.s.pending {
		if p == t {
			t.s.pending = append(t.s.pending[:i], t.s.pending[i+1:]...)
			break
		}
	}
	return true
}
