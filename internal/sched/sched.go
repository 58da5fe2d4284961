// Package sched provides a single-threaded timer scheduler driven by logical time.
//
// Nothing in this package starts goroutines. Timers fire only from inside
// Advance, on the caller's goroutine, so components that share a Scheduler
// never need locks between their timer callbacks and their regular calls.
package sched

import (
	"time"
)

// Scheduler owns a set of timers and the logical clock they are measured against.
type Scheduler struct {
	now    time.Time
	timers []*Timer
	seq    uint64
}

// New creates a Scheduler whose logical clock starts at now.
func New(now time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// Now returns the scheduler's logical time. Inside a timer callback this is
// the deadline the timer fired at.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// NewTimer creates an inactive single-shot timer that calls fn when it fires.
func (s *Scheduler) NewTimer(fn func()) *Timer {
	t := &Timer{s: s, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves logical time forward to now, firing every timer whose
// deadline is at or before it. Timers fire in deadline order, ties broken by
// the order they were armed. A callback may arm timers again; those fire in
// the same call if their new deadline is also due.
//
// Advance never moves time backwards. It returns the number of timers fired.
func (s *Scheduler) Advance(now time.Time) int {
	fired := 0
	for {
		next := s.due(now)
		if next == nil {
			break
		}
		if next.deadline.After(s.now) {
			s.now = next.deadline
		}
		next.active = false
		fired++
		if next.fn != nil {
			next.fn()
		}
	}
	if now.After(s.now) {
		s.now = now
	}
	return fired
}

// due returns the earliest active timer with a deadline at or before now.
func (s *Scheduler) due(now time.Time) *Timer {
	var best *Timer
	for _, t := range s.timers {
		if !t.active || t.deadline.After(now) {
			continue
		}
		if best == nil || t.deadline.Before(best.deadline) ||
			(t.deadline.Equal(best.deadline) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// StopAll cancels every timer owned by the scheduler.
func (s *Scheduler) StopAll() {
	for _, t := range s.timers {
		t.active = false
	}
}

// Pending returns the number of active timers.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if t.active {
			n++
		}
	}
	return n
}

// Timer is a single-shot timer owned by a Scheduler.
type Timer struct {
	s        *Scheduler
	fn       func()
	deadline time.Time
	seq      uint64
	active   bool
}

// Start arms the timer to fire d after the scheduler's current time.
// Starting an active timer restarts it.
func (t *Timer) Start(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.StartAt(t.s.now.Add(d))
}

// StartAt arms the timer for an absolute deadline.
func (t *Timer) StartAt(deadline time.Time) {
	t.s.seq++
	t.seq = t.s.seq
	t.deadline = deadline
	t.active = true
}

// Stop cancels the timer. Stopping an inactive timer is a no-op.
func (t *Timer) Stop() {
	t.active = false
}

// Active reports whether the timer is armed.
func (t *Timer) Active() bool {
	return t.active
}

// Deadline returns the time the timer fires at. Only meaningful while Active.
func (t *Timer) Deadline() time.Time {
	return t.deadline
}
