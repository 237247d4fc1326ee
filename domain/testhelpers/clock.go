package testhelpers

import (
	"sync"
	"time"

	"drawdown/domain/interfaces"
)

// FakeClock is a deterministic interfaces.Clock for tests. Timers never
// fire on their own; the test drains them with RunNext or RunAll. Sleep
// returns immediately after advancing the fake time.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	f       func()
	stopped bool
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Unix(0, 0)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the fake time forward without firing timers.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FakeClock) Sleep(d time.Duration) {
	c.Advance(d)
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) interfaces.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, f: f}
	c.pending = append(c.pending, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, p := range t.clock.pending {
		if p == t {
			t.clock.pending = append(t.clock.pending[:i], t.clock.pending[i+1:]...)
			return true
		}
	}
	return false
}

// PendingTimers reports how many scheduled callbacks have not fired.
func (c *FakeClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// RunNext fires the oldest pending timer callback. It reports whether a
// timer fired.
func (c *FakeClock) RunNext() bool {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return false
	}
	t := c.pending[0]
	c.pending = c.pending[1:]
	t.stopped = true
	c.mu.Unlock()

	t.f()
	return true
}

// RunAll fires pending timers, including ones scheduled by the callbacks
// themselves, up to a safety limit.
func (c *FakeClock) RunAll() {
	for i := 0; i < 10000; i++ {
		if !c.RunNext() {
			return
		}
	}
}
