// Package streamtest provides a deterministic clock for driving simulators
// in tests.
package streamtest

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"
)

// ManualClock only moves when Advance is called. Due callbacks run one at
// a time, in due order, with Now set to their due time and no clock lock
// held, so a callback may read Now or arm new timers.
type ManualClock struct {
	*testingclock.FakePassiveClock

	mu     sync.Mutex
	timers []*manualTimer
	nextID uint64
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{FakePassiveClock: testingclock.NewFakePassiveClock(start)}
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	t := &manualTimer{
		clock: c,
		id:    c.nextID,
		due:   c.Now().Add(d),
		fn:    f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer due at or
// before the new time, including timers armed by callbacks on the way.
func (c *ManualClock) Advance(d time.Duration) {
	target := c.Now().Add(d)

	for {
		t := c.popDue(target)
		if t == nil {
			break
		}
		if t.due.After(c.Now()) {
			c.SetTime(t.due)
		}
		t.fn()
	}

	c.SetTime(target)
}

// Pending reports how many timers are armed and not yet fired.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *ManualClock) popDue(target time.Time) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, t := range c.timers {
		if t.due.After(target) {
			continue
		}
		if idx < 0 || t.due.Before(c.timers[idx].due) ||
			(t.due.Equal(c.timers[idx].due) && t.id < c.timers[idx].id) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}

	t := c.timers[idx]
	c.timers = append(c.timers[:idx], c.timers[idx+1:]...)
	return t
}

func (c *ManualClock) remove(t *manualTimer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, candidate := range c.timers {
		if candidate == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	clock *ManualClock
	id    uint64
	due   time.Time
	fn    func()
}

// C is nil, as for timers made by time.AfterFunc.
func (t *manualTimer) C() <-chan time.Time {
	return nil
}

func (t *manualTimer) Stop() bool {
	return t.clock.remove(t)
}

func (t *manualTimer) Reset(d time.Duration) bool {
	active := t.clock.remove(t)

	t.clock.mu.Lock()
	t.clock.nextID++
	t.id = t.clock.nextID
	t.due = t.clock.Now().Add(d)
	t.clock.timers = append(t.clock.timers, t)
	t.clock.mu.Unlock()

	return active
}
