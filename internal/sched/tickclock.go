// internal/sched/tickclock.go

package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// TickClock is the fixed-rate tick source. Ch holds at most one pending
// tick; ticks that fire while one is pending are dropped and counted, so a
// slow consumer skips frames instead of building a backlog.
type TickClock struct {
	Ch      chan struct{}
	count   atomic.Int64
	dropped atomic.Int64
	stop    chan struct{}
	once    sync.Once
}

func NewTickClock() *TickClock {
	return &TickClock{
		Ch:   make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
}

// Start begins emitting ticks at the given interval.
func (c *TickClock) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case c.Ch <- struct{}{}:
					c.count.Add(1)
				default:
					c.dropped.Add(1)
				}
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop halts the clock. It is safe to call more than once.
func (c *TickClock) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Count returns how many ticks were delivered.
func (c *TickClock) Count() int64 {
	return c.count.Load()
}

// Dropped returns how many ticks were skipped because the consumer was busy.
func (c *TickClock) Dropped() int64 {
	return c.dropped.Load()
}
