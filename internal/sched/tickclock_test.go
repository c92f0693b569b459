package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickClockDeliversTicks(t *testing.T) {
	c := NewTickClock()
	c.Start(time.Millisecond)
	defer c.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-c.Ch:
		case <-time.After(time.Second):
			t.Fatal("no tick delivered")
		}
	}
	assert.GreaterOrEqual(t, c.Count(), int64(3))
}

func TestTickClockDropsTicksWhileBusy(t *testing.T) {
	c := NewTickClock()
	c.Start(time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	c.Stop()
	c.Stop()

	assert.Equal(t, int64(1), c.Count(), "one tick is buffered, the rest are skipped")
	assert.Positive(t, c.Dropped())
}
