package timing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by step on every reading.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestStopwatchRestartDiscardsPreviousInterval(t *testing.T) {
	sw := NewStopwatch(&stepClock{step: time.Millisecond})

	sw.Restart()
	assert.Equal(t, time.Millisecond, sw.Stop())

	sw.Restart()
	assert.True(t, sw.Running())
	assert.Equal(t, time.Millisecond, sw.Stop())
	assert.False(t, sw.Running())
	assert.Equal(t, time.Millisecond, sw.Stop(), "stopping twice keeps the measurement")
}

func TestStopwatchStartAccumulates(t *testing.T) {
	sw := NewStopwatch(&stepClock{step: 2 * time.Millisecond})
	sw.Start()
	sw.Stop()
	sw.Start()
	assert.Equal(t, 4*time.Millisecond, sw.Stop())
	assert.Equal(t, 4*time.Millisecond, sw.Elapsed())
}

func TestStopwatchDefaultsToSystemClock(t *testing.T) {
	sw := NewStopwatch(nil)
	sw.Restart()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, sw.Stop(), time.Millisecond)
}

func TestSeriesSealing(t *testing.T) {
	s := NewSeries()
	require.NoError(t, s.Append(Chunk{Steps: 5, Elapsed: 1500 * time.Microsecond}))
	require.NoError(t, s.Append(Chunk{Steps: 2, Elapsed: 500 * time.Microsecond}))

	h := NewHistory()
	assert.ErrorIs(t, h.Append(s), ErrUnsealed)

	s.Seal()
	assert.ErrorIs(t, s.Append(Chunk{Steps: 1}), ErrSealed)
	require.NoError(t, h.Append(s))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 7, s.Steps())
	assert.InDelta(t, 2.0, s.TotalMilliseconds(), 1e-9)

	got, ok := h.Run(0)
	require.True(t, ok)
	assert.Same(t, s, got)
	_, ok = h.Run(1)
	assert.False(t, ok)
}

func TestSeriesChunksIsACopy(t *testing.T) {
	s := NewSeries()
	require.NoError(t, s.Append(Chunk{Steps: 1, Elapsed: time.Millisecond}))
	chunks := s.Chunks()
	chunks[0].Steps = 99
	assert.Equal(t, 1, s.Chunks()[0].Steps)
}

func sealed(chunks ...Chunk) *Series {
	s := NewSeries()
	for _, c := range chunks {
		_ = s.Append(c)
	}
	s.Seal()
	return s
}

func TestAggregate(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Append(sealed(
		Chunk{Steps: 5, Elapsed: 3 * time.Millisecond},
		Chunk{Steps: 5, Elapsed: 2 * time.Millisecond},
		Chunk{Steps: 2, Elapsed: 250 * time.Microsecond},
	)))
	require.NoError(t, h.Append(sealed(
		Chunk{Steps: 0, Elapsed: 12345 * time.Nanosecond},
	)))

	r := Aggregate(h)

	want := "00 - total time: 5.25 ms\n01 - total time: 0.01 ms\n"
	if diff := cmp.Diff(want, r.Text); diff != "" {
		t.Errorf("report text mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, r.Runs, 2)
	assert.Equal(t, 3, r.Runs[0].Chunks)
	assert.Equal(t, 12, r.Runs[0].Steps)
	assert.InDelta(t, 5.25, r.Runs[0].TotalMS, 1e-9)
	assert.Equal(t, []float64{3, 2, 0.25}, r.Runs[0].ChunkMS)
	assert.Equal(t, 1, r.Runs[1].Index)
}

func TestAggregateIsIdempotent(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Append(sealed(Chunk{Steps: 3, Elapsed: 7 * time.Millisecond})))

	first := Aggregate(h)
	second := Aggregate(h)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("aggregate changed between calls (-first +second):\n%s", diff)
	}
}

func TestAggregateEmptyHistory(t *testing.T) {
	r := Aggregate(NewHistory())
	assert.Empty(t, r.Text)
	assert.Empty(t, r.Runs)
}
