package timing

import (
	"errors"
	"time"

	"github.com/emirpasic/gods/lists/arraylist"
)

var (
	ErrSealed   = errors.New("run series is sealed")
	ErrUnsealed = errors.New("run series is not sealed")
)

// Chunk is one measured slice of execution.
type Chunk struct {
	Steps   int
	Elapsed time.Duration
}

// Milliseconds returns the elapsed time in fractional milliseconds.
func (c Chunk) Milliseconds() float64 {
	return float64(c.Elapsed) / float64(time.Millisecond)
}

// Series is the ordered chunk measurements of one run. It is append-only
// until sealed.
type Series struct {
	chunks []Chunk
	sealed bool
}

func NewSeries() *Series { return &Series{} }

func (s *Series) Append(c Chunk) error {
	if s.sealed {
		return ErrSealed
	}
	s.chunks = append(s.chunks, c)
	return nil
}

func (s *Series) Seal()        { s.sealed = true }
func (s *Series) Sealed() bool { return s.sealed }
func (s *Series) Len() int     { return len(s.chunks) }

// Chunks returns a copy of the recorded chunks.
func (s *Series) Chunks() []Chunk {
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Steps returns the number of atomic steps covered by the series.
func (s *Series) Steps() int {
	n := 0
	for _, c := range s.chunks {
		n += c.Steps
	}
	return n
}

// TotalMilliseconds sums the chunk durations.
func (s *Series) TotalMilliseconds() float64 {
	total := 0.0
	for _, c := range s.chunks {
		total += c.Milliseconds()
	}
	return total
}

// History holds sealed run series in chronological order.
type History struct {
	runs *arraylist.List
}

func NewHistory() *History {
	return &History{runs: arraylist.New()}
}

// Append adds a sealed series as the next run.
func (h *History) Append(s *Series) error {
	if !s.Sealed() {
		return ErrUnsealed
	}
	h.runs.Add(s)
	return nil
}

func (h *History) Len() int { return h.runs.Size() }

// Run returns the series of run i.
func (h *History) Run(i int) (*Series, bool) {
	v, ok := h.runs.Get(i)
	if !ok {
		return nil, false
	}
	return v.(*Series), true
}

// Each visits runs in chronological order.
func (h *History) Each(fn func(i int, s *Series)) {
	h.runs.Each(func(i int, v interface{}) {
		fn(i, v.(*Series))
	})
}
