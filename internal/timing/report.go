package timing

import (
	"fmt"
	"strings"
)

// RunSummary is the aggregated timing of one run.
type RunSummary struct {
	Index   int       `json:"index"`
	Chunks  int       `json:"chunks"`
	Steps   int       `json:"steps"`
	TotalMS float64   `json:"total_ms"`
	ChunkMS []float64 `json:"chunk_ms"`
}

// Report is the rendered result of a benchmark.
type Report struct {
	Text string
	Runs []RunSummary
}

// Aggregate sums each run's chunk durations. Runs are reported
// independently, so warm-up effects stay visible.
func Aggregate(h *History) Report {
	var (
		sb   strings.Builder
		runs = make([]RunSummary, 0, h.Len())
	)
	h.Each(func(i int, s *Series) {
		chunks := s.Chunks()
		sum := RunSummary{
			Index:   i,
			Chunks:  len(chunks),
			Steps:   s.Steps(),
			ChunkMS: make([]float64, len(chunks)),
		}
		for j, c := range chunks {
			sum.ChunkMS[j] = c.Milliseconds()
			sum.TotalMS += sum.ChunkMS[j]
		}
		runs = append(runs, sum)
		fmt.Fprintf(&sb, "%s\n", sum)
	})
	return Report{Text: sb.String(), Runs: runs}
}

func (r RunSummary) String() string {
	return fmt.Sprintf("%02d - total time: %.2f ms", r.Index, r.TotalMS)
}
