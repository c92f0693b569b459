package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"slicebench/internal/timing"
)

// CSVWriter writes one row per run. It overwrites the file if it exists.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	header := []string{"run", "chunks", "steps", "total_ms", "chunk_ms"}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

func (cw *CSVWriter) Publish(r timing.Report) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, run := range r.Runs {
		chunks := make([]string, len(run.ChunkMS))
		for i, ms := range run.ChunkMS {
			chunks[i] = fmt.Sprintf("%.4f", ms)
		}
		record := []string{
			fmt.Sprintf("%02d", run.Index),
			strconv.Itoa(run.Chunks),
			strconv.Itoa(run.Steps),
			fmt.Sprintf("%.2f", run.TotalMS),
			strings.Join(chunks, ";"),
		}
		if err := cw.writer.Write(record); err != nil {
			return err
		}
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
