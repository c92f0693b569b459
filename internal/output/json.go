package output

import (
	"encoding/json"
	"os"
	"sync"

	"slicebench/internal/timing"
)

// JSONWriter writes one JSON line per run.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{file: f, encoder: json.NewEncoder(f)}, nil
}

func (jw *JSONWriter) Publish(r timing.Report) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, run := range r.Runs {
		if err := jw.encoder.Encode(run); err != nil {
			return err
		}
	}
	return nil
}

func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
