package sim

import (
	"sync/atomic"

	"slicebench/internal/backend"
)

// tensor is the storage shared by device and host buffers. live counts the
// unreleased buffers of the owning attachment.
type tensor struct {
	shape    backend.Shape
	data     []float32
	released atomic.Bool
	live     *atomic.Int64
}

func newTensor(shape backend.Shape, fill float32, live *atomic.Int64) *tensor {
	data := make([]float32, shape.Size())
	for i := range data {
		data[i] = fill
	}
	live.Add(1)
	return &tensor{shape: shape, data: data, live: live}
}

func (t *tensor) Shape() backend.Shape { return t.shape }

// Release is idempotent.
func (t *tensor) Release() error {
	if t.released.CompareAndSwap(false, true) {
		t.data = nil
		t.live.Add(-1)
	}
	return nil
}

type deviceBuffer struct{ *tensor }

func (b deviceBuffer) ReadbackAndClone() (backend.HostBuffer, error) {
	if b.released.Load() {
		return nil, backend.ErrReleased
	}
	host := &tensor{shape: b.shape, data: make([]float32, len(b.data)), live: b.live}
	copy(host.data, b.data)
	b.live.Add(1)
	return hostBuffer{host}, nil
}

type hostBuffer struct{ *tensor }

func (b hostBuffer) Data() ([]float32, error) {
	if b.released.Load() {
		return nil, backend.ErrReleased
	}
	return b.data, nil
}
