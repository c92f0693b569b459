// Package backend declares what the benchmark core needs from a compute
// backend: a loaded model, an attachment that dispatches it, a resumable
// execution handle and the buffers that flow in and out.
package backend

// Kind selects the execution target an Attachment dispatches to.
type Kind string

const (
	KindCPU    Kind = "cpu"
	KindGPUSim Kind = "gpu-sim"
)

// Model is an immutable, loaded compute graph.
type Model interface {
	Name() string
	// InputShape resolves the shape of the first declared input.
	InputShape() (Shape, error)
}

// Loader turns a serialized model asset into a Model.
// Malformed assets fail with *LoadError.
type Loader interface {
	Load(asset []byte) (Model, error)
}

// Backend attaches a model to an execution target.
type Backend interface {
	Attach(m Model, kind Kind) (Attachment, error)
}

// Attachment is a model bound to a backend. It owns the device resources
// needed to run the model and is released with Close.
type Attachment interface {
	// NewInput allocates a device-resident input buffer. The caller owns it.
	NewInput(shape Shape) (Buffer, error)

	// ScheduleIterable starts one run of the model against input and returns
	// a handle that executes it one step at a time. Only one execution may be
	// in flight per attachment.
	ScheduleIterable(input Buffer) (Execution, error)

	// PeekOutput hands over the output of the last completed execution.
	// The caller owns the returned buffer and must Release it.
	PeekOutput() (DeviceBuffer, error)

	Close() error
}

// Execution is a lazy, finite, non-restartable sequence of atomic steps.
type Execution interface {
	// Advance runs the next atomic step. It returns false, running nothing,
	// once no steps remain.
	Advance() (bool, error)

	// Done reports whether every step has run.
	Done() bool
}

// Buffer is a tensor with an explicit release.
type Buffer interface {
	Shape() Shape
	Release() error
}

// DeviceBuffer lives in backend memory and must be copied to the host to be read.
type DeviceBuffer interface {
	Buffer
	ReadbackAndClone() (HostBuffer, error)
}

// HostBuffer is a host-readable copy of a device buffer.
type HostBuffer interface {
	Buffer
	Data() ([]float32, error)
}
