// Package sim is a simulated compute backend. Models are YAML assets whose
// layers run as CPU kernels; device memory is plain host memory with
// explicit release tracking.
package sim

import (
	"errors"
	"fmt"
	"os"
	"time"

	yaml "github.com/goccy/go-yaml"

	"slicebench/internal/backend"
	"slicebench/internal/job"
)

// InputSpec declares one model input.
type InputSpec struct {
	Name  string `yaml:"name"`
	Shape []int  `yaml:"shape"`
}

// LayerSpec declares one layer. Op is one of noop, sleep or matmul.
type LayerSpec struct {
	Name   string `yaml:"name"`
	Op     string `yaml:"op"`
	CostUS int    `yaml:"cost_us"` // sleep duration in microseconds
	Size   int    `yaml:"size"`    // matmul dimension
}

// asset mirrors the YAML model file.
type asset struct {
	Name   string      `yaml:"name"`
	Inputs []InputSpec `yaml:"inputs"`
	Output []int       `yaml:"output"`
	Layers []LayerSpec `yaml:"layers"`
}

// Layer is one executable step of a Model.
type Layer struct {
	Name   string
	Kernel job.Kernel
}

// Model is a loaded simulated graph.
type Model struct {
	name   string
	inputs []InputSpec
	output backend.Shape
	layers []Layer
}

// NewModel builds a model directly. An empty input shape leaves the input
// unresolved.
func NewModel(name string, input backend.Shape, layers ...Layer) *Model {
	m := &Model{name: name, layers: layers}
	if input != nil {
		m.inputs = []InputSpec{{Name: "input", Shape: input}}
	}
	return m
}

func (m *Model) Name() string { return m.name }

// Layers returns the number of atomic steps one run takes.
func (m *Model) Layers() int { return len(m.layers) }

func (m *Model) InputShape() (backend.Shape, error) {
	if len(m.inputs) == 0 {
		return nil, fmt.Errorf("model %q declares no inputs: %w", m.name, backend.ErrShapeUnresolved)
	}
	shape := backend.Shape(m.inputs[0].Shape)
	if len(shape) == 0 {
		return nil, fmt.Errorf("input %q has no dimensions: %w", m.inputs[0].Name, backend.ErrShapeUnresolved)
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("input %q: %w", m.inputs[0].Name, err)
	}
	return shape, nil
}

// outputShape falls back to the input shape when the asset declares none.
func (m *Model) outputShape() backend.Shape {
	if len(m.output) > 0 {
		return m.output
	}
	shape, err := m.InputShape()
	if err != nil {
		return backend.Shape{1}
	}
	return shape
}

// Loader parses YAML model assets.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// LoadFile reads and parses the asset at path.
func (l *Loader) LoadFile(path string) (backend.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &backend.LoadError{Asset: path, Err: err}
	}
	m, err := l.Load(data)
	var le *backend.LoadError
	if errors.As(err, &le) {
		le.Asset = path
	}
	return m, err
}

func (l *Loader) Load(data []byte) (backend.Model, error) {
	if len(data) == 0 {
		return nil, &backend.LoadError{Err: errors.New("empty asset")}
	}
	var a asset
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, &backend.LoadError{Err: err}
	}
	if a.Name == "" {
		return nil, &backend.LoadError{Err: errors.New("model name is required")}
	}

	m := &Model{
		name:   a.Name,
		inputs: a.Inputs,
		output: a.Output,
		layers: make([]Layer, 0, len(a.Layers)),
	}
	for i, ls := range a.Layers {
		k, err := kernelFor(ls)
		if err != nil {
			return nil, &backend.LoadError{Err: fmt.Errorf("layer %d (%s): %w", i, ls.Name, err)}
		}
		name := ls.Name
		if name == "" {
			name = fmt.Sprintf("layer_%d", i)
		}
		m.layers = append(m.layers, Layer{Name: name, Kernel: k})
	}
	return m, nil
}

func kernelFor(ls LayerSpec) (job.Kernel, error) {
	switch ls.Op {
	case "", "noop":
		return job.Noop(), nil
	case "sleep":
		if ls.CostUS < 0 {
			return nil, fmt.Errorf("negative cost_us %d", ls.CostUS)
		}
		return job.Sleep(time.Duration(ls.CostUS) * time.Microsecond), nil
	case "matmul":
		if ls.Size <= 0 {
			return nil, fmt.Errorf("matmul needs a positive size, got %d", ls.Size)
		}
		return job.MatMul(ls.Size), nil
	default:
		return nil, fmt.Errorf("unknown op %q", ls.Op)
	}
}
