package job

import (
	"math"
	"time"
)

// Kernel is one atomic unit of layer work.
type Kernel func() error

// Noop returns a kernel that does nothing.
func Noop() Kernel {
	return func() error { return nil }
}

// Sleep returns a kernel that blocks for d, standing in for a device kernel
// of known cost.
func Sleep(d time.Duration) Kernel {
	return func() error {
		if d > 0 {
			time.Sleep(d)
		}
		return nil
	}
}

// sink keeps MatMul results observable so the loop is not optimized away.
var sink float64

// MatMul returns a kernel that multiplies two n×n matrices on the CPU.
func MatMul(n int) Kernel {
	return func() error {
		if n <= 0 {
			return nil
		}
		a := make([]float64, n*n)
		b := make([]float64, n*n)
		c := make([]float64, n*n)
		for i := range a {
			a[i] = float64(i%7) * 0.5
			b[i] = float64(i%5) * 0.25
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				sum := 0.0
				for k := 0; k < n; k++ {
					sum += a[i*n+k] * b[k*n+j]
				}
				c[i*n+j] = sum
			}
		}
		sink = math.Sqrt(c[0] + c[n*n-1])
		return nil
	}
}

// Chain runs kernels in order and stops at the first error.
func Chain(ks ...Kernel) Kernel {
	return func() error {
		for _, k := range ks {
			if err := k(); err != nil {
				return err
			}
		}
		return nil
	}
}
