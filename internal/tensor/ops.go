package tensor

import (
	"fmt"
	"math"
)

// Add returns the elementwise sum of two same-shaped tensors.
func (t *Tensor) Add(other *Tensor) *Tensor {
	t.requireSameShape("add", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v + other.data[i]
	}
	return out
}

// Mul returns the elementwise (Hadamard) product of two same-shaped tensors.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	t.requireSameShape("mul", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v * other.data[i]
	}
	return out
}

// Scale returns the tensor multiplied by a scalar.
func (t *Tensor) Scale(s float64) *Tensor {
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v * s
	}
	return out
}

// Exp returns the elementwise exponential.
func (t *Tensor) Exp() *Tensor {
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = math.Exp(v)
	}
	return out
}

// MatMul computes the matrix product of two 2-D tensors.
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D operands, got %v and %v", t.shape, other.shape))
	}
	if t.shape[1] != other.shape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v x %v", t.shape, other.shape))
	}

	m, k, n := t.shape[0], t.shape[1], other.shape[1]
	out := New(Shape{m, n})
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			a := t.data[i*k+p]
			if a == 0 {
				continue
			}
			row := other.data[p*n : (p+1)*n]
			dst := out.data[i*n : (i+1)*n]
			for j, b := range row {
				dst[j] += a * b
			}
		}
	}
	return out
}

func (t *Tensor) requireSameShape(op string, other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("%s: shape %v does not match %v", op, t.shape, other.shape))
	}
}
