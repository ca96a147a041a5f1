// Package tensor implements the dense float64 tensor used throughout TextNet.
//
// Tensors are flat row-major buffers paired with a Shape. Layout logic
// (named axes, folding, broadcasting) lives in internal/space; this
// package only knows about physical dimensions.
package tensor

import (
	"fmt"
	"strings"
)

// Tensor is a dense row-major tensor of float64 values.
type Tensor struct {
	data  []float64
	shape Shape
}

// New creates a zero-filled tensor with the given shape.
// Panics if the shape is invalid; shapes are computed, not user input.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return &Tensor{
		data:  make([]float64, shape.NumElements()),
		shape: shape.Clone(),
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Rank returns the number of physical dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Data returns the tensor's backing slice.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	strides := t.shape.ComputeStrides()
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := New(t.shape)
	copy(c.data, t.data)
	return c
}

// Reshape returns a tensor with the same data and a new shape.
// The element count must be preserved; a mismatch is a programming
// error in layout code, so it panics rather than returning an error.
func (t *Tensor) Reshape(shape Shape) *Tensor {
	if shape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, t.NumElements(), shape, shape.NumElements()))
	}
	return &Tensor{data: t.data, shape: shape.Clone()}
}

// Transpose permutes the tensor's dimensions and returns a new tensor
// holding the rearranged data.
//
// perm must be a permutation of [0, rank).
func (t *Tensor) Transpose(perm []int) *Tensor {
	if len(perm) != len(t.shape) {
		panic(fmt.Sprintf("transpose: permutation length %d does not match rank %d", len(perm), len(t.shape)))
	}
	seen := make([]bool, len(perm))
	outShape := make(Shape, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			panic(fmt.Sprintf("transpose: invalid permutation %v", perm))
		}
		seen[p] = true
		outShape[i] = t.shape[p]
	}

	out := New(outShape)
	if t.NumElements() == 0 {
		return out
	}

	inStrides := t.shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	idx := make([]int, len(outShape))
	for o := range out.data {
		inOff := 0
		rem := o
		for d := range outShape {
			idx[d] = rem / outStrides[d]
			rem %= outStrides[d]
			inOff += idx[d] * inStrides[perm[d]]
		}
		out.data[o] = t.data[inOff]
	}
	return out
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor%v", t.shape)
	return sb.String()
}
