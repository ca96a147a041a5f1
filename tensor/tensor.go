// Copyright 2025 TextNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in the
// TextNet framework.
//
// Tensors are dense row-major float64 buffers paired with a Shape.
// Named-axis layout logic lives in the space package; this package only
// deals in physical dimensions.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
//	y := tensor.Randn(tensor.Shape{2, 3})
//	z := x.Add(y)
package tensor

import (
	"github.com/textnet-ml/textnet/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense float64 tensor.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
// Panics if the shape is invalid.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor backed by a copy of data.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor of standard normal samples.
func Randn(shape Shape) *Tensor {
	return tensor.Randn(shape)
}
