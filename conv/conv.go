// Copyright 2025 TextNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package conv provides the public API for batched 1-D FFT convolution.
//
// Convolve1D runs true (mirrored) convolution over every row of a 2-D
// signal against the matching row of a 2-D kernel, splitting rows
// across a worker pool.
//
// Example:
//
//	out, err := conv.Convolve1D(signal, kernel, conv.Full, conv.DefaultConfig())
package conv

import (
	"github.com/textnet-ml/textnet/internal/conv"
	"github.com/textnet-ml/textnet/internal/parallel"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// ErrDimension reports signal/kernel dimensions that cannot be convolved.
var ErrDimension = conv.ErrDimension

// Mode selects how much of the convolution is kept.
type Mode = conv.Mode

// Convolution modes.
const (
	Full  Mode = conv.Full
	Valid Mode = conv.Valid
)

// Config controls how rows are split across workers.
type Config = parallel.Config

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// WithWorkers returns a config with a fixed worker count.
func WithWorkers(n int) Config {
	return parallel.WithWorkers(n)
}

// Convolve1D convolves each row of signal with the matching row of
// kernel. Both must be 2-D with the same number of rows.
func Convolve1D(signal, kernel *tensor.Tensor, mode Mode, cfg Config) (*tensor.Tensor, error) {
	return conv.Convolve1D(signal, kernel, mode, cfg)
}

// OutputWidth reports the result width of a convolution in the given
// mode, or ErrDimension when the widths cannot be convolved.
func OutputWidth(signalW, kernelW int, mode Mode) (int, error) {
	return conv.OutputWidth(signalW, kernelW, mode)
}
