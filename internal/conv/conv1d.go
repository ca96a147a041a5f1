// Package conv implements the batched 1-D convolution primitive behind
// the sentence-convolution layer.
//
// Convolution is computed in the frequency domain: both operands are
// zero-padded to a transform-friendly length, multiplied pointwise after
// a real FFT, and inverse-transformed. This is exact linear convolution
// up to floating-point tolerance; no circular wraparound is exposed.
package conv

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/textnet-ml/textnet/internal/parallel"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// Mode selects how much of the convolution is kept.
type Mode int

const (
	// Full keeps every position with any overlap: output width is
	// signal + kernel - 1 (the "wide" convolution).
	Full Mode = iota
	// Valid keeps only fully-overlapping positions: output width is
	// signal - kernel + 1.
	Valid
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Valid:
		return "valid"
	default:
		return "unknown"
	}
}

// ErrDimension reports operand widths that cannot be convolved in the
// requested mode.
var ErrDimension = errors.New("conv: dimension error")

// Convolve1D convolves each row of signal with the corresponding row of
// kernel along the last axis.
//
// Both operands must be 2-D with the same leading (flat batch)
// dimension; broadcasting a single kernel across signal rows is the
// caller's job, via the space package. Rows are independent and are
// distributed across the worker pool described by cfg; the worker count
// never changes the result.
func Convolve1D(signal, kernel *tensor.Tensor, mode Mode, cfg parallel.Config) (*tensor.Tensor, error) {
	if signal.Rank() != 2 || kernel.Rank() != 2 {
		return nil, fmt.Errorf("convolve1d: expected 2D operands, got %v and %v: %w",
			signal.Shape(), kernel.Shape(), ErrDimension)
	}

	rows, sw := signal.Shape()[0], signal.Shape()[1]
	krows, kw := kernel.Shape()[0], kernel.Shape()[1]
	if rows != krows {
		return nil, fmt.Errorf("convolve1d: signal has %d rows but kernel has %d: %w", rows, krows, ErrDimension)
	}
	if mode == Valid && sw < kw {
		return nil, fmt.Errorf("convolve1d: valid mode needs signal width %d >= kernel width %d: %w",
			sw, kw, ErrDimension)
	}

	fullW := sw + kw - 1
	outW := fullW
	crop := 0
	if mode == Valid {
		outW = sw - kw + 1
		crop = kw - 1
	}

	// Next power of two keeps the transforms fast for any input width.
	n := nextPow2(fullW)
	out := tensor.New(tensor.Shape{rows, outW})

	// FFT plans hold scratch space, so each in-flight row takes its own
	// plan from the pool.
	plans := sync.Pool{New: func() any { return fourier.NewFFT(n) }}

	sdata := signal.Data()
	kdata := kernel.Data()
	odata := out.Data()

	parallel.For(rows, func(r int) {
		fft := plans.Get().(*fourier.FFT)
		defer plans.Put(fft)

		padded := make([]float64, n)
		copy(padded, sdata[r*sw:(r+1)*sw])
		sc := fft.Coefficients(nil, padded)

		for i := range padded {
			padded[i] = 0
		}
		copy(padded, kdata[r*kw:(r+1)*kw])
		kc := fft.Coefficients(nil, padded)

		for i := range sc {
			sc[i] *= kc[i]
		}

		// Sequence is unnormalized: scale by 1/n.
		full := fft.Sequence(nil, sc)
		scale := 1 / float64(n)
		dst := odata[r*outW : (r+1)*outW]
		for i := range dst {
			dst[i] = full[crop+i] * scale
		}
	}, cfg)

	return out, nil
}

// OutputWidth returns the width Convolve1D produces for the given
// operand widths, or an error for an impossible valid convolution.
func OutputWidth(signalW, kernelW int, mode Mode) (int, error) {
	switch mode {
	case Valid:
		if signalW < kernelW {
			return 0, fmt.Errorf("valid convolution needs signal width %d >= kernel width %d: %w",
				signalW, kernelW, ErrDimension)
		}
		return signalW - kernelW + 1, nil
	default:
		return signalW + kernelW - 1, nil
	}
}

func nextPow2(n int) int {
	if n < 2 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
