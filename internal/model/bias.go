package model

import (
	"fmt"

	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// Bias adds a learned per-(feature map, dimension) offset to every word
// position of every batch element. It is the simplest consumer of the
// generic axis accessors: it never changes the space, only the values.
type Bias struct {
	nInputDims   int
	nFeatureMaps int

	b *tensor.Tensor // (nFeatureMaps, nInputDims)
}

// NewBias creates the layer with a zero offset.
func NewBias(nInputDims, nFeatureMaps int) (*Bias, error) {
	if nInputDims < 1 || nFeatureMaps < 1 {
		return nil, fmt.Errorf("bias: invalid construction d=%d f=%d: %w",
			nInputDims, nFeatureMaps, ErrDimensionMismatch)
	}
	return &Bias{
		nInputDims:   nInputDims,
		nFeatureMaps: nFeatureMaps,
		b:            tensor.Zeros(tensor.Shape{nFeatureMaps, nInputDims}),
	}, nil
}

// FProp adds the offset. The output layout equals the working layout,
// so Above is simply the transformed Below.
func (l *Bias) FProp(x *tensor.Tensor, meta *Meta) (*tensor.Tensor, *Meta, *FpropState, error) {
	working := meta.Below

	exts, err := working.GetExtents(AxisDim, AxisFeature)
	if err != nil {
		return nil, nil, nil, err
	}
	if exts[0] != l.nInputDims {
		return nil, nil, nil, fmt.Errorf("bias: axis %q has %d dimensions, layer expects %d: %w",
			AxisDim, exts[0], l.nInputDims, ErrDimensionMismatch)
	}
	if exts[1] != l.nFeatureMaps {
		return nil, nil, nil, fmt.Errorf("bias: axis %q has %d feature maps, layer expects %d: %w",
			AxisFeature, exts[1], l.nFeatureMaps, ErrDimensionMismatch)
	}

	// A channel axis from a convolution below rides along untouched; the
	// offset is shared across channels.
	layout := space.Single(AxisBatch, AxisWord, AxisFeature, AxisDim)
	if working.HasAxis(AxisChannel) {
		layout = space.Single(AxisBatch, AxisWord, AxisChannel, AxisFeature, AxisDim)
	}
	x, ws, err := working.Transform(x, layout, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	y := x.Clone()
	yd := y.Data()
	bd := l.b.Data()
	slab := l.nFeatureMaps * l.nInputDims
	for off := 0; off < len(yd); off += slab {
		dst := yd[off : off+slab]
		for i := range dst {
			dst[i] += bd[i]
		}
	}

	state := newFpropState(l, meta.Lengths)
	out := meta.Clone()
	out.Above = ws
	return y, out, state, nil
}

// BProp passes the error through unchanged; the layout above equals the
// layout below.
func (l *Bias) BProp(delta *tensor.Tensor, meta *Meta, state *FpropState) (*tensor.Tensor, *Meta, error) {
	state.consume(l)

	if !lengthsEqual(meta.Lengths, state.lengthsBelow) {
		panic(fmt.Sprintf("bias: lengths %v differ from fprop lengths %v", meta.Lengths, state.lengthsBelow))
	}

	out := meta.Clone()
	out.Below = meta.Above
	return delta, out, nil
}

// Grads sums the error over batch and word positions.
func (l *Bias) Grads(delta *tensor.Tensor, meta *Meta, state *FpropState) ([]*tensor.Tensor, error) {
	state.verify(l)

	layout := []space.Group{{AxisFeature}, {AxisDim}, {AxisBatch, AxisWord}}
	if meta.Above.HasAxis(AxisChannel) {
		layout = []space.Group{{AxisFeature}, {AxisDim}, {AxisBatch, AxisWord, AxisChannel}}
	}
	delta, _, err := meta.Above.Transform(delta, layout, nil)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{delta.SumAxis(2)}, nil
}

// Params returns the offset tensor.
func (l *Bias) Params() []*tensor.Tensor {
	return []*tensor.Tensor{l.b}
}

// String describes the layer configuration.
func (l *Bias) String() string {
	return fmt.Sprintf("Bias(d=%d, f=%d)", l.nInputDims, l.nFeatureMaps)
}
