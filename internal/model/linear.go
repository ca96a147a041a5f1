package model

import (
	"fmt"

	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// Linear is a fully connected layer over the folded non-batch axes.
type Linear struct {
	nInput  int
	nOutput int

	w *tensor.Tensor // (nInput, nOutput)
}

// NewLinear creates the layer with random weights.
func NewLinear(nInput, nOutput int) (*Linear, error) {
	if nInput < 1 || nOutput < 1 {
		return nil, fmt.Errorf("linear: invalid construction in=%d out=%d: %w",
			nInput, nOutput, ErrDimensionMismatch)
	}
	return &Linear{
		nInput:  nInput,
		nOutput: nOutput,
		w:       Normal(initScale, tensor.Shape{nInput, nOutput}),
	}, nil
}

var linearLayout = []space.Group{
	{AxisBatch},
	{AxisDim, AxisFeature, AxisWord},
}

// FProp computes X*W over the folded input.
func (l *Linear) FProp(x *tensor.Tensor, meta *Meta) (*tensor.Tensor, *Meta, *FpropState, error) {
	x, xs, err := meta.Below.Transform(x, linearLayout, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	if got := x.Shape()[1]; got != l.nInput {
		return nil, nil, nil, fmt.Errorf("linear: folded input has %d dimensions, layer expects %d: %w",
			got, l.nInput, ErrDimensionMismatch)
	}
	meta.checkBatch(x.Shape()[0])

	y := x.MatMul(l.w)

	ys, err := xs.WithoutAxes(AxisFeature, AxisWord)
	if err != nil {
		return nil, nil, nil, err
	}
	ys, err = ys.WithExtents(map[string]int{AxisDim: l.nOutput})
	if err != nil {
		return nil, nil, nil, err
	}
	if !ys.IsCompatibleShape(y) {
		panic(fmt.Sprintf("linear: output shape %v incompatible with space %v", y.Shape(), ys))
	}

	state := newFpropState(l, meta.Lengths)
	state.x = x
	state.xSpace = xs

	out := meta.Clone()
	out.Above = ys
	out.Lengths = onesLike(meta.Lengths)
	return y, out, state, nil
}

// BProp maps the error back through the weights and restores the
// recorded input space and lengths.
func (l *Linear) BProp(delta *tensor.Tensor, meta *Meta, state *FpropState) (*tensor.Tensor, *Meta, error) {
	state.consume(l)

	delta, _, err := meta.Above.Transform(delta, space.Single(AxisBatch, AxisDim), nil)
	if err != nil {
		return nil, nil, err
	}
	out := delta.MatMul(l.w.Transpose([]int{1, 0}))

	restored := meta.Clone()
	restored.Below = state.xSpace
	restored.Lengths = cloneLengths(state.lengthsBelow)
	return out, restored, nil
}

// Grads returns the weight gradient.
func (l *Linear) Grads(delta *tensor.Tensor, meta *Meta, state *FpropState) ([]*tensor.Tensor, error) {
	state.verify(l)

	delta, _, err := meta.Above.Transform(delta, linearLayout,
		map[string]int{AxisFeature: 1, AxisWord: 1})
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{state.x.Transpose([]int{1, 0}).MatMul(delta)}, nil
}

// Params returns the weight matrix.
func (l *Linear) Params() []*tensor.Tensor {
	return []*tensor.Tensor{l.w}
}

// String describes the layer configuration.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d)", l.nInput, l.nOutput)
}
