package model

import (
	"fmt"
	"math"

	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// Softmax is the classification head: it folds everything but the batch
// axis into one feature vector, applies an affine map and row-wise
// softmax, and relabels the dimension axis as the class axis.
type Softmax struct {
	nClasses   int
	nInputDims int

	w *tensor.Tensor // (nInputDims, nClasses)
	b *tensor.Tensor // (1, nClasses)
}

// NewSoftmax creates the layer. nInputDims is the total folded extent
// below the layer: word positions x feature maps x embedding dimensions.
func NewSoftmax(nClasses, nInputDims int) (*Softmax, error) {
	if nClasses < 1 || nInputDims < 1 {
		return nil, fmt.Errorf("softmax: invalid construction classes=%d dims=%d: %w",
			nClasses, nInputDims, ErrDimensionMismatch)
	}
	return &Softmax{
		nClasses:   nClasses,
		nInputDims: nInputDims,
		w:          Normal(initScale, tensor.Shape{nInputDims, nClasses}),
		b:          tensor.Zeros(tensor.Shape{1, nClasses}),
	}, nil
}

// foldLayout folds every non-batch axis below the layer into one
// feature vector per batch element.
func foldLayout(s *space.Space) []space.Group {
	if s.HasAxis(AxisChannel) {
		return []space.Group{{AxisBatch}, {AxisWord, AxisFeature, AxisDim, AxisChannel}}
	}
	return []space.Group{{AxisBatch}, {AxisWord, AxisFeature, AxisDim}}
}

// FProp computes softmax(X*W + b) per batch row.
func (l *Softmax) FProp(x *tensor.Tensor, meta *Meta) (*tensor.Tensor, *Meta, *FpropState, error) {
	x, xs, err := meta.Below.Transform(x, foldLayout(meta.Below), nil)
	if err != nil {
		return nil, nil, nil, err
	}
	if got := x.Shape()[1]; got != l.nInputDims {
		return nil, nil, nil, fmt.Errorf("softmax: folded input has %d dimensions, layer expects %d: %w",
			got, l.nInputDims, ErrDimensionMismatch)
	}
	meta.checkBatch(x.Shape()[0])

	y := x.MatMul(l.w)
	yd := y.Data()
	bd := l.b.Data()
	rows, cols := y.Shape()[0], y.Shape()[1]
	for r := 0; r < rows; r++ {
		row := yd[r*cols : (r+1)*cols]
		sum := 0.0
		for i := range row {
			row[i] = math.Exp(row[i] + bd[i])
			sum += row[i]
		}
		for i := range row {
			row[i] /= sum
		}
	}

	// The class axis replaces everything that was folded in; channels
	// are extent 1 by the time a classifier sits on top, so dropping
	// the label is a pure relabeling.
	dropped := []string{AxisWord, AxisFeature}
	if xs.HasAxis(AxisChannel) {
		dropped = append(dropped, AxisChannel)
	}
	ys, err := xs.WithoutAxes(dropped...)
	if err != nil {
		return nil, nil, nil, err
	}
	ys, err = ys.WithExtents(map[string]int{AxisDim: l.nClasses})
	if err != nil {
		return nil, nil, nil, err
	}
	if !ys.IsCompatibleShape(y) {
		panic(fmt.Sprintf("softmax: output shape %v incompatible with space %v", y.Shape(), ys))
	}

	state := newFpropState(l, meta.Lengths)
	state.x = x
	state.xSpace = xs
	state.y = y
	state.ySpace = ys

	out := meta.Clone()
	out.Above = ys
	// A classification over the whole sentence has no word extent left.
	out.Lengths = onesLike(meta.Lengths)
	return y, out, state, nil
}

// BProp pushes the error through the softmax jacobian approximation and
// the affine map, restoring the recorded input space and lengths.
func (l *Softmax) BProp(delta *tensor.Tensor, meta *Meta, state *FpropState) (*tensor.Tensor, *Meta, error) {
	state.consume(l)

	delta, _, err := meta.Above.Transform(delta, space.Single(AxisBatch, AxisDim), nil)
	if err != nil {
		return nil, nil, err
	}

	out := softmaxScale(delta, state.y).MatMul(l.w.Transpose([]int{1, 0}))

	restored := meta.Clone()
	restored.Below = state.xSpace
	restored.Lengths = cloneLengths(state.lengthsBelow)
	return out, restored, nil
}

// Grads returns the weight and bias gradients.
func (l *Softmax) Grads(delta *tensor.Tensor, meta *Meta, state *FpropState) ([]*tensor.Tensor, error) {
	state.verify(l)

	delta, _, err := meta.Above.Transform(delta, foldLayout(meta.Above),
		map[string]int{AxisWord: 1, AxisFeature: 1})
	if err != nil {
		return nil, err
	}
	scaled := softmaxScale(delta, state.y)

	gradW := state.x.Transpose([]int{1, 0}).MatMul(scaled)
	gradB := scaled.SumAxis(0).Reshape(l.b.Shape())
	return []*tensor.Tensor{gradW, gradB}, nil
}

// Params returns the weight matrix and bias.
func (l *Softmax) Params() []*tensor.Tensor {
	return []*tensor.Tensor{l.w, l.b}
}

// String describes the layer configuration.
func (l *Softmax) String() string {
	return fmt.Sprintf("Softmax(classes=%d, dims=%d)", l.nClasses, l.nInputDims)
}

// softmaxScale applies the elementwise y*(1-y) factor to the error.
func softmaxScale(delta, y *tensor.Tensor) *tensor.Tensor {
	out := delta.Clone()
	od := out.Data()
	yd := y.Data()
	for i := range od {
		od[i] *= yd[i] * (1 - yd[i])
	}
	return out
}
