package model

import (
	"fmt"

	"github.com/textnet-ml/textnet/internal/conv"
	"github.com/textnet-ml/textnet/internal/parallel"
	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// kernelLayout is the folded physical layout the convolution primitive
// expects: every batch-like axis flattened together, word positions on
// their own dimension.
var kernelLayout = []space.Group{
	{AxisDim, AxisBatch, AxisFeature, AxisChannel},
	{AxisWord},
}

// SentenceConvolution convolves every embedding dimension of a batch of
// sentences against a bank of 1-D kernels, producing one output per
// feature map.
//
// The forward pass runs a wide convolution, so the word axis grows by
// kernelWidth-1; valid sentence lengths grow with it and shrink back on
// the way down. Any feature-map axis arriving from below is treated as
// input channels; the layer introduces its own feature-map axis by
// broadcasting.
//
// The kernel is mirrored along the word axis on the forward pass and
// used unmirrored on the backward pass. That pairing is what makes the
// backward pass the chain rule for true convolution; flipping either
// side produces gradients that are wrong with perfectly plausible
// shapes.
type SentenceConvolution struct {
	nFeatureMaps int
	kernelWidth  int
	nInputDims   int
	nChannels    int
	pool         parallel.Config

	// w is stored pre-folded as (d,b,f,c) x w with batch extent 1, so
	// a single broadcast makes it row-compatible with any input batch.
	w           *tensor.Tensor
	kernelSpace *space.Space
}

// NewSentenceConvolution creates the layer with randomly initialized
// kernels. workers sizes the convolution worker pool; values < 1 use
// the CPU count.
func NewSentenceConvolution(nFeatureMaps, kernelWidth, nInputDims, nChannels, workers int) (*SentenceConvolution, error) {
	if nFeatureMaps < 1 || kernelWidth < 1 || nInputDims < 1 || nChannels < 1 {
		return nil, fmt.Errorf("sentence convolution: invalid construction f=%d k=%d d=%d c=%d: %w",
			nFeatureMaps, kernelWidth, nInputDims, nChannels, ErrDimensionMismatch)
	}

	l := &SentenceConvolution{
		nFeatureMaps: nFeatureMaps,
		kernelWidth:  kernelWidth,
		nInputDims:   nInputDims,
		nChannels:    nChannels,
		pool:         parallel.WithWorkers(workers),
	}
	if err := l.SetKernel(Normal(initScale, tensor.Shape{nInputDims, nFeatureMaps, nChannels, kernelWidth})); err != nil {
		return nil, err
	}
	return l, nil
}

// SetKernel replaces the kernel bank. kernel is given in logical layout
// (dimension, feature map, channel, width) and folded into the internal
// storage layout.
func (l *SentenceConvolution) SetKernel(kernel *tensor.Tensor) error {
	want := tensor.Shape{l.nInputDims, l.nFeatureMaps, l.nChannels, l.kernelWidth}
	if !kernel.Shape().Equal(want) {
		return fmt.Errorf("sentence convolution: kernel shape %v, expected %v: %w",
			kernel.Shape(), want, ErrDimensionMismatch)
	}

	ks, err := space.Infer(kernel, AxisDim, AxisFeature, AxisChannel, AxisWord)
	if err != nil {
		return err
	}
	l.w, l.kernelSpace, err = ks.Transform(kernel, kernelLayout, map[string]int{AxisBatch: 1})
	return err
}

// KernelWidth returns the kernel width.
func (l *SentenceConvolution) KernelWidth() int {
	return l.kernelWidth
}

// FProp runs the wide convolution. Output widths grow by kernelWidth-1,
// as do the valid lengths.
func (l *SentenceConvolution) FProp(x *tensor.Tensor, meta *Meta) (*tensor.Tensor, *Meta, *FpropState, error) {
	working := meta.Below

	wext, err := working.GetExtent(AxisWord)
	if err != nil {
		return nil, nil, nil, err
	}
	if wext < l.kernelWidth {
		return nil, nil, nil, fmt.Errorf("sentence convolution: input width %d smaller than kernel width %d: %w",
			wext, l.kernelWidth, conv.ErrDimension)
	}

	// Feature maps arriving from below become channels here.
	if working.HasAxis(AxisFeature) {
		working, err = working.RenameAxes(map[string]string{AxisFeature: AxisChannel})
		if err != nil {
			return nil, nil, nil, err
		}
	} else if !working.HasAxis(AxisChannel) {
		x, working, err = working.AddAxes(x, AxisChannel)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	exts, err := working.GetExtents(AxisDim, AxisBatch, AxisChannel, AxisWord)
	if err != nil {
		return nil, nil, nil, err
	}
	d, b, c := exts[0], exts[1], exts[2]
	if c != l.nChannels {
		return nil, nil, nil, fmt.Errorf("sentence convolution: axis %q has %d channels, layer expects %d: %w",
			AxisChannel, c, l.nChannels, ErrDimensionMismatch)
	}
	if d != l.nInputDims {
		return nil, nil, nil, fmt.Errorf("sentence convolution: axis %q has %d dimensions, layer expects %d: %w",
			AxisDim, d, l.nInputDims, ErrDimensionMismatch)
	}
	meta.checkBatch(b)

	state := newFpropState(l, meta.Lengths)
	state.x = x
	state.xSpace = working

	// Fold the input to rows, introducing the synthetic feature-map
	// axis by broadcast, and mirror the kernel across the batch.
	folded, ws, err := working.Transform(x, kernelLayout, map[string]int{AxisFeature: l.nFeatureMaps})
	if err != nil {
		return nil, nil, nil, err
	}
	kernel, _, err := l.kernelSpace.Broadcast(l.w.FlipLast(), map[string]int{AxisBatch: b})
	if err != nil {
		return nil, nil, nil, err
	}

	y, err := conv.Convolve1D(folded, kernel, conv.Full, l.pool)
	if err != nil {
		return nil, nil, nil, err
	}

	outW := y.Shape()[1]
	ws, err = ws.WithExtents(map[string]int{AxisWord: outW})
	if err != nil {
		return nil, nil, nil, err
	}

	out := meta.Clone()
	out.Above = ws
	for i := range out.Lengths {
		out.Lengths[i] += l.kernelWidth - 1
	}
	return y, out, state, nil
}

// BProp convolves the upstream error against the unmirrored kernel in
// valid mode, then sums out the synthetic feature-map axis: every
// feature map contributed error to the same input cell, so the axis
// must be reduced, not dropped.
func (l *SentenceConvolution) BProp(delta *tensor.Tensor, meta *Meta, state *FpropState) (*tensor.Tensor, *Meta, error) {
	state.consume(l)

	cExt, err := state.xSpace.GetExtent(AxisChannel)
	if err != nil {
		return nil, nil, err
	}
	delta, ws, err := meta.Above.Transform(delta, kernelLayout, map[string]int{AxisChannel: cExt})
	if err != nil {
		return nil, nil, err
	}

	b, err := ws.GetExtent(AxisBatch)
	if err != nil {
		return nil, nil, err
	}
	kernel, _, err := l.kernelSpace.Broadcast(l.w, map[string]int{AxisBatch: b})
	if err != nil {
		return nil, nil, err
	}

	delta, err = conv.Convolve1D(delta, kernel, conv.Valid, l.pool)
	if err != nil {
		return nil, nil, err
	}
	ws, err = ws.WithExtents(map[string]int{AxisWord: delta.Shape()[1]})
	if err != nil {
		return nil, nil, err
	}

	// Unfold and reduce over the feature-map axis.
	axes := ws.Axes()
	delta, unfolded, err := ws.Transform(delta, space.Single(axes...), nil)
	if err != nil {
		return nil, nil, err
	}
	delta = delta.SumAxis(axisIndex(axes, AxisFeature))
	below, err := unfolded.WithoutAxes(AxisFeature)
	if err != nil {
		return nil, nil, err
	}

	out := meta.Clone()
	out.Below = below
	for i := range out.Lengths {
		out.Lengths[i] -= l.kernelWidth - 1
	}
	if !lengthsEqual(out.Lengths, state.lengthsBelow) {
		panic(fmt.Sprintf("sentence convolution: restored lengths %v differ from fprop lengths %v",
			out.Lengths, state.lengthsBelow))
	}
	if !below.IsCompatibleShape(delta) {
		panic(fmt.Sprintf("sentence convolution: bprop delta shape %v incompatible with space %v",
			delta.Shape(), below))
	}
	return delta, out, nil
}

// Grads computes the kernel gradient: the recorded input convolved in
// valid mode against the mirrored upstream error, summed over the
// batch.
func (l *SentenceConvolution) Grads(delta *tensor.Tensor, meta *Meta, state *FpropState) ([]*tensor.Tensor, error) {
	state.verify(l)

	cExt, err := state.xSpace.GetExtent(AxisChannel)
	if err != nil {
		return nil, err
	}
	delta, ds, err := meta.Above.Transform(delta, kernelLayout, map[string]int{AxisChannel: cExt})
	if err != nil {
		return nil, err
	}
	fExt, err := ds.GetExtent(AxisFeature)
	if err != nil {
		return nil, err
	}
	x, _, err := state.xSpace.Transform(state.x, kernelLayout, map[string]int{AxisFeature: fExt})
	if err != nil {
		return nil, err
	}

	grad, err := conv.Convolve1D(delta.FlipLast(), x, conv.Valid, l.pool)
	if err != nil {
		return nil, err
	}
	gs, err := ds.WithExtents(map[string]int{AxisWord: grad.Shape()[1]})
	if err != nil {
		return nil, err
	}

	// Sum over the batch, then refold to the parameter layout.
	axes := gs.Axes()
	grad, unfolded, err := gs.Transform(grad, space.Single(axes...), nil)
	if err != nil {
		return nil, err
	}
	grad = grad.SumAxis(axisIndex(axes, AxisBatch))
	gs, err = unfolded.WithoutAxes(AxisBatch)
	if err != nil {
		return nil, err
	}
	grad, _, err = gs.Transform(grad, []space.Group{{AxisDim, AxisFeature, AxisChannel}, {AxisWord}}, nil)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{grad}, nil
}

// Params returns the folded kernel tensor.
func (l *SentenceConvolution) Params() []*tensor.Tensor {
	return []*tensor.Tensor{l.w}
}

// String describes the layer configuration.
func (l *SentenceConvolution) String() string {
	return fmt.Sprintf("SentenceConvolution(f=%d, k=%d, d=%d, c=%d)",
		l.nFeatureMaps, l.kernelWidth, l.nInputDims, l.nChannels)
}

func axisIndex(axes []string, name string) int {
	for i, a := range axes {
		if a == name {
			return i
		}
	}
	panic(fmt.Sprintf("model: axis %q not present in %v", name, axes))
}
