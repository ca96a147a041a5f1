package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

var _ Layer = (*Softmax)(nil)

func TestSoftmax_FProp(t *testing.T) {
	rng := rand.New(rand.NewSource(10))

	// Input (b=2, w=2, f=3, d=4): 24 folded dimensions, 3 classes.
	layer, err := NewSoftmax(3, 24)
	require.NoError(t, err)

	x := randTensor(t, tensor.Shape{2, 2, 3, 4}, rng)
	s, err := space.Infer(x, AxisBatch, AxisWord, AxisFeature, AxisDim)
	require.NoError(t, err)
	meta := &Meta{Below: s, Lengths: []int{2, 2}}

	y, fmeta, _, err := layer.FProp(x, meta)
	require.NoError(t, err)

	require.Equal(t, tensor.Shape{2, 3}, y.Shape())
	assert.True(t, fmeta.Above.IsCompatibleShape(y))

	// Rows are probability distributions.
	for r := 0; r < 2; r++ {
		sum := 0.0
		for c := 0; c < 3; c++ {
			v := y.At(r, c)
			assert.Greater(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}

	// A classification consumes the whole sentence.
	assert.Equal(t, []int{1, 1}, fmeta.Lengths)
	assert.Equal(t, []int{2, 2}, meta.Lengths)
}

func TestSoftmax_KnownValues(t *testing.T) {
	layer, err := NewSoftmax(2, 2)
	require.NoError(t, err)

	// Identity weights, zero bias: softmax over the raw inputs.
	w, err := tensor.FromSlice([]float64{1, 0, 0, 1}, tensor.Shape{2, 2})
	require.NoError(t, err)
	layer.w = w

	x, err := tensor.FromSlice([]float64{0, 1}, tensor.Shape{1, 1, 1, 2})
	require.NoError(t, err)
	s, err := space.Infer(x, AxisBatch, AxisWord, AxisFeature, AxisDim)
	require.NoError(t, err)

	y, _, _, err := layer.FProp(x, &Meta{Below: s, Lengths: []int{1}})
	require.NoError(t, err)

	z := math.Exp(0) + math.Exp(1)
	assert.InDelta(t, math.Exp(0)/z, y.At(0, 0), 1e-12)
	assert.InDelta(t, math.Exp(1)/z, y.At(0, 1), 1e-12)
}

func TestSoftmax_DimensionMismatch(t *testing.T) {
	layer, err := NewSoftmax(3, 10)
	require.NoError(t, err)

	x := tensor.Zeros(tensor.Shape{2, 2, 3, 4}) // folds to 24, not 10
	s, err := space.Infer(x, AxisBatch, AxisWord, AxisFeature, AxisDim)
	require.NoError(t, err)

	_, _, _, err = layer.FProp(x, &Meta{Below: s, Lengths: []int{2, 2}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSoftmax_BPropRestores(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	layer, err := NewSoftmax(3, 24)
	require.NoError(t, err)

	x := randTensor(t, tensor.Shape{2, 2, 3, 4}, rng)
	s, err := space.Infer(x, AxisBatch, AxisWord, AxisFeature, AxisDim)
	require.NoError(t, err)
	meta := &Meta{Below: s, Lengths: []int{2, 2}}

	y, fmeta, state, err := layer.FProp(x, meta)
	require.NoError(t, err)

	delta := tensor.Ones(y.Shape())
	back, bmeta, err := layer.BProp(delta, fmeta, state)
	require.NoError(t, err)

	// Space and lengths below come back exactly as recorded.
	assert.True(t, bmeta.Below.IsCompatibleShape(back))
	assert.Equal(t, []int{2, 2}, bmeta.Lengths)
	assert.Equal(t, tensor.Shape{2, 24}, back.Shape())
}

func TestSoftmax_GradShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(12))

	layer, err := NewSoftmax(3, 24)
	require.NoError(t, err)

	x := randTensor(t, tensor.Shape{2, 2, 3, 4}, rng)
	s, err := space.Infer(x, AxisBatch, AxisWord, AxisFeature, AxisDim)
	require.NoError(t, err)
	meta := &Meta{Below: s, Lengths: []int{2, 2}}

	y, fmeta, state, err := layer.FProp(x, meta)
	require.NoError(t, err)

	grads, err := layer.Grads(tensor.Ones(y.Shape()), fmeta, state)
	require.NoError(t, err)

	params := layer.Params()
	require.Len(t, grads, len(params))
	for i := range grads {
		assert.Equal(t, params[i].Shape(), grads[i].Shape())
	}
}

func TestSoftmax_ChannelAxisFolded(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	// Input carrying a channel axis, as produced by a convolution stack.
	layer, err := NewSoftmax(2, 24)
	require.NoError(t, err)

	x := randTensor(t, tensor.Shape{2, 2, 3, 4, 1}, rng)
	s, err := space.Infer(x, AxisBatch, AxisWord, AxisFeature, AxisDim, AxisChannel)
	require.NoError(t, err)

	y, fmeta, _, err := layer.FProp(x, &Meta{Below: s, Lengths: []int{2, 2}})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.False(t, fmeta.Above.HasAxis(AxisChannel))
}
