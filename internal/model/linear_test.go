package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

var _ Layer = (*Linear)(nil)

func TestLinear_FProp(t *testing.T) {
	layer, err := NewLinear(3, 2)
	require.NoError(t, err)
	w, err := tensor.FromSlice([]float64{
		1, 2,
		3, 4,
		5, 6,
	}, tensor.Shape{3, 2})
	require.NoError(t, err)
	layer.w = w

	// (b=2, d=3, f=1, w=1) folds to 3 inputs per batch element.
	x, err := tensor.FromSlice([]float64{1, 0, 2, 0, 1, 1}, tensor.Shape{2, 3, 1, 1})
	require.NoError(t, err)
	s, err := space.Infer(x, AxisBatch, AxisDim, AxisFeature, AxisWord)
	require.NoError(t, err)
	meta := &Meta{Below: s, Lengths: []int{1, 1}}

	y, fmeta, _, err := layer.FProp(x, meta)
	require.NoError(t, err)

	require.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.True(t, fmeta.Above.IsCompatibleShape(y))
	// Row 0: [1 0 2] * W = [11 14]; row 1: [0 1 1] * W = [8 10].
	assert.Equal(t, []float64{11, 14, 8, 10}, y.Data())
	assert.Equal(t, []int{1, 1}, fmeta.Lengths)
}

func TestLinear_DimensionMismatch(t *testing.T) {
	layer, err := NewLinear(7, 2)
	require.NoError(t, err)

	x := tensor.Zeros(tensor.Shape{2, 3, 1, 1})
	s, err := space.Infer(x, AxisBatch, AxisDim, AxisFeature, AxisWord)
	require.NoError(t, err)

	_, _, _, err = layer.FProp(x, &Meta{Below: s, Lengths: []int{1, 1}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLinear_BPropAndGrads(t *testing.T) {
	rng := rand.New(rand.NewSource(30))

	layer, err := NewLinear(12, 4)
	require.NoError(t, err)

	x := randTensor(t, tensor.Shape{3, 2, 2, 3}, rng)
	s, err := space.Infer(x, AxisBatch, AxisDim, AxisFeature, AxisWord)
	require.NoError(t, err)
	meta := &Meta{Below: s, Lengths: []int{3, 3, 3}}

	y, fmeta, state, err := layer.FProp(x, meta)
	require.NoError(t, err)

	delta := randTensor(t, y.Shape(), rng)
	back, bmeta, err := layer.BProp(delta, fmeta, state)
	require.NoError(t, err)

	assert.True(t, bmeta.Below.IsCompatibleShape(back))
	assert.Equal(t, meta.Lengths, bmeta.Lengths)

	grads, err := layer.Grads(delta, fmeta, state)
	require.NoError(t, err)
	require.Len(t, grads, 1)
	assert.Equal(t, layer.w.Shape(), grads[0].Shape())

	// Linear is exactly X*W, so the analytic gradient is X^T * delta.
	want := state.x.Transpose([]int{1, 0}).MatMul(delta)
	assert.Equal(t, want.Data(), grads[0].Data())
}
