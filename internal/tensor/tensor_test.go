package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, 2.0, x.At(0, 1))
	assert.Equal(t, 6.0, x.At(1, 2))
}

func TestFromSlice_ElementCountMismatch(t *testing.T) {
	_, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2})
	require.Error(t, err)
}

func TestFromSlice_InvalidShape(t *testing.T) {
	_, err := FromSlice(nil, Shape{0, 2})
	require.Error(t, err)
}

func TestSet(t *testing.T) {
	x := Zeros(Shape{2, 2})
	x.Set(7, 1, 0)
	assert.Equal(t, 7.0, x.At(1, 0))
	assert.Equal(t, 0.0, x.At(0, 1))
}

func TestClone_Independent(t *testing.T) {
	x, err := FromSlice([]float64{1, 2}, Shape{2})
	require.NoError(t, err)

	c := x.Clone()
	c.Set(9, 0)
	assert.Equal(t, 1.0, x.At(0))
	assert.Equal(t, 9.0, c.At(0))
}

func TestReshape_SharesData(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	y := x.Reshape(Shape{3, 2})
	assert.Equal(t, Shape{3, 2}, y.Shape())
	assert.Equal(t, 4.0, y.At(1, 1)) // same flat order

	y.Set(0, 0, 0)
	assert.Equal(t, 0.0, x.At(0, 0))
}

func TestReshape_BadCountPanics(t *testing.T) {
	x := Zeros(Shape{2, 3})
	assert.Panics(t, func() { x.Reshape(Shape{5}) })
}

func TestTranspose(t *testing.T) {
	// [[1 2 3] [4 5 6]] -> [[1 4] [2 5] [3 6]]
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	y := x.Transpose([]int{1, 0})
	assert.Equal(t, Shape{3, 2}, y.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, y.Data())
}

func TestTranspose_3D(t *testing.T) {
	x, err := FromSlice([]float64{
		1, 2,
		3, 4,

		5, 6,
		7, 8,
	}, Shape{2, 2, 2})
	require.NoError(t, err)

	y := x.Transpose([]int{2, 0, 1})
	assert.Equal(t, Shape{2, 2, 2}, y.Shape())
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				assert.Equal(t, x.At(j, k, i), y.At(i, j, k))
			}
		}
	}
}

func TestTranspose_InvalidPermutation(t *testing.T) {
	x := Zeros(Shape{2, 3})
	assert.Panics(t, func() { x.Transpose([]int{0, 0}) })
	assert.Panics(t, func() { x.Transpose([]int{0}) })
}

func TestFlipLast(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	y := x.FlipLast()
	assert.Equal(t, []float64{3, 2, 1, 6, 5, 4}, y.Data())
	// Original untouched.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, x.Data())
}

func TestSumAxis(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	rows := x.SumAxis(1)
	assert.Equal(t, Shape{2}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.Data())

	cols := x.SumAxis(0)
	assert.Equal(t, Shape{3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.Data())
}

func TestSumAxis_Middle(t *testing.T) {
	x, err := FromSlice([]float64{
		1, 2,
		3, 4,

		5, 6,
		7, 8,
	}, Shape{2, 2, 2})
	require.NoError(t, err)

	y := x.SumAxis(1)
	assert.Equal(t, Shape{2, 2}, y.Shape())
	assert.Equal(t, []float64{4, 6, 12, 14}, y.Data())
}

func TestRepeat(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3}, Shape{1, 3})
	require.NoError(t, err)

	y := x.Repeat(0, 2)
	assert.Equal(t, Shape{2, 3}, y.Shape())
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3}, y.Data())
}

func TestRepeat_InnerDim(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4}, Shape{2, 1, 2})
	require.NoError(t, err)

	y := x.Repeat(1, 3)
	assert.Equal(t, Shape{2, 3, 2}, y.Shape())
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2, 3, 4, 3, 4, 3, 4}, y.Data())
}

func TestRepeat_NonUnitDimPanics(t *testing.T) {
	x := Zeros(Shape{2, 3})
	assert.Panics(t, func() { x.Repeat(0, 4) })
}

func TestMatMul(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	b, err := FromSlice([]float64{7, 8, 9, 10, 11, 12}, Shape{3, 2})
	require.NoError(t, err)

	c := a.MatMul(b)
	assert.Equal(t, Shape{2, 2}, c.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Data())
}

func TestElementwise(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3}, Shape{3})
	require.NoError(t, err)
	b, err := FromSlice([]float64{4, 5, 6}, Shape{3})
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 7, 9}, a.Add(b).Data())
	assert.Equal(t, []float64{4, 10, 18}, a.Mul(b).Data())
	assert.Equal(t, []float64{2, 4, 6}, a.Scale(2).Data())
}

func TestShape_Helpers(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.True(t, s.Equal(Shape{2, 3, 4}))
	assert.False(t, s.Equal(Shape{2, 3}))
	require.NoError(t, s.Validate())
	require.Error(t, Shape{2, -1}.Validate())
}
