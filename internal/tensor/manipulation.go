package tensor

import "fmt"

// FlipLast reverses the tensor along its final dimension.
//
// For a 2-D tensor this mirrors every row, which is how convolution
// kernels are flipped between correlation and true convolution.
func (t *Tensor) FlipLast() *Tensor {
	if len(t.shape) == 0 {
		return t.Clone()
	}

	out := New(t.shape)
	w := t.shape[len(t.shape)-1]
	rows := t.NumElements() / w
	for r := 0; r < rows; r++ {
		src := t.data[r*w : (r+1)*w]
		dst := out.data[r*w : (r+1)*w]
		for i := 0; i < w; i++ {
			dst[i] = src[w-1-i]
		}
	}
	return out
}

// SumAxis sums the tensor over one dimension, removing it.
func (t *Tensor) SumAxis(dim int) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("sumaxis: dimension %d out of range for %dD tensor", dim, len(t.shape)))
	}

	outShape := make(Shape, 0, len(t.shape)-1)
	outShape = append(outShape, t.shape[:dim]...)
	outShape = append(outShape, t.shape[dim+1:]...)
	out := New(outShape)

	// outer × n × inner iteration over the summed dimension.
	n := t.shape[dim]
	inner := 1
	for _, d := range t.shape[dim+1:] {
		inner *= d
	}
	outer := t.NumElements() / (n * inner)

	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			src := t.data[(o*n+k)*inner : (o*n+k+1)*inner]
			dst := out.data[o*inner : (o+1)*inner]
			for i, v := range src {
				dst[i] += v
			}
		}
	}
	return out
}

// Repeat expands a size-1 dimension to the given count by copying.
// Broadcasting of named axes is built on top of this in internal/space.
func (t *Tensor) Repeat(dim, count int) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("repeat: dimension %d out of range for %dD tensor", dim, len(t.shape)))
	}
	if t.shape[dim] != 1 {
		panic(fmt.Sprintf("repeat: dimension %d has size %d, expected 1", dim, t.shape[dim]))
	}
	if count < 1 {
		panic(fmt.Sprintf("repeat: invalid count %d", count))
	}
	if count == 1 {
		return t.Clone()
	}

	outShape := t.shape.Clone()
	outShape[dim] = count
	out := New(outShape)

	inner := 1
	for _, d := range t.shape[dim+1:] {
		inner *= d
	}
	outer := t.NumElements() / inner

	for o := 0; o < outer; o++ {
		src := t.data[o*inner : (o+1)*inner]
		for k := 0; k < count; k++ {
			dst := out.data[(o*count+k)*inner : (o*count+k+1)*inner]
			copy(dst, src)
		}
	}
	return out
}
