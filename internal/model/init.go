package model

import "github.com/textnet-ml/textnet/internal/tensor"

// initScale is the weight scale used by all layer constructors.
const initScale = 0.0025

// Normal returns a tensor of N(0, scale²) values for weight
// initialization.
func Normal(scale float64, shape tensor.Shape) *tensor.Tensor {
	return tensor.Randn(shape).Scale(scale)
}
