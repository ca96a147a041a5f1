// Package model implements TextNet's trainable layers and the contract
// that chains them into a pipeline.
//
// Every layer supports forward propagation, backward error propagation
// and parameter-gradient computation over tensors with named,
// reorderable axes. Layers never hard-code physical dimension order:
// they declare the layout their algorithm needs through the space
// package, so a layer accepts input from any upstream layer regardless
// of how that layer laid out its output.
package model

import (
	"github.com/textnet-ml/textnet/internal/tensor"
)

// Logical axis names shared by all layers.
const (
	AxisBatch   = "b" // batch element
	AxisWord    = "w" // position along the sentence
	AxisFeature = "f" // feature map
	AxisDim     = "d" // embedding dimension
	AxisChannel = "c" // input channel
)

// Layer is the contract every TextNet layer implements.
//
// A pipeline calls FProp on each layer in order, threading Meta through,
// then BProp and Grads in reverse order, handing each layer back the
// state its own FProp returned. Parameters are mutated only by an
// external optimizer between passes, never by the layer itself.
type Layer interface {
	// FProp consumes x laid out per meta.Below and produces the layer
	// output, an updated Meta with Above and Lengths set, and the state
	// record BProp and Grads will need. It must not mutate x or the
	// incoming meta.
	FProp(x *tensor.Tensor, meta *Meta) (*tensor.Tensor, *Meta, *FpropState, error)

	// BProp consumes the upstream error delta laid out per meta.Above
	// and returns the error with respect to the layer input, restoring
	// meta.Below and Lengths for the layer underneath.
	BProp(delta *tensor.Tensor, meta *Meta, state *FpropState) (*tensor.Tensor, *Meta, error)

	// Grads returns one gradient tensor per entry of Params, in the
	// same order and with identical shapes.
	Grads(delta *tensor.Tensor, meta *Meta, state *FpropState) ([]*tensor.Tensor, error)

	// Params returns the layer's parameter tensors. Gradients returned
	// by Grads match these shapes entrywise.
	Params() []*tensor.Tensor
}
