// Copyright 2025 TextNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides the public API for TextNet layers.
//
// Every layer implements the Layer contract: FProp produces the output
// plus an opaque state handle, BProp consumes that handle exactly once
// to push the error back down, and Grads pairs one gradient with each
// parameter.
//
// Example:
//
//	layer, _ := model.NewSentenceConvolution(4, 2, 3, 1, 0)
//	y, above, state, _ := layer.FProp(x, meta)
//	dx, below, _ := layer.BProp(delta, above, state)
package model

import (
	"github.com/textnet-ml/textnet/internal/model"
)

// Axis names shared by the sentence model layers.
const (
	AxisBatch   = model.AxisBatch
	AxisWord    = model.AxisWord
	AxisFeature = model.AxisFeature
	AxisDim     = model.AxisDim
	AxisChannel = model.AxisChannel
)

// ErrDimensionMismatch reports input extents that disagree with a
// layer's configured dimensions.
var ErrDimensionMismatch = model.ErrDimensionMismatch

// Layer is the forward/backward contract every TextNet layer satisfies.
type Layer = model.Layer

// Meta carries the layout and per-sentence lengths alongside a tensor.
type Meta = model.Meta

// FpropState is the opaque handle linking one FProp call to its BProp.
type FpropState = model.FpropState

// SentenceConvolution convolves every sentence with a bank of 1-D
// feature-map kernels.
type SentenceConvolution = model.SentenceConvolution

// NewSentenceConvolution creates a convolution layer with
// nFeatureMaps kernels of width kernelWidth over nInputDims embedding
// rows and nChannels input channels. workers <= 0 uses one worker per
// CPU.
func NewSentenceConvolution(nFeatureMaps, kernelWidth, nInputDims, nChannels, workers int) (*SentenceConvolution, error) {
	return model.NewSentenceConvolution(nFeatureMaps, kernelWidth, nInputDims, nChannels, workers)
}

// Bias adds one bias per (feature map, embedding row) pair.
type Bias = model.Bias

// NewBias creates a bias layer for nInputDims embedding rows and
// nFeatureMaps feature maps.
func NewBias(nInputDims, nFeatureMaps int) (*Bias, error) {
	return model.NewBias(nInputDims, nFeatureMaps)
}

// Linear is a fully connected layer over flattened sentences.
type Linear = model.Linear

// NewLinear creates a fully connected layer mapping nInput to nOutput.
func NewLinear(nInput, nOutput int) (*Linear, error) {
	return model.NewLinear(nInput, nOutput)
}

// Softmax is a linear classifier with a softmax output.
type Softmax = model.Softmax

// NewSoftmax creates a classifier over nInputDims flattened inputs
// producing nClasses probabilities per sentence.
func NewSoftmax(nClasses, nInputDims int) (*Softmax, error) {
	return model.NewSoftmax(nClasses, nInputDims)
}

// Normal draws a weight tensor of scaled standard normal samples.
var Normal = model.Normal
