// Copyright 2025 TextNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package space provides the public API for named-axis tensor layouts.
//
// A Space names every physical dimension of a tensor and records how
// logical axes fold together into physical ones. Layers use spaces to
// move data between the layouts their kernels expect without tracking
// permutations by hand.
//
// Example:
//
//	x := tensor.Randn(tensor.Shape{2, 3, 5})
//	s, _ := space.Infer(x, "b", "d", "w")
//	folded, fs, _ := s.Transform(x, []space.Group{{"b", "d"}, {"w"}}, nil)
package space

import (
	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// ErrShapeMismatch reports a tensor whose physical shape disagrees with
// a space.
var ErrShapeMismatch = space.ErrShapeMismatch

// ErrAxis reports an unknown, duplicate, or conflicting axis name.
var ErrAxis = space.ErrAxis

// Group is an ordered set of logical axes sharing one physical dimension.
type Group = space.Group

// Space describes a named-axis layout: physical axis groups plus the
// extent of every logical axis.
type Space = space.Space

// New creates a space from explicit groups and extents.
func New(groups []Group, extents map[string]int) (*Space, error) {
	return space.New(groups, extents)
}

// Infer builds a space for t assigning one axis name per physical
// dimension, in order.
func Infer(t *tensor.Tensor, axes ...string) (*Space, error) {
	return space.Infer(t, axes...)
}

// Single wraps each axis name in its own group, preserving order.
func Single(axes ...string) []Group {
	return space.Single(axes...)
}
