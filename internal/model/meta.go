package model

import (
	"fmt"

	"github.com/textnet-ml/textnet/internal/space"
)

// Meta is the inter-layer handshake carried alongside every tensor in a
// pipeline pass.
//
// Below describes the tensor as the current layer receives it, Above the
// tensor the layer produced. Lengths tracks the valid (unpadded)
// sentence length per batch element; tensors may be padded to a common
// width, and Lengths records the real extent underneath the padding.
//
// Layers treat Meta as immutable: they return a fresh copy with their
// own fields set, so a later layer can never corrupt an earlier layer's
// view of the pass.
type Meta struct {
	Below   *space.Space
	Above   *space.Space
	Lengths []int
}

// Clone returns a copy with its own Lengths slice. Spaces are immutable
// and shared.
func (m *Meta) Clone() *Meta {
	return &Meta{
		Below:   m.Below,
		Above:   m.Above,
		Lengths: cloneLengths(m.Lengths),
	}
}

// checkBatch panics unless Lengths carries one entry per batch element.
// A mismatch means the pipeline wiring is corrupt, not that the input
// was merely misshapen.
func (m *Meta) checkBatch(batch int) {
	if len(m.Lengths) != batch {
		panic(fmt.Sprintf("model: %d lengths for batch extent %d", len(m.Lengths), batch))
	}
}

func cloneLengths(lengths []int) []int {
	out := make([]int, len(lengths))
	copy(out, lengths)
	return out
}

func lengthsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func onesLike(lengths []int) []int {
	out := make([]int, len(lengths))
	for i := range out {
		out[i] = 1
	}
	return out
}
