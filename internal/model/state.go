package model

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/textnet-ml/textnet/internal/space"
	"github.com/textnet-ml/textnet/internal/tensor"
)

// FpropState is the opaque per-call record a layer's FProp hands to the
// matching BProp and Grads calls. It is owned by the call site: the
// issuing layer tags it with a fresh id, and feeding it to a different
// layer, or running BProp on it twice, is pipeline corruption and
// panics.
type FpropState struct {
	id    uuid.UUID
	owner Layer

	bpropDone bool

	x            *tensor.Tensor
	xSpace       *space.Space
	y            *tensor.Tensor
	ySpace       *space.Space
	lengthsBelow []int
}

func newFpropState(owner Layer, lengthsBelow []int) *FpropState {
	return &FpropState{
		id:           uuid.New(),
		owner:        owner,
		lengthsBelow: cloneLengths(lengthsBelow),
	}
}

// ID identifies the forward pass that issued this state.
func (s *FpropState) ID() uuid.UUID {
	return s.id
}

// verify panics unless the state was issued by owner.
func (s *FpropState) verify(owner Layer) {
	if s == nil {
		panic("model: nil fprop state")
	}
	if s.owner != owner {
		panic(fmt.Sprintf("model: fprop state %s belongs to a different layer", s.id))
	}
}

// consume marks the one permitted BProp on this state.
func (s *FpropState) consume(owner Layer) {
	s.verify(owner)
	if s.bpropDone {
		panic(fmt.Sprintf("model: fprop state %s already consumed by bprop", s.id))
	}
	s.bpropDone = true
}
