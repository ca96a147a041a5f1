// Package space implements the named-axis layout algebra used by TextNet
// layers.
//
// A Space describes how a tensor's logical axes (batch, word position,
// feature map, embedding dimension, channel) map onto physical
// dimensions. Several logical axes may be folded together into one
// physical dimension by row-major flattening; a Space records the fold
// structure plus the extent of every logical axis, so layers can demand
// the physical layout their inner algorithm needs without hard-coding
// dimension order.
//
// Spaces are immutable: every operation returns a new Space (and, where
// data moves, a new tensor).
package space

import (
	"fmt"
	"strings"

	"github.com/textnet-ml/textnet/internal/tensor"
)

// Group is an ordered sequence of logical axes folded into a single
// physical dimension. Order within the group defines the row-major
// nesting used when flattening.
type Group []string

// Clone returns a copy of the group.
func (g Group) Clone() Group {
	c := make(Group, len(g))
	copy(c, g)
	return c
}

// Single wraps each axis name in its own group. Convenient for building
// fully-unfolded layouts.
func Single(axes ...string) []Group {
	layout := make([]Group, len(axes))
	for i, a := range axes {
		layout[i] = Group{a}
	}
	return layout
}

// Space maps named logical axes onto the physical dimensions of a tensor.
type Space struct {
	groups  []Group
	extents map[string]int
}

// New creates a Space from an explicit fold structure and per-axis extents.
func New(groups []Group, extents map[string]int) (*Space, error) {
	seen := make(map[string]bool)
	for _, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("empty axis group: %w", ErrAxis)
		}
		for _, a := range g {
			if seen[a] {
				return nil, fmt.Errorf("axis %q appears in more than one group: %w", a, ErrAxis)
			}
			seen[a] = true
			ext, ok := extents[a]
			if !ok {
				return nil, fmt.Errorf("axis %q has no extent: %w", a, ErrAxis)
			}
			if ext < 1 {
				return nil, fmt.Errorf("axis %q has extent %d (must be >= 1): %w", a, ext, ErrAxis)
			}
		}
	}
	for a := range extents {
		if !seen[a] {
			return nil, fmt.Errorf("extent given for axis %q not present in any group: %w", a, ErrAxis)
		}
	}

	s := &Space{extents: make(map[string]int, len(extents))}
	for _, g := range groups {
		s.groups = append(s.groups, g.Clone())
		for _, a := range g {
			s.extents[a] = extents[a]
		}
	}
	return s, nil
}

// Infer builds a Space for a tensor by naming its physical dimensions in
// order. Each axis becomes its own group with extent taken from the
// tensor's shape.
func Infer(t *tensor.Tensor, axes ...string) (*Space, error) {
	if len(axes) != t.Rank() {
		return nil, fmt.Errorf("inferring space: %d axis names for rank-%d tensor: %w",
			len(axes), t.Rank(), ErrShapeMismatch)
	}

	s := &Space{extents: make(map[string]int, len(axes))}
	for i, a := range axes {
		if _, dup := s.extents[a]; dup {
			return nil, fmt.Errorf("inferring space: duplicate axis %q: %w", a, ErrAxis)
		}
		s.groups = append(s.groups, Group{a})
		s.extents[a] = t.Shape()[i]
	}
	return s, nil
}

// Axes returns all logical axes in physical order, folds expanded.
func (s *Space) Axes() []string {
	var axes []string
	for _, g := range s.groups {
		axes = append(axes, g...)
	}
	return axes
}

// FoldedAxes returns the ordered physical groups. Layers use this to
// iterate axes generically without assuming a particular layout.
func (s *Space) FoldedAxes() []Group {
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Clone()
	}
	return out
}

// HasAxis reports whether the named axis exists in this space.
func (s *Space) HasAxis(name string) bool {
	_, ok := s.extents[name]
	return ok
}

// GetExtent returns the extent of one logical axis.
func (s *Space) GetExtent(name string) (int, error) {
	ext, ok := s.extents[name]
	if !ok {
		return 0, fmt.Errorf("get extent: unknown axis %q: %w", name, ErrAxis)
	}
	return ext, nil
}

// GetExtents returns the extents of several logical axes at once.
func (s *Space) GetExtents(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		ext, err := s.GetExtent(n)
		if err != nil {
			return nil, err
		}
		out[i] = ext
	}
	return out, nil
}

// Shape returns the physical shape this space describes: one dimension
// per group, sized as the product of the group's extents.
func (s *Space) Shape() tensor.Shape {
	shape := make(tensor.Shape, len(s.groups))
	for i, g := range s.groups {
		dim := 1
		for _, a := range g {
			dim *= s.extents[a]
		}
		shape[i] = dim
	}
	return shape
}

// IsCompatibleShape reports whether the tensor's physical shape matches
// the per-group product of extents, in order.
func (s *Space) IsCompatibleShape(t *tensor.Tensor) bool {
	return s.Shape().Equal(t.Shape())
}

// Rank returns the number of physical dimensions.
func (s *Space) Rank() int {
	return len(s.groups)
}

// unfoldedShape returns one physical dimension per logical axis, folds
// expanded in row-major order.
func (s *Space) unfoldedShape() tensor.Shape {
	axes := s.Axes()
	shape := make(tensor.Shape, len(axes))
	for i, a := range axes {
		shape[i] = s.extents[a]
	}
	return shape
}

// clone returns a deep copy of the space.
func (s *Space) clone() *Space {
	c := &Space{extents: make(map[string]int, len(s.extents))}
	for _, g := range s.groups {
		c.groups = append(c.groups, g.Clone())
	}
	for a, e := range s.extents {
		c.extents[a] = e
	}
	return c
}

// String renders the fold structure and extents, e.g.
// ((b,f,d),(w)) {b=2 f=4 d=3 w=5}.
func (s *Space) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, g := range s.groups {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		sb.WriteString(strings.Join(g, ","))
		sb.WriteByte(')')
	}
	sb.WriteString(") {")
	for i, a := range s.Axes() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%d", a, s.extents[a])
	}
	sb.WriteByte('}')
	return sb.String()
}
