package space

import (
	"fmt"

	"github.com/textnet-ml/textnet/internal/tensor"
)

// Transform re-expresses the tensor in a new physical layout.
//
// layout lists the target physical groups; every axis of the space must
// appear exactly once across them. An axis that does not exist yet may
// be introduced through overrides: it is inserted with extent 1 and
// broadcast up to the requested extent. An override naming an existing
// axis must either match its extent or broadcast it up from extent 1.
//
// Because every fold records its per-axis extents, unfolding is always
// unambiguous; Transform moves data only when the axis order actually
// changes.
func (s *Space) Transform(t *tensor.Tensor, layout []Group, overrides map[string]int) (*tensor.Tensor, *Space, error) {
	if !s.IsCompatibleShape(t) {
		return nil, nil, fmt.Errorf("transform: tensor shape %v does not match space %v: %w",
			t.Shape(), s, ErrShapeMismatch)
	}

	// Unfold to one physical dimension per logical axis.
	cur := s.clone()
	work := t.Reshape(cur.unfoldedShape())
	curAxes := cur.Axes()

	target := make([]string, 0, len(curAxes))
	seen := make(map[string]bool)
	for _, g := range layout {
		for _, a := range g {
			if seen[a] {
				return nil, nil, fmt.Errorf("transform: axis %q appears twice in target layout: %w", a, ErrAxis)
			}
			seen[a] = true
			target = append(target, a)
		}
	}

	// Introduce axes the target references but the space lacks.
	for _, a := range target {
		if cur.HasAxis(a) {
			continue
		}
		ext, ok := overrides[a]
		if !ok {
			return nil, nil, fmt.Errorf("transform: unknown axis %q and no extent override: %w", a, ErrAxis)
		}
		curAxes = append(curAxes, a)
		cur.groups = append(cur.groups, Group{a})
		cur.extents[a] = 1
		work = work.Reshape(append(work.Shape().Clone(), 1))
		if ext != 1 {
			work = work.Repeat(len(curAxes)-1, ext)
			cur.extents[a] = ext
		}
	}

	// Apply overrides on pre-existing axes.
	for a, ext := range overrides {
		if !seen[a] {
			return nil, nil, fmt.Errorf("transform: override for axis %q not present in target layout: %w", a, ErrAxis)
		}
		switch cur.extents[a] {
		case ext:
			// Already satisfied.
		case 1:
			dim := indexOf(curAxes, a)
			work = work.Repeat(dim, ext)
			cur.extents[a] = ext
		default:
			return nil, nil, fmt.Errorf("transform: cannot override axis %q from extent %d to %d: %w",
				a, cur.extents[a], ext, ErrAxis)
		}
	}

	// Every current axis must land somewhere in the target.
	for _, a := range curAxes {
		if !seen[a] {
			return nil, nil, fmt.Errorf("transform: axis %q missing from target layout: %w", a, ErrAxis)
		}
	}

	// Reorder to the flattened target, then fold.
	perm := make([]int, len(target))
	identity := true
	for i, a := range target {
		perm[i] = indexOf(curAxes, a)
		if perm[i] != i {
			identity = false
		}
	}
	if !identity {
		work = work.Transpose(perm)
	}

	out, err := New(layout, cur.extents)
	if err != nil {
		return nil, nil, err
	}
	return work.Reshape(out.Shape()), out, nil
}

// Broadcast expands length-1 axes to the requested extents by repeating
// data. Axes already at the requested extent pass through untouched; any
// other extent is an error.
func (s *Space) Broadcast(t *tensor.Tensor, extents map[string]int) (*tensor.Tensor, *Space, error) {
	if !s.IsCompatibleShape(t) {
		return nil, nil, fmt.Errorf("broadcast: tensor shape %v does not match space %v: %w",
			t.Shape(), s, ErrShapeMismatch)
	}

	out := s.clone()
	work := t.Reshape(out.unfoldedShape())
	axes := out.Axes()

	// Walk axes in physical order so repeats hit stable dimensions.
	for dim, a := range axes {
		ext, ok := extents[a]
		if !ok {
			continue
		}
		cur := out.extents[a]
		switch cur {
		case ext:
			// Nothing to do.
		case 1:
			work = work.Repeat(dim, ext)
			out.extents[a] = ext
		default:
			return nil, nil, fmt.Errorf("broadcast: axis %q has extent %d, cannot broadcast to %d: %w",
				a, cur, ext, ErrAxis)
		}
	}
	for a := range extents {
		if !out.HasAxis(a) {
			return nil, nil, fmt.Errorf("broadcast: unknown axis %q: %w", a, ErrAxis)
		}
	}

	return work.Reshape(out.Shape()), out, nil
}

// AddAxes appends new length-1 axes, each as its own trailing physical
// group.
func (s *Space) AddAxes(t *tensor.Tensor, names ...string) (*tensor.Tensor, *Space, error) {
	if !s.IsCompatibleShape(t) {
		return nil, nil, fmt.Errorf("add axes: tensor shape %v does not match space %v: %w",
			t.Shape(), s, ErrShapeMismatch)
	}

	out := s.clone()
	for _, a := range names {
		if out.HasAxis(a) {
			return nil, nil, fmt.Errorf("add axes: axis %q already exists: %w", a, ErrAxis)
		}
		out.groups = append(out.groups, Group{a})
		out.extents[a] = 1
	}
	return t.Reshape(out.Shape()), out, nil
}

// RenameAxes relabels axes, keeping the fold structure and extents.
func (s *Space) RenameAxes(mapping map[string]string) (*Space, error) {
	for old, nw := range mapping {
		if !s.HasAxis(old) {
			return nil, fmt.Errorf("rename axes: unknown axis %q: %w", old, ErrAxis)
		}
		if _, renamedAway := mapping[nw]; s.HasAxis(nw) && !renamedAway {
			return nil, fmt.Errorf("rename axes: axis %q already exists: %w", nw, ErrAxis)
		}
	}

	out := &Space{extents: make(map[string]int, len(s.extents))}
	for _, g := range s.groups {
		ng := make(Group, len(g))
		for i, a := range g {
			if nw, ok := mapping[a]; ok {
				ng[i] = nw
			} else {
				ng[i] = a
			}
		}
		out.groups = append(out.groups, ng)
	}
	for a, e := range s.extents {
		if nw, ok := mapping[a]; ok {
			out.extents[nw] = e
		} else {
			out.extents[a] = e
		}
	}
	return out, nil
}

// WithoutAxes removes the named axes from the space. Groups left empty
// disappear. The caller is responsible for having reduced the data over
// any removed axis with extent greater than one.
func (s *Space) WithoutAxes(names ...string) (*Space, error) {
	remove := make(map[string]bool, len(names))
	for _, a := range names {
		if !s.HasAxis(a) {
			return nil, fmt.Errorf("without axes: unknown axis %q: %w", a, ErrAxis)
		}
		remove[a] = true
	}

	out := &Space{extents: make(map[string]int)}
	for _, g := range s.groups {
		var ng Group
		for _, a := range g {
			if remove[a] {
				continue
			}
			ng = append(ng, a)
			out.extents[a] = s.extents[a]
		}
		if len(ng) > 0 {
			out.groups = append(out.groups, ng)
		}
	}
	return out, nil
}

// WithExtents returns a space with the named axes resized. Used after an
// operation changes a physical dimension, e.g. a wide convolution
// growing the word axis.
func (s *Space) WithExtents(extents map[string]int) (*Space, error) {
	out := s.clone()
	for a, e := range extents {
		if !out.HasAxis(a) {
			return nil, fmt.Errorf("with extents: unknown axis %q: %w", a, ErrAxis)
		}
		if e < 1 {
			return nil, fmt.Errorf("with extents: axis %q extent %d (must be >= 1): %w", a, e, ErrAxis)
		}
		out.extents[a] = e
	}
	return out, nil
}

func indexOf(axes []string, name string) int {
	for i, a := range axes {
		if a == name {
			return i
		}
	}
	return -1
}
