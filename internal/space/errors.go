package space

import "errors"

// Sentinel errors for the axis algebra. Callers match with errors.Is.
var (
	// ErrShapeMismatch reports a tensor whose physical shape disagrees
	// with the Space describing it.
	ErrShapeMismatch = errors.New("space: shape mismatch")

	// ErrAxis reports a reference to an axis that does not exist, or an
	// axis operation with incompatible extents.
	ErrAxis = errors.New("space: axis error")
)
