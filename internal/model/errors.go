package model

import "errors"

// ErrDimensionMismatch reports a layer whose declared dimensions
// (input dimensionality, channel count, feature-map count) disagree
// with the extents actually present below it. Never silently coerced.
var ErrDimensionMismatch = errors.New("model: dimension mismatch")
