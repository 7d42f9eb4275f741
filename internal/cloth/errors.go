package cloth

import "errors"

// Domain errors for cloth operations.
var (
	// ErrNotBuilt indicates an operation on a cloth with no particles.
	ErrNotBuilt = errors.New("cloth: not built (no particles)")

	// ErrInvalidDimensions indicates a non-positive grid width or height.
	ErrInvalidDimensions = errors.New("cloth: grid dimensions must be positive")

	// ErrDimensionMismatch indicates a snapshot that does not fit the built grid.
	ErrDimensionMismatch = errors.New("cloth: snapshot dimensions do not match cloth")

	// ErrIndexOutOfRange indicates a particle index outside the grid.
	ErrIndexOutOfRange = errors.New("cloth: particle index out of range")

	// ErrUnstable indicates a particle position containing NaN or Inf.
	ErrUnstable = errors.New("cloth: simulation unstable (non-finite position)")
)
