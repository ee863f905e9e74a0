package spectrum

import "errors"

var (
	// ErrInvalidCount is returned when the requested eigenvalue count is
	// non-positive or exceeds the Hilbert-space dimension.
	ErrInvalidCount = errors.New("spectrum: eigenvalue count out of range")

	// ErrNotHermitian is returned when the input matrix is not Hermitian
	// within tolerance. This is a programming error in the caller.
	ErrNotHermitian = errors.New("spectrum: matrix is not hermitian")

	// ErrDimensionMismatch is returned when the input matrix is not square
	// or operand dimensions disagree.
	ErrDimensionMismatch = errors.New("spectrum: dimension mismatch")

	// ErrConvergence is returned when the dense eigensolver fails to
	// converge. Not retried.
	ErrConvergence = errors.New("spectrum: eigendecomposition failed to converge")
)
