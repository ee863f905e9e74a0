// Package spectrum provides dense Hermitian eigensolving for quantum-circuit
// Hamiltonians, together with the canonical ordering and phase conventions
// shared by every qubit model.
//
// gonum has no complex Hermitian eigensolver, so the solver embeds
// H = A + iB into the real symmetric matrix
//
//	M = | A  -B |
//	    | B   A |
//
// whose spectrum is that of H with every eigenvalue doubled; a real
// eigenvector (x, y) of M maps back to the complex eigenvector x + iy.
package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// hermTol is the relative tolerance for the Hermiticity check.
const hermTol = 1e-10

// residualTol rejects embedded eigenvectors that duplicate an
// already-extracted complex direction. Duplicates leave residuals at
// rounding level (~1e-14); genuinely new directions sit far above this.
const residualTol = 1e-6

// Eigensystem holds the lowest eigenvalues of a Hermitian matrix in
// ascending order and the matching unit-norm eigenvectors as columns.
type Eigensystem struct {
	Values  []float64
	Vectors *mat.CDense // dim × len(Values); column k pairs with Values[k]
}

// Eigenvalues computes the lowest count eigenvalues of the Hermitian matrix
// h in ascending order.
func Eigenvalues(h *mat.CDense, count int) ([]float64, error) {
	n, err := checkInput(h, count)
	if err != nil {
		return nil, err
	}

	es, err := factorize(h, n)
	if err != nil {
		return nil, err
	}

	vals := es.Values(nil)
	out := make([]float64, count)
	for k := 0; k < count; k++ {
		// The embedding doubles every eigenvalue; adjacent pairs of the
		// ascending list belong to the same state.
		out[k] = vals[2*k]
	}
	return out, nil
}

// Eigensys computes the lowest count eigenvalues and eigenvectors of the
// Hermitian matrix h. Values are ascending; vectors are orthonormal with
// the phase convention of StandardizePhases applied per column.
func Eigensys(h *mat.CDense, count int) (*Eigensystem, error) {
	n, err := checkInput(h, count)
	if err != nil {
		return nil, err
	}

	es, err := factorize(h, n)
	if err != nil {
		return nil, err
	}

	vals := es.Values(nil)
	var embedded mat.Dense
	es.VectorsTo(&embedded)

	values := make([]float64, 0, count)
	columns := make([][]complex128, 0, count)

	for j := 0; j < 2*n && len(columns) < count; j++ {
		z := make([]complex128, n)
		for i := 0; i < n; i++ {
			z[i] = complex(embedded.At(i, j), embedded.At(n+i, j))
		}

		// Within a degenerate cluster of the embedding, pairs of real
		// eigenvectors map onto the same complex direction. Project out
		// everything already accepted and keep only new directions.
		for _, prev := range columns {
			proj := cdot(prev, z)
			for i := range z {
				z[i] -= proj * prev[i]
			}
		}

		norm := cnorm(z)
		if norm < residualTol {
			continue
		}
		for i := range z {
			z[i] /= complex(norm, 0)
		}
		columns = append(columns, z)
		values = append(values, vals[j])
	}

	if len(columns) < count {
		return nil, fmt.Errorf("recovered %d of %d eigenvectors: %w", len(columns), count, ErrConvergence)
	}

	vectors := mat.NewCDense(n, count, nil)
	for k, column := range columns {
		for i := 0; i < n; i++ {
			vectors.Set(i, k, column[i])
		}
	}

	values, vectors = OrderEigensystem(values, vectors)
	standardizeColumnPhases(vectors)

	return &Eigensystem{Values: values, Vectors: vectors}, nil
}

// checkInput validates squareness, the count range and Hermiticity.
func checkInput(h *mat.CDense, count int) (int, error) {
	r, c := h.Dims()
	if r != c {
		return 0, fmt.Errorf("matrix is %dx%d: %w", r, c, ErrDimensionMismatch)
	}
	if count < 1 || count > r {
		return 0, fmt.Errorf("count %d for dimension %d: %w", count, r, ErrInvalidCount)
	}

	scale := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			scale = math.Max(scale, cmplx.Abs(h.At(i, j)))
		}
	}
	limit := hermTol * (1 + scale)
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			if cmplx.Abs(h.At(i, j)-cmplx.Conj(h.At(j, i))) > limit {
				return 0, fmt.Errorf("element (%d,%d): %w", i, j, ErrNotHermitian)
			}
		}
	}
	return r, nil
}

// factorize builds the real symmetric embedding and diagonalizes it.
func factorize(h *mat.CDense, n int) (*mat.EigenSym, error) {
	embedded := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Symmetrize explicitly so rounding in h cannot break the
			// SymDense contract: a = (h_ij + conj(h_ji)) / 2.
			a := (h.At(i, j) + cmplx.Conj(h.At(j, i))) / 2
			embedded.SetSym(i, j, real(a))
			embedded.SetSym(n+i, n+j, real(a))
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a := (h.At(i, j) + cmplx.Conj(h.At(j, i))) / 2
			// Upper-right block is -Im(H); i < n+j always holds.
			embedded.SetSym(i, n+j, -imag(a))
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(embedded, true); !ok {
		return nil, ErrConvergence
	}
	return &es, nil
}

// cdot returns the inner product <a|b> with a conjugated.
func cdot(a, b []complex128) complex128 {
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}

// cnorm returns the 2-norm of a complex vector.
func cnorm(v []complex128) float64 {
	var sum float64
	for _, x := range v {
		sum += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(sum)
}
