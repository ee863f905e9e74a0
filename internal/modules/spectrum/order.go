package spectrum

import (
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// OrderEigensystem sorts eigenvalues into ascending order and permutes the
// eigenvector columns to keep each value paired with its vector. The sort
// is stable so equal eigenvalues keep the solver's order.
func OrderEigensystem(values []float64, vectors *mat.CDense) ([]float64, *mat.CDense) {
	n, count := vectors.Dims()

	order := make([]int, count)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	sortedValues := make([]float64, count)
	sortedVectors := mat.NewCDense(n, count, nil)
	for k, idx := range order {
		sortedValues[k] = values[idx]
		for i := 0; i < n; i++ {
			sortedVectors.Set(i, k, vectors.At(i, idx))
		}
	}
	return sortedValues, sortedVectors
}

// StandardizePhases removes the global phase of a complex amplitude array:
// the entry of largest magnitude is rotated onto the positive real axis.
// Results become reproducible across solver runs and platforms up to
// floating-point tolerance.
func StandardizePhases(a *mat.CDense) {
	r, c := a.Dims()

	var pivot complex128
	best := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if abs := cmplx.Abs(a.At(i, j)); abs > best {
				best = abs
				pivot = a.At(i, j)
			}
		}
	}
	if best == 0 {
		return
	}

	rot := cmplx.Conj(pivot) / complex(best, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a.Set(i, j, a.At(i, j)*rot)
		}
	}
}

// standardizeColumnPhases applies the StandardizePhases convention to each
// eigenvector column independently.
func standardizeColumnPhases(vectors *mat.CDense) {
	n, count := vectors.Dims()
	for k := 0; k < count; k++ {
		var pivot complex128
		best := 0.0
		for i := 0; i < n; i++ {
			if abs := cmplx.Abs(vectors.At(i, k)); abs > best {
				best = abs
				pivot = vectors.At(i, k)
			}
		}
		if best == 0 {
			continue
		}
		rot := cmplx.Conj(pivot) / complex(best, 0)
		for i := 0; i < n; i++ {
			vectors.Set(i, k, vectors.At(i, k)*rot)
		}
	}
}
