package spectrum

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// testMatrix is Hermitian with a complex off-diagonal entry; its exact
// eigenvalues are 2 ± sqrt(6).
func testMatrix() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{
		1, 2 - 1i,
		2 + 1i, 3,
	})
}

func TestEigenvalues_Known2x2(t *testing.T) {
	vals, err := Eigenvalues(testMatrix(), 2)
	require.NoError(t, err)
	require.Len(t, vals, 2)

	assert.InDelta(t, 2-math.Sqrt(6), vals[0], 1e-12)
	assert.InDelta(t, 2+math.Sqrt(6), vals[1], 1e-12)
}

func TestEigenvalues_PauliY(t *testing.T) {
	h := mat.NewCDense(2, 2, []complex128{0, -1i, 1i, 0})

	vals, err := Eigenvalues(h, 2)
	require.NoError(t, err)
	assert.InDelta(t, -1, vals[0], 1e-12)
	assert.InDelta(t, 1, vals[1], 1e-12)
}

func TestEigenvalues_CountValidation(t *testing.T) {
	h := testMatrix()

	_, err := Eigenvalues(h, 0)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = Eigenvalues(h, 3)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = Eigenvalues(h, -1)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestEigenvalues_RejectsNonHermitian(t *testing.T) {
	h := mat.NewCDense(2, 2, []complex128{0, 1, 2, 0})

	_, err := Eigenvalues(h, 1)
	assert.ErrorIs(t, err, ErrNotHermitian)
}

func TestEigenvalues_RejectsNonSquare(t *testing.T) {
	h := mat.NewCDense(2, 3, nil)

	_, err := Eigenvalues(h, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestEigensys_MatchesEigenvalues(t *testing.T) {
	h := randomHermitian(7, 42)

	vals, err := Eigenvalues(h, 5)
	require.NoError(t, err)

	esys, err := Eigensys(h, 5)
	require.NoError(t, err)
	require.Len(t, esys.Values, 5)

	for k := range vals {
		assert.InDelta(t, vals[k], esys.Values[k], 1e-10, "eigenvalue %d", k)
	}
}

func TestEigensys_ValuesAscending(t *testing.T) {
	h := randomHermitian(9, 7)

	esys, err := Eigensys(h, 9)
	require.NoError(t, err)

	for k := 1; k < len(esys.Values); k++ {
		assert.LessOrEqual(t, esys.Values[k-1], esys.Values[k])
	}
}

func TestEigensys_ResidualAndOrthonormality(t *testing.T) {
	h := randomHermitian(8, 3)
	n, _ := h.Dims()

	esys, err := Eigensys(h, n)
	require.NoError(t, err)

	for k := 0; k < n; k++ {
		// Unit norm.
		col := column(esys.Vectors, k)
		assert.InDelta(t, 1.0, cnorm(col), 1e-10, "norm of vector %d", k)

		// Residual ||H v - λ v|| small.
		res := 0.0
		for i := 0; i < n; i++ {
			var hv complex128
			for j := 0; j < n; j++ {
				hv += h.At(i, j) * col[j]
			}
			d := hv - complex(esys.Values[k], 0)*col[i]
			res += real(d)*real(d) + imag(d)*imag(d)
		}
		assert.Less(t, math.Sqrt(res), 1e-9, "residual of vector %d", k)

		// Orthogonality against all previous vectors.
		for m := 0; m < k; m++ {
			overlap := cmplx.Abs(cdot(column(esys.Vectors, m), col))
			assert.Less(t, overlap, 1e-9, "overlap of vectors %d and %d", m, k)
		}
	}
}

func TestEigensys_DegenerateSpectrum(t *testing.T) {
	// 3x3 identity: fully degenerate; the extraction must still produce
	// three orthonormal vectors.
	h := mat.NewCDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		h.Set(i, i, 1)
	}

	esys, err := Eigensys(h, 3)
	require.NoError(t, err)

	for k := 0; k < 3; k++ {
		assert.InDelta(t, 1.0, esys.Values[k], 1e-12)
		col := column(esys.Vectors, k)
		assert.InDelta(t, 1.0, cnorm(col), 1e-12)
		for m := 0; m < k; m++ {
			assert.Less(t, cmplx.Abs(cdot(column(esys.Vectors, m), col)), 1e-10)
		}
	}
}

func TestEigensys_PhaseConvention(t *testing.T) {
	h := randomHermitian(6, 11)

	esys, err := Eigensys(h, 4)
	require.NoError(t, err)

	n, _ := h.Dims()
	for k := 0; k < 4; k++ {
		var pivot complex128
		best := 0.0
		for i := 0; i < n; i++ {
			if a := cmplx.Abs(esys.Vectors.At(i, k)); a > best {
				best = a
				pivot = esys.Vectors.At(i, k)
			}
		}
		assert.Greater(t, real(pivot), 0.0, "pivot of vector %d must be real positive", k)
		assert.InDelta(t, 0.0, imag(pivot), 1e-10, "pivot of vector %d must be real", k)
	}
}

func TestEigensys_CountValidation(t *testing.T) {
	_, err := Eigensys(testMatrix(), 5)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.True(t, errors.Is(err, ErrInvalidCount))
}

// randomHermitian builds a deterministic Hermitian matrix from a cheap
// LCG so tests stay reproducible without pulling in math/rand semantics.
func randomHermitian(n int, seed uint64) *mat.CDense {
	state := seed*6364136223846793005 + 1442695040888963407
	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(state>>11)/float64(1<<53)*2 - 1
	}

	h := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		h.Set(i, i, complex(next(), 0))
		for j := i + 1; j < n; j++ {
			v := complex(next(), next())
			h.Set(i, j, v)
			h.Set(j, i, cmplx.Conj(v))
		}
	}
	return h
}

func column(m *mat.CDense, k int) []complex128 {
	r, _ := m.Dims()
	col := make([]complex128, r)
	for i := 0; i < r; i++ {
		col[i] = m.At(i, k)
	}
	return col
}
