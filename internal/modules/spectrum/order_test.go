package spectrum

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOrderEigensystem_SortsAndKeepsPairing(t *testing.T) {
	values := []float64{3, 1, 2}
	vectors := mat.NewCDense(2, 3, []complex128{
		30, 10, 20,
		31, 11, 21,
	})

	sortedValues, sortedVectors := OrderEigensystem(values, vectors)

	assert.Equal(t, []float64{1, 2, 3}, sortedValues)
	assert.Equal(t, complex128(10), sortedVectors.At(0, 0))
	assert.Equal(t, complex128(21), sortedVectors.At(1, 1))
	assert.Equal(t, complex128(30), sortedVectors.At(0, 2))
}

func TestOrderEigensystem_StableOnTies(t *testing.T) {
	values := []float64{2, 2, 1}
	vectors := mat.NewCDense(1, 3, []complex128{100, 200, 300})

	sortedValues, sortedVectors := OrderEigensystem(values, vectors)

	assert.Equal(t, []float64{1, 2, 2}, sortedValues)
	// The two tied entries keep their original relative order.
	assert.Equal(t, complex128(100), sortedVectors.At(0, 1))
	assert.Equal(t, complex128(200), sortedVectors.At(0, 2))
}

func TestStandardizePhases_RemovesGlobalPhase(t *testing.T) {
	a := mat.NewCDense(2, 2, []complex128{
		0.1 + 0.2i, 0.7 - 0.3i,
		-0.4i, 0.05,
	})
	b := mat.NewCDense(2, 2, nil)
	phase := cmplx.Exp(1.234i)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			b.Set(i, j, a.At(i, j)*phase)
		}
	}

	StandardizePhases(a)
	StandardizePhases(b)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, real(a.At(i, j)), real(b.At(i, j)), 1e-12)
			assert.InDelta(t, imag(a.At(i, j)), imag(b.At(i, j)), 1e-12)
		}
	}
}

func TestStandardizePhases_PivotRealPositive(t *testing.T) {
	a := mat.NewCDense(1, 3, []complex128{0.1i, -0.9i, 0.2})

	StandardizePhases(a)

	pivot := a.At(0, 1)
	require.InDelta(t, 0.9, cmplx.Abs(pivot), 1e-12)
	assert.Greater(t, real(pivot), 0.0)
	assert.InDelta(t, 0.0, imag(pivot), 1e-12)
}

func TestStandardizePhases_ZeroArrayUnchanged(t *testing.T) {
	a := mat.NewCDense(2, 2, nil)
	assert.NotPanics(t, func() { StandardizePhases(a) })
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, complex128(0), a.At(i, j))
		}
	}
}
