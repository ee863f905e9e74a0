// Package discretization provides grid types for evaluating wavefunctions
// and potentials on real-space coordinates.
package discretization

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultPtCount is the default number of grid points per axis.
const DefaultPtCount = 100

// Grid1d describes a uniform one-dimensional grid of PtCount points
// covering [MinVal, MaxVal], endpoints included.
type Grid1d struct {
	MinVal  float64 `json:"min_val"`
	MaxVal  float64 `json:"max_val"`
	PtCount int     `json:"pt_count"`
}

// NewGrid1d creates a one-dimensional grid.
func NewGrid1d(minVal, maxVal float64, ptCount int) Grid1d {
	return Grid1d{MinVal: minVal, MaxVal: maxVal, PtCount: ptCount}
}

// DefaultPhiGrid is the standard grid for phase-basis plots, covering one
// 2π period offset so that both potential minima are visible.
func DefaultPhiGrid() Grid1d {
	return NewGrid1d(-math.Pi/2, 3*math.Pi/2, DefaultPtCount)
}

// Spacing returns the distance between neighboring grid points.
func (g Grid1d) Spacing() float64 {
	if g.PtCount < 2 {
		return 0
	}
	return (g.MaxVal - g.MinVal) / float64(g.PtCount-1)
}

// Linspace returns the grid points, endpoints included.
func (g Grid1d) Linspace() []float64 {
	if g.PtCount <= 0 {
		return nil
	}
	points := make([]float64, g.PtCount)
	if g.PtCount == 1 {
		points[0] = g.MinVal
		return points
	}
	step := g.Spacing()
	for i := range points {
		points[i] = g.MinVal + float64(i)*step
	}
	// Guard against accumulated rounding on the last point.
	points[g.PtCount-1] = g.MaxVal
	return points
}

// GridSpec describes a multi-dimensional grid, one Grid1d per axis.
type GridSpec struct {
	Axes []Grid1d `json:"axes"`
}

// NewGridSpec2d builds the square two-dimensional spec used for
// (phi1, phi2) wavefunctions.
func NewGridSpec2d(g Grid1d) GridSpec {
	return GridSpec{Axes: []Grid1d{g, g}}
}

// WaveFunctionOnGrid holds wavefunction amplitudes evaluated on a grid.
// For the two-mode case Amplitudes has Axes[0].PtCount rows (phi1) and
// Axes[1].PtCount columns (phi2).
type WaveFunctionOnGrid struct {
	Grid       GridSpec
	Amplitudes *mat.CDense
}
