// Package charts renders potential-landscape and wavefunction charts as
// PNG images.
package charts

import (
	"bytes"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/qubitkit/qubitkit/internal/modules/discretization"
	"github.com/qubitkit/qubitkit/internal/modules/fluxqubit"
	"github.com/qubitkit/qubitkit/internal/modules/spectrum"
)

// Mode selects how wavefunction amplitudes are mapped to chart intensity.
type Mode string

const (
	// ModeDensity plots |ψ|².
	ModeDensity Mode = "density"
	// ModeMagnitude plots |ψ|.
	ModeMagnitude Mode = "magnitude"
)

const (
	chartSize     = 6 * vg.Inch
	contourLevels = 20
	paletteColors = 255
)

// Service renders charts for flux-qubit systems.
type Service struct {
	log zerolog.Logger
}

// NewService creates the chart renderer.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("service", "charts").Logger()}
}

// PotentialContour renders the classical potential energy landscape over
// the given phase grid (used for both axes) as a PNG contour chart.
func (s *Service) PotentialContour(qubit *fluxqubit.FluxQubit, grid discretization.Grid1d) ([]byte, error) {
	phi := grid.Linspace()
	if len(phi) == 0 {
		return nil, fmt.Errorf("potential contour: empty grid")
	}

	field := &scalarField{xs: phi, ys: phi, z: make([][]float64, len(phi))}
	for i, phi1 := range phi {
		field.z[i] = make([]float64, len(phi))
		for j, phi2 := range phi {
			field.z[i][j] = qubit.Potential(phi1, phi2)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Potential, flux = %g", qubit.Params().Flux)
	p.X.Label.Text = "phi1"
	p.Y.Label.Text = "phi2"

	pal := moreland.SmoothBlueRed().Palette(contourLevels)
	p.Add(plotter.NewContour(field, field.levels(contourLevels), pal))

	s.log.Debug().Int("points", len(phi)).Msg("Rendered potential contour")
	return renderPNG(p)
}

// WavefunctionHeatMap renders one eigenstate on the grid as a PNG heat
// map. A nil eigensystem is solved on demand, matching
// FluxQubit.Wavefunction.
func (s *Service) WavefunctionHeatMap(qubit *fluxqubit.FluxQubit, esys *spectrum.Eigensystem, which int, grid discretization.Grid1d, mode Mode) ([]byte, error) {
	wf, err := qubit.Wavefunction(esys, which, grid)
	if err != nil {
		return nil, fmt.Errorf("wavefunction heat map: %w", err)
	}

	phi1 := wf.Grid.Axes[0].Linspace()
	phi2 := wf.Grid.Axes[1].Linspace()
	field := &scalarField{xs: phi1, ys: phi2, z: make([][]float64, len(phi1))}
	for i := range phi1 {
		field.z[i] = make([]float64, len(phi2))
		for j := range phi2 {
			a := cmplx.Abs(wf.Amplitudes.At(i, j))
			if mode == ModeMagnitude {
				field.z[i][j] = a
			} else {
				field.z[i][j] = a * a
			}
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Wavefunction %d (%s)", which, modeLabel(mode))
	p.X.Label.Text = "phi1"
	p.Y.Label.Text = "phi2"

	pal := moreland.ExtendedBlackBody().Palette(paletteColors)
	p.Add(plotter.NewHeatMap(field, pal))

	s.log.Debug().Int("which", which).Str("mode", string(mode)).Msg("Rendered wavefunction heat map")
	return renderPNG(p)
}

func modeLabel(mode Mode) string {
	if mode == ModeMagnitude {
		return "|psi|"
	}
	return "|psi|^2"
}

func renderPNG(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(chartSize, chartSize, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// scalarField adapts a sampled scalar field to plotter.GridXYZ. xs indexes
// the first amplitude axis (columns on the chart), ys the second.
type scalarField struct {
	xs, ys []float64
	z      [][]float64 // z[c][r]
}

func (f *scalarField) Dims() (c, r int)   { return len(f.xs), len(f.ys) }
func (f *scalarField) X(c int) float64    { return f.xs[c] }
func (f *scalarField) Y(r int) float64    { return f.ys[r] }
func (f *scalarField) Z(c, r int) float64 { return f.z[c][r] }

// levels returns n contour levels evenly spaced strictly inside the field's
// value range.
func (f *scalarField) levels(n int) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range f.z {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi <= lo {
		return []float64{lo}
	}
	levels := make([]float64, n)
	step := (hi - lo) / float64(n+1)
	for i := range levels {
		levels[i] = lo + float64(i+1)*step
	}
	return levels
}
